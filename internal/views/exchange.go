package views

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidImport is returned when an import document fails validation.
var ErrInvalidImport = errors.New("invalid saved views document")

// exportDocument is the portable JSON envelope of exported views.
type exportDocument struct {
	Version int         `json:"version"`
	Views   []SavedView `json:"views"`
}

const exchangeSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "views"],
  "properties": {
    "version": {"type": "integer", "minimum": 1, "maximum": 1},
    "views": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "id": {"type": "string"},
          "name": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "isDefault": {"type": "boolean"},
          "createdAt": {"type": "string"},
          "updatedAt": {"type": "string"},
          "viewType": {"enum": ["", "table", "board", "list", "gallery", "feed", "calendar"]},
          "columnVisibility": {
            "type": ["object", "null"],
            "additionalProperties": {"type": "boolean"}
          },
          "sorting": {
            "type": ["array", "null"],
            "items": {
              "type": "object",
              "required": ["columnId"],
              "properties": {
                "columnId": {"type": "string", "minLength": 1},
                "descending": {"type": "boolean"}
              }
            }
          },
          "filters": {
            "type": ["array", "null"],
            "items": {
              "type": "object",
              "properties": {
                "logic": {"enum": ["", "AND", "OR"]},
                "filters": {
                  "type": ["array", "null"],
                  "items": {
                    "type": "object",
                    "required": ["columnId", "operator"],
                    "properties": {
                      "id": {"type": "string"},
                      "columnId": {"type": "string", "minLength": 1},
                      "operator": {"type": "string", "minLength": 1},
                      "value": {
                        "type": "object",
                        "properties": {
                          "kind": {"enum": ["", "none", "text", "number", "date", "choice", "multiChoice"]},
                          "text": {"type": "string"},
                          "items": {"type": "array", "items": {"type": "string"}}
                        }
                      }
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

var exchangeLoader = gojsonschema.NewStringLoader(exchangeSchema)

// ExportJSON encodes views into the portable exchange format.
func ExportJSON(views []SavedView) ([]byte, error) {
	if views == nil {
		views = []SavedView{}
	}
	return json.MarshalIndent(exportDocument{Version: fileVersion, Views: views}, "", "  ")
}

// ImportJSON validates data against the exchange schema and decodes the
// views it holds.
func ImportJSON(data []byte) ([]SavedView, error) {
	schema, err := gojsonschema.NewSchema(exchangeLoader)
	if err != nil {
		return nil, fmt.Errorf("invalid json schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidImport, strings.Join(errs, "; "))
	}

	var doc exportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	return doc.Views, nil
}
