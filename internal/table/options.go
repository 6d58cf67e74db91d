package table

import (
	"log/slog"

	"github.com/cdtdelta/tablekit/internal/config"
	"github.com/cdtdelta/tablekit/internal/group"
	"github.com/cdtdelta/tablekit/internal/model"
	"github.com/cdtdelta/tablekit/internal/query"
)

// ViewConfig describes one renderer the engine may switch to.
type ViewConfig struct {
	Type             model.ViewType `json:"type"`
	Label            string         `json:"label"`
	Icon             string         `json:"icon"`
	SupportsGrouping bool           `json:"supportsGrouping"`
}

// DefaultViewConfigs returns the built-in view registry in display order.
// Each call returns a fresh slice.
func DefaultViewConfigs() []ViewConfig {
	return []ViewConfig{
		{Type: model.ViewTable, Label: "Table", Icon: "table", SupportsGrouping: true},
		{Type: model.ViewBoard, Label: "Board", Icon: "columns", SupportsGrouping: true},
		{Type: model.ViewList, Label: "List", Icon: "list", SupportsGrouping: true},
		{Type: model.ViewGallery, Label: "Gallery", Icon: "grid"},
		{Type: model.ViewFeed, Label: "Feed", Icon: "rss"},
		{Type: model.ViewCalendar, Label: "Calendar", Icon: "calendar"},
	}
}

// DefaultPageSize is used when Options.PageSize is not positive.
const DefaultPageSize = 50

// Options configures an Engine. The zero value of every field except
// EnabledViews has a usable default; a nil EnabledViews enables every view
// in the registry.
type Options struct {
	Columns []model.Column
	// Views is the view registry. Nil means DefaultViewConfigs.
	Views        []ViewConfig
	EnabledViews []model.ViewType
	DefaultView  model.ViewType

	PageSize  int
	Paginated bool

	UncategorizedLabel string
	MaxFilterDepth     int

	// ClearSelectionOnFilterChange empties the selection whenever search
	// text, filter groups or the advanced filter change.
	ClearSelectionOnFilterChange bool

	Relations query.RelationExtractor
	Logger    *slog.Logger
}

// OptionsFromConfig maps the table section of the application config onto
// engine options for the given columns.
func OptionsFromConfig(cfg config.TableConfig, columns []model.Column) Options {
	enabled := make([]model.ViewType, 0, len(cfg.EnabledViews))
	for _, v := range cfg.EnabledViews {
		enabled = append(enabled, model.ViewType(v))
	}
	return Options{
		Columns:                      columns,
		EnabledViews:                 enabled,
		DefaultView:                  model.ViewType(cfg.DefaultView),
		PageSize:                     cfg.PageSize,
		Paginated:                    cfg.Paginated,
		UncategorizedLabel:           cfg.UncategorizedLabel,
		MaxFilterDepth:               cfg.MaxFilterDepth,
		ClearSelectionOnFilterChange: cfg.ClearSelectionOnFilterChange,
	}
}

func (o Options) withDefaults() Options {
	if o.Views == nil {
		o.Views = DefaultViewConfigs()
	}
	if o.EnabledViews == nil {
		for _, v := range o.Views {
			o.EnabledViews = append(o.EnabledViews, v.Type)
		}
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.UncategorizedLabel == "" {
		o.UncategorizedLabel = group.DefaultUncategorized
	}
	if o.MaxFilterDepth <= 0 {
		o.MaxFilterDepth = query.DefaultMaxDepth
	}
	return o
}
