package model

// ViewType identifies a renderer for the derived row set.
type ViewType string

const (
	ViewTable    ViewType = "table"
	ViewBoard    ViewType = "board"
	ViewList     ViewType = "list"
	ViewGallery  ViewType = "gallery"
	ViewFeed     ViewType = "feed"
	ViewCalendar ViewType = "calendar"
)

// AllViewTypes is the ordered list of every known view type.
var AllViewTypes = []ViewType{
	ViewTable, ViewBoard, ViewList, ViewGallery, ViewFeed, ViewCalendar,
}
