package query

import "golang.org/x/text/cases"

// folder case-folds strings for case-insensitive comparison. A Caser is
// stateful, so a folder must not be shared between goroutines; each pass
// over a row set creates its own.
type folder struct {
	caser cases.Caser
}

func newFolder() folder {
	return folder{caser: cases.Fold()}
}

func (f folder) fold(s string) string {
	return f.caser.String(s)
}
