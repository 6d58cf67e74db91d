package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"github.com/cdtdelta/tablekit/internal/group"
	"github.com/cdtdelta/tablekit/internal/model"
	"github.com/cdtdelta/tablekit/internal/query"
	"github.com/cdtdelta/tablekit/internal/views"
)

// maxCellWidth bounds rendered cell text in terminal columns.
const maxCellWidth = 40

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	groupStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// truncate shortens s to width terminal columns, accounting for wide runes.
func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func renderRows(columns []model.Column, rows []model.Row) string {
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = truncate(c.Label(), maxCellWidth)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, r := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			v, _ := r.Value(c.ID)
			cells[i] = truncate(model.Stringify(v), maxCellWidth)
		}
		t.Row(cells...)
	}
	return t.String()
}

func writeRows(w io.Writer, columns []model.Column, rows []model.Row) {
	fmt.Fprintln(w, renderRows(columns, rows))
}

// writeGroups prints each group as a heading followed by its rows. Rows of
// collapsed groups are left out.
func writeGroups(w io.Writer, columns []model.Column, groups []group.GroupedRow) {
	for _, g := range groups {
		heading := fmt.Sprintf("%s (%d)", g.Value, g.Count)
		if g.Collapsed {
			fmt.Fprintln(w, groupStyle.Render("▸ "+heading))
			continue
		}
		fmt.Fprintln(w, groupStyle.Render("▾ "+heading))
		writeRows(w, columns, g.Rows)
	}
}

func writeFooter(w io.Writer, shown, matched, total, pageIndex, pages int) {
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf(
		"%d shown, %d of %d rows match, page %d of %d",
		shown, matched, total, pageIndex+1, pages,
	)))
}

func writeViewList(w io.Writer, list []views.SavedView) {
	if len(list) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no saved views"))
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "DEFAULT", "VIEW", "FILTERS", "SORT", "UPDATED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, v := range list {
		def := ""
		if v.IsDefault {
			def = "*"
		}
		t.Row(
			v.ID,
			truncate(v.Name, maxCellWidth),
			def,
			string(v.ViewType),
			fmt.Sprint(query.CountFilters(v.Filters)),
			fmt.Sprint(len(v.Sorting)),
			v.UpdatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	fmt.Fprintln(w, t.String())
}
