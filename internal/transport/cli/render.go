// Package cli renders browse views as fixed-width terminal tables.
package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/kailas-cloud/noveldex/internal/domain/view"
)

// DefaultWidth is the table width used when the terminal width is unknown.
const DefaultWidth = 120

// MinWidth is the narrowest table that still fits every fixed column.
const MinWidth = 80

// NoResultsMessage is printed instead of a table when nothing matched.
const NoResultsMessage = "No novels match the current filters."

const (
	ellipsis    = "…"
	dateLayout  = "2006-01-02"
	colSep      = "  "
	idWidth     = 9
	genreWidth  = 10
	scoreWidth  = 8
	lengthWidth = 9
	dateWidth   = len(dateLayout)
)

// Renderer writes result views to out; warnings go to errOut.
type Renderer struct {
	out      io.Writer
	errOut   io.Writer
	width    int
	synopsis bool
}

// NewRenderer creates a renderer for a table of the given display width.
// Widths below MinWidth are raised to it.
func NewRenderer(out, errOut io.Writer, width int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Renderer{out: out, errOut: errOut, width: max(width, MinWidth), synopsis: true}
}

// WithSynopsis toggles the indented synopsis line under each row.
func (r *Renderer) WithSynopsis(on bool) *Renderer {
	r.synopsis = on
	return r
}

// Render writes v. A view that was never queried writes nothing.
func (r *Renderer) Render(v view.ResultView) {
	if !v.Queried() {
		return
	}
	if v.Degraded() {
		_, _ = fmt.Fprintf(r.errOut, "warning: synopses unavailable for this page: %v\n", v.DetailErr)
	}
	if v.Empty() {
		_, _ = fmt.Fprintln(r.out, NoResultsMessage)
		return
	}

	_, _ = fmt.Fprintf(r.out, "%d novels, page %d of %d\n\n", v.Total, v.Page, v.TotalPages)

	titleWidth := r.titleWidth()
	_, _ = fmt.Fprintln(r.out, r.line("ID", "TITLE", "GENRE", "SCORE", "LENGTH", "UPDATED", titleWidth))
	_, _ = fmt.Fprintln(r.out, strings.Repeat("-", r.width))

	for i := range v.Rows {
		row := &v.Rows[i]
		updated := ""
		if !row.LastUpdate.IsZero() {
			updated = row.LastUpdate.Format(dateLayout)
		}
		_, _ = fmt.Fprintln(r.out, r.line(
			row.ID, row.Title, row.Genre,
			strconv.FormatInt(row.Score, 10), strconv.FormatInt(row.Length, 10),
			updated, titleWidth,
		))
		if r.synopsis && row.HasDetail && row.Synopsis != "" {
			_, _ = fmt.Fprintln(r.out, r.synopsisLine(row.Synopsis))
		}
	}
}

// RenderGenres writes one genre per line.
func (r *Renderer) RenderGenres(genres []string) {
	for _, g := range genres {
		_, _ = fmt.Fprintln(r.out, g)
	}
}

func (r *Renderer) titleWidth() int {
	fixed := idWidth + genreWidth + scoreWidth + lengthWidth + dateWidth + 5*len(colSep)
	return r.width - fixed
}

func (r *Renderer) line(id, title, genre, score, length, updated string, titleWidth int) string {
	var b strings.Builder
	b.WriteString(cell(id, idWidth))
	b.WriteString(colSep)
	b.WriteString(cell(title, titleWidth))
	b.WriteString(colSep)
	b.WriteString(cell(genre, genreWidth))
	b.WriteString(colSep)
	b.WriteString(runewidth.FillLeft(score, scoreWidth))
	b.WriteString(colSep)
	b.WriteString(runewidth.FillLeft(length, lengthWidth))
	b.WriteString(colSep)
	b.WriteString(cell(updated, dateWidth))
	return strings.TrimRight(b.String(), " ")
}

func (r *Renderer) synopsisLine(s string) string {
	indent := strings.Repeat(" ", idWidth+len(colSep))
	flat := strings.Join(strings.Fields(s), " ")
	return indent + runewidth.Truncate(flat, r.width-len(indent), ellipsis)
}

// cell truncates s to w display columns and pads it on the right.
func cell(s string, w int) string {
	return runewidth.FillRight(runewidth.Truncate(s, w, ellipsis), w)
}
