package extract

import (
	"bytes"
	"context"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
)

// spacingCoefficient multiplied by the font size is the horizontal gap
// between glyphs read as a word break.
const spacingCoefficient = 0.16

// Glyphs reads documents with ledongthuc/pdf and groups the glyphs of a page
// into runs sharing font, size and baseline.
type Glyphs struct{}

func NewGlyphs() *Glyphs { return &Glyphs{} }

func (Glyphs) Parse(ctx context.Context, data []byte) (doc Document, err error) {
	defer recoverPanic(&err)
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(err, "pdf reader")
	}
	return &glyphDocument{r: r}, nil
}

type glyphDocument struct {
	r *pdf.Reader
}

func (d *glyphDocument) NumPages() (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	return d.r.NumPage()
}

func (d *glyphDocument) Page(ctx context.Context, index int) (page Page, err error) {
	defer recoverPanic(&err)
	p := d.r.Page(index + 1)
	if p.V.IsNull() {
		return nil, errors.Errorf("page index %d not found", index)
	}
	return &glyphPage{p: p}, nil
}

type glyphPage struct {
	p pdf.Page
}

func (p *glyphPage) TextContent(ctx context.Context) (items []TextItem, err error) {
	defer recoverPanic(&err)
	return groupGlyphs(p.p.Content().Text), nil
}

// groupGlyphs merges consecutive glyphs into runs.
func groupGlyphs(glyphs []pdf.Text) []TextItem {
	items := []TextItem{}
	var run strings.Builder
	var first, prev pdf.Text
	flush := func() {
		if run.Len() == 0 {
			return
		}
		items = append(items, TextItem{
			Str:       run.String(),
			Transform: [6]float64{first.FontSize, 0, 0, first.FontSize, first.X, first.Y},
			Height:    first.FontSize,
		})
		run.Reset()
	}
	for i, g := range glyphs {
		if i > 0 && sameRun(prev, g) {
			if g.X-(prev.X+prev.W) >= spacingCoefficient*g.FontSize && !strings.HasSuffix(run.String(), " ") {
				run.WriteByte(' ')
			}
		} else {
			flush()
			first = g
		}
		run.WriteString(g.S)
		prev = g
	}
	flush()
	return items
}

func sameRun(a, b pdf.Text) bool {
	return a.Font == b.Font &&
		math.Abs(a.FontSize-b.FontSize) < 0.01 &&
		math.Abs(a.Y-b.Y) < 0.01 &&
		b.X >= a.X
}
