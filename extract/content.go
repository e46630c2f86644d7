package extract

import (
	"bytes"
	"strings"
	"sync"
	"unicode"

	"github.com/pkg/errors"
	"github.com/tsawler/tabula/contentstream"
	"github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/text"
)

// wordGap is the TJ adjustment, in thousandths of an em, read as a space.
const wordGap = 250

// contentstream.Parser keeps its operand stack in a package variable.
var parseLock sync.Mutex

// Fonts resolves the fonts a content stream refers to. A nil Fonts leaves
// every font at WinAnsiEncoding.
type Fonts struct {
	Resources core.Dict
	Resolve   func(core.IndirectRef) (core.Object, error)
}

// textItems runs a content stream and returns one TextItem per text showing
// operator, in stream order. The strings of a TJ array form a single item.
func textItems(content []byte, fonts *Fonts) ([]TextItem, error) {
	parseLock.Lock()
	ops, err := contentstream.NewParser(prepareContent(content)).Parse()
	parseLock.Unlock()
	if err != nil {
		return nil, errors.Wrap(err, "content stream")
	}

	ex := text.NewExtractor()
	if fonts != nil && fonts.Resources != nil {
		if err := ex.RegisterFontsFromResources(fonts.Resources, fonts.Resolve); err != nil {
			return nil, errors.Wrap(err, "page fonts")
		}
	}

	items := []TextItem{}
	for _, op := range ops {
		// one operation at a time so a stray Q does not drop the page
		frags, err := ex.Extract([]contentstream.Operation{op})
		if err != nil || len(frags) == 0 {
			continue
		}
		items = append(items, mergeShown(op, frags))
	}
	return items, nil
}

// mergeShown folds the fragments of one text showing operator into an item
// placed at the first fragment.
func mergeShown(op contentstream.Operation, frags []text.TextFragment) TextItem {
	var sb strings.Builder
	arr, isTJ := core.Array(nil), false
	if op.Operator == "TJ" && len(op.Operands) == 1 {
		arr, isTJ = op.Operands[0].(core.Array)
	}
	if isTJ {
		i := 0
		var adjust float64
		for _, el := range arr {
			switch v := el.(type) {
			case core.String:
				if i < len(frags) {
					if i > 0 && -adjust >= wordGap {
						sb.WriteByte(' ')
					}
					sb.WriteString(frags[i].Text)
					i++
				}
				adjust = 0
			case core.Int:
				adjust += float64(v)
			case core.Real:
				adjust += float64(v)
			}
		}
	} else {
		for _, f := range frags {
			sb.WriteString(f.Text)
		}
	}

	first := frags[0]
	return TextItem{
		Str:       cleanText(sb.String()),
		Transform: [6]float64{first.FontSize, 0, 0, first.FontSize, first.X, first.Y},
		Height:    first.Height,
	}
}

// cleanText turns line breaks and tabs into spaces and drops other control
// characters, which an undecodable code sequence may produce.
func cleanText(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

// prepareContent rewrites what contentstream.Parser rejects: comments are
// dropped, inline images are cut out, and the ' and " operators become T*
// followed by Tj. The spacing operands of " are left to T*, which ignores
// them.
func prepareContent(data []byte) []byte {
	out := make([]byte, 0, len(data))
	lastString := -1
	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case c == '(':
			end := literalEnd(data, i)
			lastString = len(out)
			out = append(out, data[i:end]...)
			i = end
		case c == '<' && i+1 < len(data) && data[i+1] == '<':
			out = append(out, "<<"...)
			i += 2
		case c == '<':
			end := len(data)
			if j := bytes.IndexByte(data[i:], '>'); j >= 0 {
				end = i + j + 1
			}
			lastString = len(out)
			out = append(out, data[i:end]...)
			i = end
		case c == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		case c == '\'' || c == '"':
			if lastString >= 0 {
				out = append(out[:lastString], append([]byte("T* "), out[lastString:]...)...)
				if !isSpace(out[len(out)-1]) {
					out = append(out, ' ')
				}
				out = append(out, "Tj"...)
			}
			lastString = -1
			i++
		case tokenAt(data, i, "BI"):
			i = inlineImageEnd(data, i)
			out = append(out, ' ')
		default:
			out = append(out, c)
			i++
		}
	}
	return out
}

// literalEnd returns the index just past the literal string starting at i.
func literalEnd(data []byte, i int) int {
	depth := 0
	for ; i < len(data); i++ {
		switch data[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(data)
}

// inlineImageEnd returns the index just past the EI closing the inline image
// that starts at i.
func inlineImageEnd(data []byte, i int) int {
	for j := i + 2; j+1 < len(data); j++ {
		if tokenAt(data, j, "ID") {
			for k := j + 3; k+1 < len(data); k++ {
				if tokenAt(data, k, "EI") {
					return k + 2
				}
			}
			break
		}
	}
	return len(data)
}

// tokenAt reports whether the whitespace delimited token tok starts at i.
func tokenAt(data []byte, i int, tok string) bool {
	if !bytes.HasPrefix(data[i:], []byte(tok)) {
		return false
	}
	before := i == 0 || isSpace(data[i-1])
	after := i+len(tok) == len(data) || isSpace(data[i+len(tok)])
	return before && after
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}
