// Package testutil builds small PDF documents for tests.
package testutil

import (
	"fmt"
	"strings"
)

// Line is a text line placed on the first page.
type Line struct {
	Text string
	X, Y float64
	Size float64
}

// SinglePagePDF returns a valid one-page PDF whose content stream shows each
// line with its own Tf and Tm in a WinAnsi encoded Helvetica.
func SinglePagePDF(lines ...Line) []byte {
	return PDF(content(lines, func(s string) string { return "(" + escape(s) + ")" }))
}

// PDF wraps a raw content stream into a one-page document with correct xref
// offsets. The page font /F1 is Helvetica with a width for every printable
// ASCII code.
func PDF(content string) []byte {
	widths := strings.TrimSpace(strings.Repeat("500 ", 95))
	return document(content,
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths ["+widths+"] >>",
	)
}

// Type0PDF is SinglePagePDF with /F1 a Type0 font using Identity-H. Each
// character is shown as the two byte code 0x0100 + its ASCII value, so only
// the font's ToUnicode CMap recovers the text.
func Type0PDF(lines ...Line) []byte {
	cmap := `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CMapName /Adobe-Identity-UCS def
/CMapType 2 def
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
1 beginbfrange
<0120> <017E> <0020>
endbfrange
endcmap
CMapName currentdict /CMap defineresource pop
end
end`
	return document(content(lines, type0Codes),
		"<< /Type /Font /Subtype /Type0 /BaseFont /TitleSans /Encoding /Identity-H /DescendantFonts [6 0 R] /ToUnicode 7 0 R >>",
		"<< /Type /Font /Subtype /CIDFontType2 /BaseFont /TitleSans /CIDSystemInfo << /Registry (Adobe) /Ordering (Identity) /Supplement 0 >> /FontDescriptor 8 0 R /DW 500 >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(cmap), cmap),
		"<< /Type /FontDescriptor /FontName /TitleSans /Flags 32 /FontBBox [0 -200 1000 800] /ItalicAngle 0 /Ascent 800 /Descent -200 /CapHeight 700 /StemV 80 >>",
	)
}

func type0Codes(s string) string {
	var b strings.Builder
	b.WriteByte('<')
	for _, r := range s {
		fmt.Fprintf(&b, "%04X", 0x100+r)
	}
	b.WriteByte('>')
	return b.String()
}

func content(lines []Line, show func(string) string) string {
	var stream strings.Builder
	stream.WriteString("BT\n")
	for _, l := range lines {
		fmt.Fprintf(&stream, "/F1 %g Tf\n1 0 0 1 %g %g Tm\n%s Tj\n", l.Size, l.X, l.Y, show(l.Text))
	}
	stream.WriteString("ET")
	return stream.String()
}

// document lays out catalog, pages, page and content as objects 1 to 4. The
// font is object 5 and any further objects follow from 6.
func document(content string, font string, extra ...string) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		font,
	}
	objects = append(objects, extra...)

	var b strings.Builder
	offsets := make([]int, len(objects)+1)
	b.WriteString("%PDF-1.4\n")
	for i, obj := range objects {
		offsets[i+1] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return []byte(b.String())
}

// Corrupt returns bytes that start like a PDF but cannot be parsed.
func Corrupt() []byte {
	return []byte("%PDF-1.4\nthis is not really a pdf\n%%EOF\n")
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return r.Replace(s)
}
