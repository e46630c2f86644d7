// Package title guesses a document title from the leading text fragments of
// its first page and turns it into a filename.
package title

// Fragment is one positioned run of text taken from a page.
type Fragment struct {
	Text      string
	BaselineY float64
	Height    float64
}
