package title

import "strings"

const (
	// MaxNameLength caps a sanitized name, counted in runes.
	MaxNameLength = 100
	// Fallback replaces blank titles.
	Fallback = "untitled"
	// Extension is appended by FileName.
	Extension = ".pdf"
	// IllegalChars are replaced with '-'.
	IllegalChars = `/\?%*:|"<>`
)

// Sanitize makes name usable as a path component.
func Sanitize(name string) string {
	if strings.TrimSpace(name) == "" {
		name = Fallback
	}
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if len(out) == MaxNameLength {
			break
		}
		if strings.ContainsRune(IllegalChars, r) {
			r = '-'
		}
		out = append(out, r)
	}
	return string(out)
}

// FileName returns the proposed filename for a derived title.
func FileName(title string) string {
	return Sanitize(title) + Extension
}
