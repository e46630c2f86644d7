package title

import (
	"math"
	"strings"
)

// MaxLines is the number of leading fragments considered title material.
const MaxLines = 5

// Derive joins the leading fragments up to the first vertical gap larger than
// twice the height of the fragment above it.
func Derive(fragments []Fragment) string {
	var sb strings.Builder
	limit := min(len(fragments), MaxLines)
	for i := 0; i < limit; i++ {
		sb.WriteString(fragments[i].Text)
		sb.WriteByte(' ')
		if i+1 < len(fragments) {
			gap := math.Abs(fragments[i].BaselineY - fragments[i+1].BaselineY)
			if gap > 2*fragments[i].Height {
				break
			}
		}
	}
	return strings.TrimSpace(sb.String())
}
