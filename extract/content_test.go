package extract

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func mustTextItems(t *testing.T, content string) []TextItem {
	t.Helper()
	items, err := textItems([]byte(content), nil)
	if err != nil {
		t.Fatalf("textItems: %v", err)
	}
	return items
}

func TestTextItemsPositions(t *testing.T) {
	content := `BT
/F1 24 Tf
72 700 Td
(Annual Report) Tj
0 -30 Td
/F1 10 Tf
(Prepared by) Tj
ET`
	items := mustTextItems(t, content)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	tests := []struct {
		str      string
		baseline float64
		height   float64
	}{
		{"Annual Report", 700, 24},
		{"Prepared by", 670, 10},
	}
	for i, tt := range tests {
		if items[i].Str != tt.str {
			t.Errorf("item %d: Str = %q, want %q", i, items[i].Str, tt.str)
		}
		if !approx(items[i].Transform[5], tt.baseline) {
			t.Errorf("item %d: baseline = %v, want %v", i, items[i].Transform[5], tt.baseline)
		}
		if !approx(items[i].Height, tt.height) {
			t.Errorf("item %d: height = %v, want %v", i, items[i].Height, tt.height)
		}
	}
}

func TestTextItemsMatrices(t *testing.T) {
	t.Run("text matrix scales height", func(t *testing.T) {
		items := mustTextItems(t, "BT /F1 1 Tf 18 0 0 18 50 600 Tm (Big) Tj ET")
		if len(items) != 1 {
			t.Fatalf("got %d items", len(items))
		}
		if !approx(items[0].Height, 18) || !approx(items[0].Transform[5], 600) {
			t.Errorf("got height %v baseline %v", items[0].Height, items[0].Transform[5])
		}
	})
	t.Run("ctm moves baseline and q Q restore", func(t *testing.T) {
		content := "q 2 0 0 2 0 100 cm BT /F1 10 Tf 0 50 Td (Scaled) Tj ET Q BT /F1 10 Tf 0 50 Td (Plain) Tj ET"
		items := mustTextItems(t, content)
		if len(items) != 2 {
			t.Fatalf("got %d items", len(items))
		}
		if !approx(items[0].Transform[5], 200) {
			t.Errorf("scaled: baseline %v", items[0].Transform[5])
		}
		if !approx(items[1].Transform[5], 50) {
			t.Errorf("plain: baseline %v", items[1].Transform[5])
		}
	})
	t.Run("leading and next line", func(t *testing.T) {
		content := "BT /F1 12 Tf 14 TL 0 500 Td (one) Tj T* (two) Tj (three) ' 0 -20 TD (four) Tj T* (five) Tj ET"
		items := mustTextItems(t, content)
		want := []float64{500, 486, 472, 452, 432}
		if len(items) != len(want) {
			t.Fatalf("got %d items, want %d", len(items), len(want))
		}
		for i, y := range want {
			if !approx(items[i].Transform[5], y) {
				t.Errorf("item %d (%s): baseline %v, want %v", i, items[i].Str, items[i].Transform[5], y)
			}
		}
	})
	t.Run("rise shifts baseline", func(t *testing.T) {
		items := mustTextItems(t, "BT /F1 10 Tf 3 Ts 0 100 Td (sup) Tj ET")
		if len(items) != 1 || !approx(items[0].Transform[5], 103) {
			t.Fatalf("got %+v", items)
		}
	})
	t.Run("unbalanced Q is ignored", func(t *testing.T) {
		items := mustTextItems(t, "Q BT /F1 10 Tf 0 100 Td (still here) Tj ET")
		if len(items) != 1 || items[0].Str != "still here" {
			t.Fatalf("got %+v", items)
		}
	})
}

func TestTextItemsTJ(t *testing.T) {
	items := mustTextItems(t, "BT /F1 10 Tf 0 0 Td [(Ti) -20 (tle) -400 (Page)] TJ ET")
	if len(items) != 1 {
		t.Fatalf("got %d items", len(items))
	}
	if items[0].Str != "Title Page" {
		t.Errorf("Str = %q, want %q", items[0].Str, "Title Page")
	}
}

func TestTextItemsSameLineAdvances(t *testing.T) {
	items := mustTextItems(t, "BT /F1 10 Tf 0 0 Td (ab) Tj (cd) Tj ET")
	if len(items) != 2 {
		t.Fatalf("got %d items", len(items))
	}
	if items[1].Transform[4] <= items[0].Transform[4] {
		t.Errorf("second run not advanced: %v <= %v", items[1].Transform[4], items[0].Transform[4])
	}
	if items[0].Transform[5] != items[1].Transform[5] {
		t.Errorf("baselines differ: %v %v", items[0].Transform[5], items[1].Transform[5])
	}
}

func TestTextItemsWinAnsiDefault(t *testing.T) {
	items := mustTextItems(t, "BT /F1 10 Tf 0 0 Td (caf\\351) Tj ET")
	if len(items) != 1 || items[0].Str != "café" {
		t.Fatalf("got %+v", items)
	}
}

func TestTextItemsSkipsUnsupportedSyntax(t *testing.T) {
	content := "% producer comment\n" +
		"q BI /W 2 /H 1 /BPC 8 /CS /G ID \x00\xff EI Q\n" +
		"BT /F1 10 Tf 0 100 Td (after image) Tj ET"
	items := mustTextItems(t, content)
	if len(items) != 1 || items[0].Str != "after image" {
		t.Fatalf("got %+v", items)
	}
}

func TestPrepareContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"quote operator", "(a) '", "T* (a) Tj"},
		{"double quote operator", "1 2 <0041> \"", "1 2 T* <0041> Tj"},
		{"quote inside string kept", "(it's) Tj", "(it's) Tj"},
		{"comment dropped", "(a%b) Tj % note\nET", "(a%b) Tj \nET"},
		{"nested parens", `(a (b) \) c) '`, `T* (a (b) \) c) Tj`},
		{"dictionary kept", "/P <</MCID 0>> BDC", "/P <</MCID 0>> BDC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(prepareContent([]byte(tt.content))); got != tt.want {
				t.Errorf("prepareContent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanText(t *testing.T) {
	if got := cleanText("a\x00b\tc\nd"); got != "ab c d" {
		t.Errorf("cleanText() = %q", got)
	}
}
