package extsort

import "testing"

func TestParseRowTotality(t *testing.T) {
	cases := []struct {
		name string
		line string
		ok   bool
		num  int64
		text string
	}{
		{"simple", "42. hello", true, 42, "hello"},
		{"no space after dot", "42.hello", true, 42, "hello"},
		{"negative number", "-5. abc", true, -5, "abc"},
		{"plus sign", "+5. abc", true, 5, "abc"},
		{"empty text", "7.", true, 7, ""},
		{"dot only", ".", false, 0, ""},
		{"no dot", "42 hello", false, 0, ""},
		{"non-numeric prefix", "ab. hello", false, 0, ""},
		{"empty line", "", false, 0, ""},
		{"multiple dots keeps first", "1.2.3", true, 1, "2.3"},
		{"overflow drops line", "99999999999999999999. x", false, 0, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			row, ok := ParseRow([]byte(c.line))
			if ok != c.ok {
				t.Fatalf("ParseRow(%q) ok = %v, want %v", c.line, ok, c.ok)
			}
			if !ok {
				return
			}
			if row.Number != c.num {
				t.Errorf("Number = %d, want %d", row.Number, c.num)
			}
			if string(row.Text()) != c.text {
				t.Errorf("Text() = %q, want %q", row.Text(), c.text)
			}
		})
	}
}

func TestParseRowNeverAllocatesLine(t *testing.T) {
	src := []byte("100. abc")
	row, ok := ParseRow(src)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if &row.Line[0] != &src[0] {
		t.Error("Row.Line must alias the input slice, not copy it")
	}
}

func TestOrderAxioms(t *testing.T) {
	rows := []Row{}
	for _, l := range []string{"1. b", "2. a", "3. a", "1. a", "2. b"} {
		r, ok := ParseRow([]byte(l))
		if !ok {
			t.Fatalf("failed to parse %q", l)
		}
		rows = append(rows, r)
	}

	// Reflexivity: compare(a, a) == 0
	for _, r := range rows {
		if CompareRows(r, r) != 0 {
			t.Errorf("CompareRows(%v, %v) != 0", r, r)
		}
	}

	// Antisymmetry: compare(a, b) and compare(b, a) have opposite signs
	for _, a := range rows {
		for _, b := range rows {
			c1 := CompareRows(a, b)
			c2 := CompareRows(b, a)
			if sign(c1) != -sign(c2) {
				t.Errorf("antisymmetry violated for %v vs %v: %d, %d", a, b, c1, c2)
			}
		}
	}

	// Transitivity across a small totally-ordered chain.
	for i := 0; i < len(rows); i++ {
		for j := 0; j < len(rows); j++ {
			for k := 0; k < len(rows); k++ {
				if LessRows(rows[i], rows[j]) && LessRows(rows[j], rows[k]) && !LessRows(rows[i], rows[k]) {
					t.Errorf("transitivity violated: %v < %v < %v but not %v < %v", rows[i], rows[j], rows[k], rows[i], rows[k])
				}
			}
		}
	}

	// Text dominates number: "9. a" < "1. b" despite the larger number,
	// and among equal text, number breaks ties.
	one, _ := ParseRow([]byte("9. a"))
	two, _ := ParseRow([]byte("1. b"))
	if !LessRows(one, two) {
		t.Error("text ordering must dominate numeric ordering")
	}
	small, _ := ParseRow([]byte("1. x"))
	big, _ := ParseRow([]byte("2. x"))
	if !LessRows(small, big) {
		t.Error("equal text should fall back to numeric ordering")
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
