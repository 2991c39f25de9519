package textutil

import "testing"

func TestStripSpaces(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"ECE 30", "ECE30"},
		{"AM 10", "AM10"},
		{"  CSE \t 101  ", "CSE101"},
		{"MATH19A", "MATH19A"},
		{"", ""},
	}
	for _, test := range cases {
		got := StripSpaces(test.input)
		if got != test.expected {
			t.Errorf("StripSpaces(%q) = %q, expected %q", test.input, got, test.expected)
		}
	}
}

func TestSplitInstructorName(t *testing.T) {
	cases := []struct {
		input        string
		lastName     string
		firstInitial string
	}{
		{"Lee,D.", "Lee", "D"},
		{"Van Gurp,J.", "Van Gurp", "J"},
		{"Smith, John", "Smith", "J"},
		{"Staff", "Staff", ""},
		{"Lee,", "Lee", ""},
	}
	for _, test := range cases {
		lastName, firstInitial := SplitInstructorName(test.input)
		if lastName != test.lastName || firstInitial != test.firstInitial {
			t.Errorf("SplitInstructorName(%q) = (%q, %q), expected (%q, %q)",
				test.input, lastName, firstInitial, test.lastName, test.firstInitial)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"Lee, D.", "lee,d."},
		{"  SMITH , JOHN ", "smith,john"},
	}
	for _, test := range cases {
		got := NormalizeName(test.input)
		if got != test.expected {
			t.Errorf("NormalizeName(%q) = %q, expected %q", test.input, got, test.expected)
		}
	}
}
