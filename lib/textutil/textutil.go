package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// StripSpaces removes every run of whitespace, "ECE 30" -> "ECE30".
func StripSpaces(s string) string {
	return whitespaceRegex.ReplaceAllString(s, "")
}

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// SplitInstructorName splits the portal's "Last,F." form into
// a surname and first initial. The initial may be empty.
func SplitInstructorName(name string) (lastName, firstInitial string) {
	split := strings.SplitN(name, ",", 2)
	lastName = strings.Trim(split[0], " \n\t")
	if len(split) > 1 {
		first := strings.Trim(split[1], " \n\t")
		if first != "" {
			firstInitial = first[:1]
		}
	}
	return lastName, firstInitial
}
