package classsearch

import (
	"regexp"
	"strconv"
)

// AssociatedSection is one discussion/lab row parsed off a lecture's
// detail view.
type AssociatedSection struct {
	Type          string
	SectionNumber string
	Days          string
	Time          string
	Location      string
	Enrolled      int
	Capacity      int
}

var parentSectionRegex = regexp.MustCompile(`-\s+(\d+[A-Z]?)\s+`)
var assocHeaderRegex = regexp.MustCompile(`#(\d+)\s+([A-Z]+)\s+(\d+[A-Z]?)`)
var assocTimeRegex = regexp.MustCompile(`\d{2}:\d{2}[AP]M-\d{2}:\d{2}[AP]M`)
var assocDaysRegex = regexp.MustCompile(`\b(M|Tu|W|Th|F|MW|TuTh|MWF)\b`)
var assocLocationRegex = regexp.MustCompile(`Loc:\s*(.*?)(?:\s+(?:Enrl:|Wait|Staff)|$)`)
var assocEnrlRegex = regexp.MustCompile(`Enrl:\s*(\d+)\s*/\s*(\d+)`)

// ParseAssociatedRow matches one flattened row of the "Associated
// Discussion Sections or Labs" panel. Rows that don't carry the
// "#{num} {TYPE} {section}" header aren't lab/discussion rows and
// report ok=false; everything else degrades to TBA/zero defaults.
func ParseAssociatedRow(text string) (AssociatedSection, bool) {
	header := assocHeaderRegex.FindStringSubmatch(text)
	if header == nil {
		return AssociatedSection{}, false
	}

	assoc := AssociatedSection{
		Type:          header[2],
		SectionNumber: header[3],
		Days:          "TBA",
		Time:          "TBA",
		Location:      "TBA",
	}

	if m := assocTimeRegex.FindString(text); m != "" {
		assoc.Time = m
	}
	if m := assocDaysRegex.FindStringSubmatch(text); m != nil {
		assoc.Days = m[1]
	}
	if m := assocLocationRegex.FindStringSubmatch(text); m != nil {
		assoc.Location = m[1]
	}
	if m := assocEnrlRegex.FindStringSubmatch(text); m != nil {
		assoc.Enrolled, _ = strconv.Atoi(m[1])
		assoc.Capacity, _ = strconv.Atoi(m[2])
	}

	return assoc, true
}
