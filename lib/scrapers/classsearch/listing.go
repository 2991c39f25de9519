package classsearch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RawListing is one course/section block lifted off a results page:
// the heading line, the body rendered as innerText-style lines, and
// the id of the detail anchor when the block has one.
type RawListing struct {
	Header  string
	Body    string
	ClassID string
}

type Listing struct {
	Code          string
	Title         string
	SectionNumber string
	Instructor    string
	Days          string
	Time          string
	Location      string
	Status        string
	Enrolled      int
	Capacity      int
}

const (
	StatusOpen     = "Open"
	StatusClosed   = "Closed"
	StatusWaitList = "Wait List"
)

var statusLabels = regexp.MustCompile(`Open|Closed|Wait List`)
var sectionTitleRegex = regexp.MustCompile(`^(\d+[A-Z]?)\s+(.*)`)
var enrolledRegex = regexp.MustCompile(`(\d+)\s+of\s+(\d+)`)

// DeriveStatus forces a section closed once enrollment hits capacity,
// otherwise it keeps whatever label the portal reported.
func DeriveStatus(reported string, enrolled, capacity int) string {
	if capacity > 0 && enrolled >= capacity {
		return StatusClosed
	}
	return reported
}

// ParseListing turns a raw block into a structured listing. The header
// has the shape "{status}{code}-{sectionNumber} {title}"; a header
// without a hyphen-separated remainder is not a course listing and
// yields an error, which callers treat as "drop this record".
//
// Body parsing is line-offset based: each known label's value sits on
// the line after the label itself. Missing labels keep their defaults,
// malformed bodies degrade instead of failing.
func ParseListing(raw RawListing) (Listing, error) {
	status := StatusClosed
	if strings.Contains(raw.Header, StatusOpen) {
		status = StatusOpen
	}
	if strings.Contains(raw.Header, StatusWaitList) {
		status = StatusWaitList
	}

	cleanHeader := strings.TrimSpace(statusLabels.ReplaceAllString(raw.Header, ""))
	parts := strings.Split(cleanHeader, "-")
	if len(parts) < 2 {
		return Listing{}, fmt.Errorf("header is not a course listing: %q", raw.Header)
	}

	code := strings.TrimSpace(parts[0])
	rest := strings.TrimSpace(strings.Join(parts[1:], "-"))

	sectionNumber := "01"
	title := rest
	if groups := sectionTitleRegex.FindStringSubmatch(rest); groups != nil {
		sectionNumber = groups[1]
		title = groups[2]
	}

	listing := Listing{
		Code:          code,
		Title:         title,
		SectionNumber: sectionNumber,
		Instructor:    "Staff",
		Days:          "TBA",
		Time:          "TBA",
		Location:      "TBA",
	}

	meeting := "TBA"
	lines := strings.Split(raw.Body, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		next := ""
		if i+1 < len(lines) {
			next = strings.TrimSpace(lines[i+1])
		}

		switch {
		case strings.Contains(line, "Instructor:"):
			if next != "" {
				listing.Instructor = next
			}
		case strings.Contains(line, "Location:"):
			if next != "" {
				listing.Location = next
			}
		case strings.Contains(line, "Day and Time:"):
			if next != "" {
				meeting = next
			}
		case strings.Contains(line, "Enrolled"):
			if groups := enrolledRegex.FindStringSubmatch(line); groups != nil {
				listing.Enrolled, _ = strconv.Atoi(groups[1])
				listing.Capacity, _ = strconv.Atoi(groups[2])
			}
		}
	}

	fields := strings.Fields(meeting)
	if len(fields) > 0 {
		listing.Days = fields[0]
	}
	if len(fields) > 1 {
		listing.Time = strings.Join(fields[1:], " ")
	}

	listing.Status = DeriveStatus(status, listing.Enrolled, listing.Capacity)
	return listing, nil
}

// StartEnd splits an "HH:MMAM-HH:MMPM" range, defaulting both halves
// to TBA when the range itself is unknown.
func StartEnd(timeRange string) (string, string) {
	start, end, found := strings.Cut(timeRange, "-")
	if !found || start == "" {
		start = "TBA"
	}
	if end == "" {
		end = "TBA"
	}
	return start, end
}
