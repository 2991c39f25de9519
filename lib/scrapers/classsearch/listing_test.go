package classsearch

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseListing(t *testing.T) {
	cases := []struct {
		name      string
		raw       RawListing
		expected  Listing
		expectErr bool
	}{
		{
			name: "full listing",
			raw: RawListing{
				Header: "Open CSE 101 - 01 Introduction to Data Structures and Algorithms",
				Body: "Class Number: 12345\n" +
					"Instructor:\nLee,D.\n" +
					"Location:\nThim Lecture 003\n" +
					"Day and Time:\nMWF 10:40AM-11:45AM\n" +
					"Enrolled: 120 of 150",
			},
			expected: Listing{
				Code:          "CSE 101",
				Title:         "Introduction to Data Structures and Algorithms",
				SectionNumber: "01",
				Instructor:    "Lee,D.",
				Days:          "MWF",
				Time:          "10:40AM-11:45AM",
				Location:      "Thim Lecture 003",
				Status:        StatusOpen,
				Enrolled:      120,
				Capacity:      150,
			},
		},
		{
			name: "lettered section number",
			raw: RawListing{
				Header: "Wait List AM 10 - 01A Mathematical Methods",
				Body: "Instructor:\nGarcia,M.\n" +
					"Day and Time:\nTuTh 01:30PM-03:05PM\n" +
					"Enrolled: 30 of 45",
			},
			expected: Listing{
				Code:          "AM 10",
				Title:         "Mathematical Methods",
				SectionNumber: "01A",
				Instructor:    "Garcia,M.",
				Days:          "TuTh",
				Time:          "01:30PM-03:05PM",
				Location:      "TBA",
				Status:        StatusWaitList,
				Enrolled:      30,
				Capacity:      45,
			},
		},
		{
			name: "missing body labels fall back to defaults",
			raw: RawListing{
				Header: "Open MATH 19A - 02 Calculus for Science, Engineering, and Mathematics",
				Body:   "Class Number: 99999",
			},
			expected: Listing{
				Code:          "MATH 19A",
				Title:         "Calculus for Science, Engineering, and Mathematics",
				SectionNumber: "02",
				Instructor:    "Staff",
				Days:          "TBA",
				Time:          "TBA",
				Location:      "TBA",
				Status:        StatusOpen,
			},
		},
		{
			name: "hyphen inside the title survives",
			raw: RawListing{
				Header: "Closed LIT 80 - 01 Science-Fiction and Fantasy",
				Body:   "Enrolled: 45 of 45",
			},
			expected: Listing{
				Code:          "LIT 80",
				Title:         "Science-Fiction and Fantasy",
				SectionNumber: "01",
				Instructor:    "Staff",
				Days:          "TBA",
				Time:          "TBA",
				Location:      "TBA",
				Status:        StatusClosed,
				Enrolled:      45,
				Capacity:      45,
			},
		},
		{
			name:      "banner header without a hyphen is dropped",
			raw:       RawListing{Header: "1542 results found"},
			expectErr: true,
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			listing, err := ParseListing(test.raw)
			if test.expectErr {
				if err == nil {
					t.Fatalf("expected an error, got %+v", listing)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			diff := cmp.Diff(test.expected, listing)
			if diff != "" {
				t.Fatalf("(-expected +got):\n%s", diff)
			}
		})
	}
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		reported string
		enrolled int
		capacity int
		expected string
	}{
		{StatusOpen, 10, 150, StatusOpen},
		{StatusOpen, 150, 150, StatusClosed},
		{StatusOpen, 151, 150, StatusClosed},
		{StatusWaitList, 45, 45, StatusClosed},
		// capacity 0 means "unknown", never force a close
		{StatusOpen, 10, 0, StatusOpen},
		{StatusClosed, 0, 0, StatusClosed},
	}
	for _, test := range cases {
		got := DeriveStatus(test.reported, test.enrolled, test.capacity)
		if got != test.expected {
			t.Errorf("DeriveStatus(%q, %d, %d) = %q, expected %q",
				test.reported, test.enrolled, test.capacity, got, test.expected)
		}
	}
}

func TestStartEnd(t *testing.T) {
	cases := []struct {
		input string
		start string
		end   string
	}{
		{"10:40AM-11:45AM", "10:40AM", "11:45AM"},
		{"TBA", "TBA", "TBA"},
		{"", "TBA", "TBA"},
	}
	for _, test := range cases {
		start, end := StartEnd(test.input)
		if start != test.start || end != test.end {
			t.Errorf("StartEnd(%q) = (%q, %q), expected (%q, %q)",
				test.input, start, end, test.start, test.end)
		}
	}
}
