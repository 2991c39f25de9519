package profmatch

import (
	"sort"
	"strings"

	"slugsched-backend/lib/scrapers/rmp"
	"slugsched-backend/lib/textutil"
	"slugsched-backend/services/catalog"

	"github.com/antzucaro/matchr"
)

// candidates whose surname doesn't match aren't this person, no amount
// of other evidence can save them
const surnameMismatch = -100

// LinkThreshold encodes "a name match alone is insufficient": surname
// plus first initial caps at 4, so at least one teaching-evidence
// signal (prefix, department or exact course) has to fire before a
// candidate is linked.
const LinkThreshold = 5

// deptKeywords maps a local subject code to the exact wording the
// directory uses for that department. The table is deliberately
// strict and hand-maintained: AM matches "Applied Mathematics" and
// nothing else, so an Applied Math professor is never confused with a
// plain Mathematics one.
var deptKeywords = map[string][]string{
	"AM":   {"Applied Mathematics"},
	"STAT": {"Statistics"},
	"MATH": {"Mathematics"},
	"CSE":  {"Computer Science", "Computer Engineering"},
	"ECE":  {"Electrical Engineering", "Computer Engineering"},
	"BME":  {"Biomolecular", "Bioinformatics", "Biology"},
	"CMPM": {"Computational Media", "Game Design"},
	"TIM":  {"Technology", "Information Management"},

	"BIOL": {"Biology", "Biological"},
	"BIOC": {"Biochemistry"},
	"CHEM": {"Chemistry"},
	"PHYS": {"Physics"},
	"ASTR": {"Astronomy", "Astrophysics"},
	"EART": {"Earth Sciences", "Geology"},
	"OCEA": {"Ocean"},
	"METX": {"Microbiology", "Toxicology"},
	"ENVS": {"Environmental"},

	"ECON": {"Economics"},
	"PSYC": {"Psychology"},
	"SOCY": {"Sociology"},
	"ANTH": {"Anthropology"},
	"POLI": {"Politics", "Political Science"},
	"LALS": {"Latin American"},
	"LGST": {"Legal Studies"},
	"EDUC": {"Education"},

	"LIT":  {"Literature", "English"},
	"WRIT": {"Writing", "Rhetoric"},
	"LING": {"Linguistics"},
	"HIS":  {"History"},
	"PHIL": {"Philosophy"},
	"HAVC": {"History of Art", "Visual Culture"},

	"ART":  {"Art", "Studio Art"},
	"ARTG": {"Art", "Game Design"},
	"FILM": {"Film"},
	"THEA": {"Theater"},
	"MUSC": {"Music"},

	"SPAN": {"Spanish"},
	"FREN": {"French"},
	"GERM": {"German"},
	"ITAL": {"Italian"},
	"JAPN": {"Japanese"},
	"CHIN": {"Chinese"},
}

// Evidence is what the catalog knows about one professor: their name
// as scraped, and the subjects/courses their sections belong to.
type Evidence struct {
	RawName      string
	LastName     string
	FirstInitial string
	// subject codes, e.g. "AM"
	Subjects []string
	// whitespace-stripped course codes, e.g. "AM10"
	CourseCodes []string
}

func EvidenceFor(name string, taught []catalog.TaughtCourse) Evidence {
	lastName, firstInitial := textutil.SplitInstructorName(name)
	ev := Evidence{
		RawName:      name,
		LastName:     lastName,
		FirstInitial: firstInitial,
	}

	seen := map[string]struct{}{}
	for _, course := range taught {
		if _, ok := seen[course.Department]; !ok {
			seen[course.Department] = struct{}{}
			ev.Subjects = append(ev.Subjects, course.Department)
		}
		ev.CourseCodes = append(ev.CourseCodes, textutil.StripSpaces(course.Code))
	}
	return ev
}

// Score applies the additive multi-signal heuristic to one candidate:
//
//	surname match        +2 (hard gate, mismatch is disqualifying)
//	first-initial match  +2
//	subject prefix match +5
//	department keywords  +3
//	exact course match  +10
func Score(candidate rmp.Teacher, ev Evidence) int {
	if !strings.EqualFold(candidate.LastName, ev.LastName) {
		return surnameMismatch
	}

	score := 2
	if ev.FirstInitial != "" && strings.HasPrefix(candidate.FirstName, ev.FirstInitial) {
		score += 2
	}

	courseNames := make([]string, len(candidate.Courses))
	for i, name := range candidate.Courses {
		courseNames[i] = strings.ToUpper(name)
	}

	// the directory lists "AM10", the catalog teaches subject "AM"
	prefixMatch := false
	for _, subject := range ev.Subjects {
		for _, name := range courseNames {
			if strings.HasPrefix(name, subject) {
				prefixMatch = true
				break
			}
		}
	}
	if prefixMatch {
		score += 5
	}

	department := strings.ToLower(candidate.Department)
	deptMatch := false
	for _, subject := range ev.Subjects {
		for _, keyword := range deptKeywords[subject] {
			if strings.Contains(department, strings.ToLower(keyword)) {
				deptMatch = true
				break
			}
		}
	}
	if deptMatch {
		score += 3
	}

	exactMatch := false
	for _, name := range courseNames {
		stripped := textutil.StripSpaces(name)
		for _, code := range ev.CourseCodes {
			if stripped == code {
				exactMatch = true
				break
			}
		}
	}
	if exactMatch {
		score += 10
	}

	return score
}

type Scored struct {
	Candidate rmp.Teacher
	Score     int
}

// Rank scores every candidate and sorts best-first. Equal scores are
// broken by name similarity to the scraped instructor string and then
// by ascending legacy id, so the ordering is reproducible regardless
// of what order the directory returned candidates in.
func Rank(candidates []rmp.Teacher, ev Evidence) []Scored {
	scored := make([]Scored, len(candidates))
	for i, candidate := range candidates {
		scored[i] = Scored{Candidate: candidate, Score: Score(candidate, ev)}
	}

	localName := textutil.NormalizeName(ev.LastName + "," + ev.FirstInitial)
	similarity := func(c rmp.Teacher) float64 {
		name := textutil.NormalizeName(c.LastName + "," + c.FirstName)
		return matchr.JaroWinkler(name, localName, false)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		si, sj := similarity(scored[i].Candidate), similarity(scored[j].Candidate)
		if si != sj {
			return si > sj
		}
		return scored[i].Candidate.LegacyID < scored[j].Candidate.LegacyID
	})
	return scored
}
