package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// Store owns the school/course/section graph and the professor
// records hanging off it. Every write is an independent upsert keyed
// on a natural identifier; there is no delete path, a record missing
// from one scrape pass is simply left stale until the next one.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

func (s Store) DB() *sql.DB {
	return s.db
}

type Course struct {
	ID         int64
	SchoolID   int64
	Code       string
	Name       string
	Credits    int64
	Department string
	Term       string
}

type Section struct {
	ID            int64
	CourseID      int64
	ParentID      sql.NullInt64
	SectionCode   string
	SectionNumber string
	SectionType   string
	Instructor    string
	Days          string
	Time          string
	StartTime     string
	EndTime       string
	Location      string
	Enrolled      int64
	Capacity      int64
	Status        string
}

type Professor struct {
	ID             int64
	Name           string
	RmpID          sql.NullString
	Rating         sql.NullFloat64
	Difficulty     sql.NullFloat64
	NumRatings     sql.NullInt64
	WouldTakeAgain sql.NullFloat64
	Reviews        sql.NullString
}

func (s Store) UpsertSchool(ctx context.Context, name string) (int64, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO schools (name) VALUES (?)
		ON CONFLICT (name) DO UPDATE SET name = excluded.name
		RETURNING id
	`, name)
	var id int64
	err := row.Scan(&id)
	return id, err
}

type UpsertCourseParams struct {
	SchoolID   int64
	Code       string
	Name       string
	Credits    int64
	Department string
	Term       string
}

// UpsertCourse creates or corrects a course keyed on (school, code).
func (s Store) UpsertCourse(ctx context.Context, params UpsertCourseParams) (int64, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO courses (school_id, code, name, credits, department, term)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (school_id, code) DO UPDATE SET
			name = excluded.name,
			department = excluded.department,
			term = excluded.term
		RETURNING id
	`, params.SchoolID, params.Code, params.Name, params.Credits, params.Department, params.Term)
	var id int64
	err := row.Scan(&id)
	return id, err
}

type UpsertSectionParams struct {
	CourseID      int64
	SectionCode   string
	SectionNumber string
	SectionType   string
	Instructor    string
	Days          string
	Time          string
	StartTime     string
	EndTime       string
	Location      string
	Enrolled      int64
	Capacity      int64
	Status        string
}

// UpsertLecture writes a top-level section. It never touches
// parent_id, so a re-scrape of a lecture cannot detach or corrupt
// children linked in a previous details pass.
func (s Store) UpsertLecture(ctx context.Context, params UpsertSectionParams) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sections (
			course_id, section_code, section_number, section_type,
			instructor, days, time, start_time, end_time, location,
			enrolled, capacity, status
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (section_code) DO UPDATE SET
			course_id = excluded.course_id,
			section_number = excluded.section_number,
			section_type = excluded.section_type,
			instructor = excluded.instructor,
			days = excluded.days,
			time = excluded.time,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			location = excluded.location,
			enrolled = excluded.enrolled,
			capacity = excluded.capacity,
			status = excluded.status
	`,
		params.CourseID, params.SectionCode, params.SectionNumber, params.SectionType,
		params.Instructor, params.Days, params.Time, params.StartTime, params.EndTime,
		params.Location, params.Enrolled, params.Capacity, params.Status)
	return err
}

// UpsertSubsection writes a discussion/lab row under a lecture. The
// parent must be a lecture of the same course, otherwise the write is
// refused.
func (s Store) UpsertSubsection(ctx context.Context, parentID int64, params UpsertSectionParams) error {
	parent, err := s.sectionByID(ctx, parentID)
	if err != nil {
		return fmt.Errorf("parent section %d: %w", parentID, err)
	}
	if parent.CourseID != params.CourseID {
		return fmt.Errorf("parent section %q belongs to a different course", parent.SectionCode)
	}
	if parent.ParentID.Valid {
		return fmt.Errorf("parent section %q is not a lecture", parent.SectionCode)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sections (
			course_id, parent_id, section_code, section_number, section_type,
			instructor, days, time, start_time, end_time, location,
			enrolled, capacity, status
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (section_code) DO UPDATE SET
			course_id = excluded.course_id,
			parent_id = excluded.parent_id,
			section_number = excluded.section_number,
			section_type = excluded.section_type,
			instructor = excluded.instructor,
			days = excluded.days,
			time = excluded.time,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			location = excluded.location,
			enrolled = excluded.enrolled,
			capacity = excluded.capacity,
			status = excluded.status
	`,
		params.CourseID, parentID, params.SectionCode, params.SectionNumber, params.SectionType,
		params.Instructor, params.Days, params.Time, params.StartTime, params.EndTime,
		params.Location, params.Enrolled, params.Capacity, params.Status)
	return err
}

const sectionColumns = `
	id, course_id, parent_id, section_code, section_number, section_type,
	instructor, days, time, start_time, end_time, location,
	enrolled, capacity, status
`

func scanSection(row interface{ Scan(...any) error }) (Section, error) {
	var sec Section
	err := row.Scan(
		&sec.ID, &sec.CourseID, &sec.ParentID, &sec.SectionCode, &sec.SectionNumber,
		&sec.SectionType, &sec.Instructor, &sec.Days, &sec.Time, &sec.StartTime,
		&sec.EndTime, &sec.Location, &sec.Enrolled, &sec.Capacity, &sec.Status)
	return sec, err
}

func (s Store) sectionByID(ctx context.Context, id int64) (Section, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sectionColumns+` FROM sections WHERE id = ?`, id)
	return scanSection(row)
}

func (s Store) SectionByCode(ctx context.Context, sectionCode string) (Section, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sectionColumns+` FROM sections WHERE section_code = ?`, sectionCode)
	return scanSection(row)
}

func (s Store) CourseSections(ctx context.Context, courseID int64) ([]Section, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sectionColumns+` FROM sections WHERE course_id = ? ORDER BY section_code`,
		courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []Section
	for rows.Next() {
		sec, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

func (s Store) Courses(ctx context.Context, schoolID int64) ([]Course, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, school_id, code, name, credits, department, term
		FROM courses WHERE school_id = ? ORDER BY code
	`, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		var c Course
		err := rows.Scan(&c.ID, &c.SchoolID, &c.Code, &c.Name, &c.Credits, &c.Department, &c.Term)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// EnsureProfessor lazily creates a professor record the first time an
// instructor name shows up on a scraped section.
func (s Store) EnsureProfessor(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO professors (name) VALUES (?)
		ON CONFLICT (name) DO NOTHING
	`, name)
	return err
}

const professorColumns = `
	id, name, rmp_id, rating, difficulty, num_ratings, would_take_again, reviews
`

func scanProfessor(row interface{ Scan(...any) error }) (Professor, error) {
	var p Professor
	err := row.Scan(
		&p.ID, &p.Name, &p.RmpID, &p.Rating, &p.Difficulty,
		&p.NumRatings, &p.WouldTakeAgain, &p.Reviews)
	return p, err
}

func (s Store) ProfessorByName(ctx context.Context, name string) (Professor, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+professorColumns+` FROM professors WHERE name = ?`, name)
	return scanProfessor(row)
}

func (s Store) queryProfessors(ctx context.Context, query string, args ...any) ([]Professor, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var professors []Professor
	for rows.Next() {
		p, err := scanProfessor(rows)
		if err != nil {
			return nil, err
		}
		professors = append(professors, p)
	}
	return professors, rows.Err()
}

func (s Store) Professors(ctx context.Context) ([]Professor, error) {
	return s.queryProfessors(ctx,
		`SELECT `+professorColumns+` FROM professors ORDER BY name`)
}

// ProfessorsMissingRatings selects professors that are linked to the
// directory but have no rating numbers yet.
func (s Store) ProfessorsMissingRatings(ctx context.Context) ([]Professor, error) {
	return s.queryProfessors(ctx,
		`SELECT `+professorColumns+` FROM professors
		 WHERE rmp_id IS NOT NULL AND rating IS NULL ORDER BY name`)
}

func (s Store) LinkedProfessors(ctx context.Context) ([]Professor, error) {
	return s.queryProfessors(ctx,
		`SELECT `+professorColumns+` FROM professors
		 WHERE rmp_id IS NOT NULL ORDER BY name`)
}

type TaughtCourse struct {
	Code       string
	Department string
}

// TaughtCourses lists the distinct courses a professor was observed
// teaching, joined through the sections their name appears on. The
// raw instructor-name string is the only cross-reference key there is.
func (s Store) TaughtCourses(ctx context.Context, professorName string) ([]TaughtCourse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT c.code, c.department
		FROM sections s
		JOIN courses c ON c.id = s.course_id
		WHERE s.instructor = ?
		ORDER BY c.code
	`, professorName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []TaughtCourse
	for rows.Next() {
		var c TaughtCourse
		if err := rows.Scan(&c.Code, &c.Department); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (s Store) LinkProfessor(ctx context.Context, name, rmpID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE professors SET rmp_id = ? WHERE name = ?`, rmpID, name)
	return err
}

// UnlinkProfessor retracts a directory link. The external id and every
// rating field that depends on it are cleared in one statement so a
// stale rating can never outlive its link.
func (s Store) UnlinkProfessor(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE professors SET
			rmp_id = NULL,
			rating = NULL,
			difficulty = NULL,
			num_ratings = NULL,
			would_take_again = NULL
		WHERE name = ?
	`, name)
	return err
}

type SetProfessorRatingsParams struct {
	Name       string
	Rating     float64
	Difficulty float64
	NumRatings int64
	// invalid = the directory reported its "unknown" sentinel
	WouldTakeAgain sql.NullFloat64
}

func (s Store) SetProfessorRatings(ctx context.Context, params SetProfessorRatingsParams) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE professors SET
			rating = ?,
			difficulty = ?,
			num_ratings = ?,
			would_take_again = ?
		WHERE name = ?
	`, params.Rating, params.Difficulty, params.NumRatings, params.WouldTakeAgain, params.Name)
	return err
}
