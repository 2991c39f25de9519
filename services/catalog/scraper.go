package catalog

import (
	"context"
	"log/slog"

	"slugsched-backend/lib/scrapers/classsearch"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/catalog")

const defaultCredits = 5

// Scraper drives one portal client through the full catalog, one
// subject at a time, one page at a time. Everything is strictly
// sequential: the portal session is stateful and there is exactly one
// of it.
type Scraper struct {
	store  Store
	client *classsearch.Client
	school string
}

func NewScraper(store Store, client *classsearch.Client, school string) Scraper {
	return Scraper{
		store:  store,
		client: client,
		school: school,
	}
}

// Run performs a full catalog pass. A subject that fails mid-way is
// logged and skipped; it never takes the rest of the catalog down
// with it. An empty subject list is a successful pass of zero work.
func (s Scraper) Run(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "scraper:Run")
	defer span.End()

	schoolID, err := s.store.UpsertSchool(ctx, s.school)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upsert school")
		return err
	}

	form, err := s.client.LoadSearchForm(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load search form")
		return err
	}
	slog.InfoContext(ctx, "detected active term",
		"term", form.Term.Name, "subjects", len(form.Subjects))

	for _, subject := range form.Subjects {
		err := s.scrapeSubject(ctx, schoolID, form, subject)
		if err != nil {
			slog.WarnContext(ctx, "skipping subject", "subject", subject, "err", err)
		}
	}
	return nil
}

func (s Scraper) scrapeSubject(ctx context.Context, schoolID int64, form classsearch.SearchForm, subject string) error {
	ctx, span := tracer.Start(ctx, "scraper:scrapeSubject")
	defer span.End()
	span.SetAttributes(attribute.String("subject", subject))

	err := s.client.Search(ctx, classsearch.SearchQuery{
		Term:    form.Term.Value,
		Subject: subject,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return err
	}

	pageNum := 1
	for {
		raws, err := s.client.Listings(ctx)
		if err != nil {
			span.RecordError(err)
			return err
		}

		saved := 0
		for _, raw := range raws {
			listing, err := classsearch.ParseListing(raw)
			if err != nil {
				slog.DebugContext(ctx, "dropping unparseable listing",
					"header", raw.Header, "err", err)
				continue
			}
			err = s.saveListing(ctx, schoolID, form.Term.Name, listing)
			if err != nil {
				slog.WarnContext(ctx, "failed to save listing",
					"code", listing.Code, "section", listing.SectionNumber, "err", err)
				continue
			}
			saved++
		}
		slog.InfoContext(ctx, "saved results page",
			"subject", subject, "page", pageNum, "classes", saved)

		if !s.client.HasNextPage() {
			break
		}
		if err := s.client.NextPage(ctx); err != nil {
			span.RecordError(err)
			return err
		}
		pageNum++
	}

	span.SetAttributes(attribute.Int("pages", pageNum))
	return nil
}

func (s Scraper) saveListing(ctx context.Context, schoolID int64, term string, listing classsearch.Listing) error {
	courseID, err := s.store.UpsertCourse(ctx, UpsertCourseParams{
		SchoolID:   schoolID,
		Code:       listing.Code,
		Name:       listing.Title,
		Credits:    defaultCredits,
		Department: department(listing.Code),
		Term:       term,
	})
	if err != nil {
		return err
	}

	startTime, endTime := classsearch.StartEnd(listing.Time)
	err = s.store.UpsertLecture(ctx, UpsertSectionParams{
		CourseID:      courseID,
		SectionCode:   listing.Code + "-" + listing.SectionNumber,
		SectionNumber: listing.SectionNumber,
		SectionType:   "LEC",
		Instructor:    listing.Instructor,
		Days:          listing.Days,
		Time:          listing.Time,
		StartTime:     startTime,
		EndTime:       endTime,
		Location:      listing.Location,
		Enrolled:      int64(listing.Enrolled),
		Capacity:      int64(listing.Capacity),
		Status:        listing.Status,
	})
	if err != nil {
		return err
	}

	if listing.Instructor != "Staff" {
		return s.store.EnsureProfessor(ctx, listing.Instructor)
	}
	return nil
}

// department is the leading token of a course code, "CSE 101" -> "CSE".
func department(code string) string {
	for i := 0; i < len(code); i++ {
		if code[i] == ' ' {
			return code[:i]
		}
	}
	return code
}
