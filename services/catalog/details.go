package catalog

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"slugsched-backend/lib/scrapers/classsearch"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// LinkSubsections walks every stored course, reopens its lectures'
// detail views and attaches the associated discussion/lab rows to
// their parent lecture. A course that fails is skipped, the pass
// continues.
func (s Scraper) LinkSubsections(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "scraper:LinkSubsections")
	defer span.End()

	schoolID, err := s.store.UpsertSchool(ctx, s.school)
	if err != nil {
		span.RecordError(err)
		return err
	}

	form, err := s.client.LoadSearchForm(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load search form")
		return err
	}

	courses, err := s.store.Courses(ctx, schoolID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	slog.InfoContext(ctx, "linking associated sections",
		"term", form.Term.Name, "courses", len(courses))

	for i, course := range courses {
		if i > 0 && i%10 == 0 {
			slog.InfoContext(ctx, "linking progress", "done", i, "total", len(courses))
		}
		err := s.linkCourse(ctx, form, course)
		if err != nil {
			slog.WarnContext(ctx, "skipping course", "code", course.Code, "err", err)
		}
	}
	return nil
}

func (s Scraper) linkCourse(ctx context.Context, form classsearch.SearchForm, course Course) error {
	ctx, span := tracer.Start(ctx, "scraper:linkCourse")
	defer span.End()
	span.SetAttributes(attribute.String("code", course.Code))

	subject, number, found := strings.Cut(course.Code, " ")
	if !found {
		// not a "{SUBJECT} {NUMBER}" code, nothing to search for
		return nil
	}

	err := s.client.Search(ctx, classsearch.SearchQuery{
		Term:       form.Term.Value,
		Subject:    subject,
		CatalogNbr: number,
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	raws, err := s.client.Listings(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	var classIDs []string
	for _, raw := range raws {
		if raw.ClassID != "" {
			classIDs = append(classIDs, raw.ClassID)
		}
	}

	for _, classID := range classIDs {
		detail, err := s.client.OpenDetail(ctx, classID)
		if err != nil {
			span.RecordError(err)
			return err
		}

		linked, err := s.saveDetail(ctx, course, detail)
		if err != nil {
			slog.WarnContext(ctx, "failed to save detail view",
				"code", course.Code, "class_id", classID, "err", err)
		} else if linked > 0 {
			slog.InfoContext(ctx, "linked associated sections",
				"code", course.Code, "count", linked)
		}

		if err := s.client.BackToResults(ctx); err != nil {
			span.RecordError(err)
			return err
		}
	}
	return nil
}

// saveDetail upserts the associated rows of one detail view. A lecture
// with no matching rows produces zero writes; nothing is fabricated.
func (s Scraper) saveDetail(ctx context.Context, course Course, detail classsearch.DetailPage) (int, error) {
	parentNumber, ok := detail.ParentSectionNumber()
	if !ok {
		return 0, nil
	}

	parent, err := s.store.SectionByCode(ctx, course.Code+"-"+parentNumber)
	if errors.Is(err, sql.ErrNoRows) {
		// lecture was never scraped, don't invent one
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	linked := 0
	for _, row := range detail.AssociatedRows() {
		assoc, ok := classsearch.ParseAssociatedRow(row)
		if !ok {
			continue
		}

		startTime, endTime := classsearch.StartEnd(assoc.Time)
		err := s.store.UpsertSubsection(ctx, parent.ID, UpsertSectionParams{
			CourseID:      course.ID,
			SectionCode:   course.Code + "-" + assoc.SectionNumber,
			SectionNumber: assoc.SectionNumber,
			SectionType:   assoc.Type,
			Instructor:    "Staff",
			Days:          assoc.Days,
			Time:          assoc.Time,
			StartTime:     startTime,
			EndTime:       endTime,
			Location:      assoc.Location,
			Enrolled:      int64(assoc.Enrolled),
			Capacity:      int64(assoc.Capacity),
			Status: classsearch.DeriveStatus(
				classsearch.StatusOpen, assoc.Enrolled, assoc.Capacity),
		})
		if err != nil {
			slog.WarnContext(ctx, "failed to upsert associated section",
				"code", course.Code, "section", assoc.SectionNumber, "err", err)
			continue
		}
		linked++
	}
	return linked, nil
}
