package profmatch

import (
	"context"
	"database/sql"
	"log/slog"
	"math"
	"strconv"

	"slugsched-backend/lib/scrapers/rmp"
	"slugsched-backend/services/catalog"

	"go.opentelemetry.io/otel/attribute"
)

// the directory reports -1 when it has no retake data for a teacher
const unknownRetakePercent = -1

type FetchRatingsOptions struct {
	// refetch every linked professor instead of just the ones with no
	// rating yet
	RefreshAll bool
}

// FetchRatings pulls aggregate rating statistics for linked
// professors. Per-professor failures are logged and skipped, the
// batch always runs to the end.
func (r Resolver) FetchRatings(ctx context.Context, opts FetchRatingsOptions) error {
	ctx, span := tracer.Start(ctx, "resolver:FetchRatings")
	defer span.End()

	var professors []catalog.Professor
	var err error
	if opts.RefreshAll {
		professors, err = r.store.LinkedProfessors(ctx)
	} else {
		professors, err = r.store.ProfessorsMissingRatings(ctx)
	}
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.Int("professors", len(professors)))
	slog.InfoContext(ctx, "fetching professor ratings", "professors", len(professors))

	for _, prof := range professors {
		legacyID, err := strconv.ParseInt(prof.RmpID.String, 10, 64)
		if err != nil {
			slog.WarnContext(ctx, "professor has a malformed directory id",
				"name", prof.Name, "rmp_id", prof.RmpID.String)
			continue
		}

		ratings, err := r.client.TeacherRatings(ctx, legacyID)
		if err != nil {
			slog.WarnContext(ctx, "failed to fetch ratings",
				"name", prof.Name, "err", err)
			continue
		}

		err = r.store.SetProfessorRatings(ctx, catalog.SetProfessorRatingsParams{
			Name:           prof.Name,
			Rating:         ratings.AvgRating,
			Difficulty:     ratings.AvgDifficulty,
			NumRatings:     ratings.NumRatings,
			WouldTakeAgain: retakePercent(ratings),
		})
		if err != nil {
			slog.WarnContext(ctx, "failed to store ratings",
				"name", prof.Name, "err", err)
			continue
		}
		slog.InfoContext(ctx, "updated professor ratings",
			"name", prof.Name, "rating", ratings.AvgRating)
	}
	return nil
}

// retakePercent maps the upstream "unknown" sentinel to an explicit
// not-applicable null instead of storing -1 as if it were a number.
func retakePercent(ratings rmp.Ratings) sql.NullFloat64 {
	if ratings.WouldTakeAgainPercent == unknownRetakePercent {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{
		Float64: math.Round(ratings.WouldTakeAgainPercent),
		Valid:   true,
	}
}
