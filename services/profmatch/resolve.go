package profmatch

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"slugsched-backend/lib/scrapers/rmp"
	"slugsched-backend/services/catalog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("services/profmatch")

// Resolver reconciles scraped instructor names against the external
// ratings directory, one professor at a time.
type Resolver struct {
	store  catalog.Store
	client *rmp.Client
}

func NewResolver(store catalog.Store, client *rmp.Client) Resolver {
	return Resolver{
		store:  store,
		client: client,
	}
}

type Action string

const (
	// a new or corrected link was written
	ActionLinked Action = "linked"
	// the existing link was confirmed, nothing written
	ActionKept Action = "kept"
	// the existing link lost its evidence and was retracted
	ActionUnlinked Action = "unlinked"
	// no link exists and the evidence is too weak to create one
	ActionNone Action = "none"
	// the directory returned no candidates at all
	ActionNoCandidates Action = "no candidates"
)

type Decision struct {
	Professor string
	Action    Action
	// best-scoring candidate, unset when there were none
	Candidate *rmp.Teacher
	Score     int
}

type ResolveOptions struct {
	// score and decide but don't write anything
	DryRun bool
}

// ResolveAll runs one resolution pass over every known professor. A
// professor that fails to resolve is logged and skipped.
func (r Resolver) ResolveAll(ctx context.Context, opts ResolveOptions) ([]Decision, error) {
	ctx, span := tracer.Start(ctx, "resolver:ResolveAll")
	defer span.End()

	professors, err := r.store.Professors(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	slog.InfoContext(ctx, "resolving professor identities",
		"professors", len(professors), "dry_run", opts.DryRun)

	var decisions []Decision
	for _, prof := range professors {
		decision, err := r.resolveOne(ctx, prof, opts)
		if err != nil {
			slog.WarnContext(ctx, "failed to resolve professor",
				"name", prof.Name, "err", err)
			continue
		}
		decisions = append(decisions, decision)
	}
	return decisions, nil
}

func (r Resolver) resolveOne(ctx context.Context, prof catalog.Professor, opts ResolveOptions) (Decision, error) {
	ctx, span := tracer.Start(ctx, "resolver:resolveOne")
	defer span.End()
	span.SetAttributes(attribute.String("name", prof.Name))

	taught, err := r.store.TaughtCourses(ctx, prof.Name)
	if err != nil {
		return Decision{}, err
	}
	ev := EvidenceFor(prof.Name, taught)

	candidates := r.client.SearchTeachers(ctx,
		strings.TrimSpace(ev.LastName+" "+ev.FirstInitial))
	if len(candidates) == 0 {
		// the initial might be formatted differently over there
		candidates = r.client.SearchTeachers(ctx, ev.LastName)
	}
	if len(candidates) == 0 {
		return Decision{Professor: prof.Name, Action: ActionNoCandidates}, nil
	}

	ranked := Rank(candidates, ev)
	best := ranked[0]
	bestID := strconv.FormatInt(best.Candidate.LegacyID, 10)

	decision := Decision{
		Professor: prof.Name,
		Candidate: &best.Candidate,
		Score:     best.Score,
	}

	if best.Score >= LinkThreshold {
		if prof.RmpID.Valid && prof.RmpID.String == bestID {
			decision.Action = ActionKept
			return decision, nil
		}
		decision.Action = ActionLinked
		if !opts.DryRun {
			err := r.store.LinkProfessor(ctx, prof.Name, bestID)
			if err != nil {
				return Decision{}, err
			}
		}
		slog.InfoContext(ctx, "linked professor",
			"name", prof.Name,
			"candidate", best.Candidate.FirstName+" "+best.Candidate.LastName,
			"score", best.Score, "dry_run", opts.DryRun)
		return decision, nil
	}

	// weak winner: only retract if we're currently linked to exactly
	// this candidate, an unrelated existing link stays untouched
	if prof.RmpID.Valid && prof.RmpID.String == bestID {
		decision.Action = ActionUnlinked
		if !opts.DryRun {
			err := r.store.UnlinkProfessor(ctx, prof.Name)
			if err != nil {
				return Decision{}, err
			}
		}
		slog.InfoContext(ctx, "dropped professor link",
			"name", prof.Name, "score", best.Score, "dry_run", opts.DryRun)
		return decision, nil
	}

	decision.Action = ActionNone
	return decision, nil
}
