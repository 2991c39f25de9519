package profmatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"strconv"
)

// The file-based variant of the ratings sync: instead of writing onto
// professor rows it maintains a name -> legacy-id map and a ratings
// map as json files, for consumers that want the mapping without the
// catalog database.

type FileRatings struct {
	AvgRating     float64 `json:"avgRating"`
	NumRatings    int64   `json:"numRatings"`
	AvgDifficulty float64 `json:"avgDifficulty"`
	// rounded percentage, or "N/A" when the directory doesn't know
	WouldTakeAgain any `json:"wouldTakeAgain"`
}

// ExportIDMap writes the current name -> legacy-id mapping of every
// linked professor.
func (r Resolver) ExportIDMap(ctx context.Context, path string) error {
	professors, err := r.store.LinkedProfessors(ctx)
	if err != nil {
		return err
	}

	idMap := map[string]int64{}
	for _, prof := range professors {
		legacyID, err := strconv.ParseInt(prof.RmpID.String, 10, 64)
		if err != nil {
			slog.WarnContext(ctx, "skipping malformed directory id",
				"name", prof.Name, "rmp_id", prof.RmpID.String)
			continue
		}
		idMap[prof.Name] = legacyID
	}

	encoded, err := json.MarshalIndent(idMap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, encoded, 0644)
}

// SyncRatingsFile reads an id map produced by ExportIDMap and writes a
// ratings map next to it, keeping entries from a previous run when the
// file already exists. Per-entry fetch failures are logged and the
// entry is left as it was.
func (r Resolver) SyncRatingsFile(ctx context.Context, idsPath, ratingsPath string) error {
	ctx, span := tracer.Start(ctx, "resolver:SyncRatingsFile")
	defer span.End()

	idsFile, err := os.ReadFile(idsPath)
	if err != nil {
		return err
	}
	var idMap map[string]int64
	err = json.Unmarshal(idsFile, &idMap)
	if err != nil {
		return err
	}

	ratingsMap := map[string]FileRatings{}
	if previous, err := os.ReadFile(ratingsPath); err == nil {
		// best effort, a corrupt previous file just starts fresh
		_ = json.Unmarshal(previous, &ratingsMap)
	}

	for name, legacyID := range idMap {
		ratings, err := r.client.TeacherRatings(ctx, legacyID)
		if err != nil {
			slog.WarnContext(ctx, "failed to fetch ratings",
				"name", name, "err", err)
			continue
		}

		entry := FileRatings{
			AvgRating:     ratings.AvgRating,
			NumRatings:    ratings.NumRatings,
			AvgDifficulty: ratings.AvgDifficulty,
			WouldTakeAgain: func() any {
				if ratings.WouldTakeAgainPercent == unknownRetakePercent {
					return "N/A"
				}
				return math.Round(ratings.WouldTakeAgainPercent)
			}(),
		}
		ratingsMap[name] = entry
		slog.InfoContext(ctx, "fetched ratings", "name", name, "rating", ratings.AvgRating)
	}

	encoded, err := json.MarshalIndent(ratingsMap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(ratingsPath, encoded, 0644)
}
