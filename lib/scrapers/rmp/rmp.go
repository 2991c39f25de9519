package rmp

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"slugsched-backend/lib/telemetry"
	"slugsched-backend/lib/throttle"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("scrapers/rmp")

// Client queries the external professor-ratings directory. Search
// failures are swallowed at this boundary and reported as zero
// candidates: they usually mean transient rate limiting, which the
// resolver treats the same as "nobody found".
type Client struct {
	Http     *resty.Client
	schoolID string
	limiter  *throttle.Limiter
}

type ClientOptions struct {
	// defaults to the public directory endpoint
	BaseUrl string
	// the directory's opaque identifier for the institution
	SchoolID string
	// minimum spacing between requests, zero disables the throttle
	Throttle time.Duration
}

func NewClient(opts ClientOptions) *Client {
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = "https://www.ratemyprofessors.com"
	}

	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/rmp/http")

	return &Client{
		Http:     client,
		schoolID: opts.SchoolID,
		limiter:  throttle.New(opts.Throttle),
	}
}

type Teacher struct {
	LegacyID   int64
	FirstName  string
	LastName   string
	Department string
	// course-name strings the directory believes this teacher taught
	Courses []string
}

const teacherSearchQuery = `query ($query: TeacherSearchQuery!) {
    newSearch { teachers(query: $query) { edges { node {
        legacyId firstName lastName department
        courseCodes { courseName }
    } } } }
}`

type teacherSearchResponse struct {
	NewSearch struct {
		Teachers struct {
			Edges []struct {
				Node struct {
					LegacyID    int64  `json:"legacyId"`
					FirstName   string `json:"firstName"`
					LastName    string `json:"lastName"`
					Department  string `json:"department"`
					CourseCodes []struct {
						CourseName string `json:"courseName"`
					} `json:"courseCodes"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"teachers"`
	} `json:"newSearch"`
}

// SearchTeachers looks candidates up by free-text query scoped to the
// configured school. Any request or decoding failure yields an empty
// candidate list, never an error.
func (c *Client) SearchTeachers(ctx context.Context, query string) []Teacher {
	ctx, span := tracer.Start(ctx, "client:SearchTeachers")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	if err := c.limiter.Wait(ctx); err != nil {
		return nil
	}

	variables := map[string]any{
		"query": map[string]string{
			"schoolID": c.schoolID,
			"text":     query,
		},
	}
	var response teacherSearchResponse
	err := c.graphql(ctx, "TeacherSearch", teacherSearchQuery, variables, &response)
	if err != nil {
		slog.WarnContext(ctx, "directory search failed, treating as no candidates",
			"query", query, "err", err)
		return nil
	}

	var teachers []Teacher
	for _, edge := range response.NewSearch.Teachers.Edges {
		node := edge.Node
		courses := make([]string, len(node.CourseCodes))
		for i, code := range node.CourseCodes {
			courses[i] = code.CourseName
		}
		teachers = append(teachers, Teacher{
			LegacyID:   node.LegacyID,
			FirstName:  node.FirstName,
			LastName:   node.LastName,
			Department: node.Department,
			Courses:    courses,
		})
	}

	span.SetAttributes(attribute.Int("candidates", len(teachers)))
	return teachers
}

type Ratings struct {
	AvgRating     float64
	AvgDifficulty float64
	NumRatings    int64
	// -1 means the directory doesn't know
	WouldTakeAgainPercent float64
}

const teacherRatingsQuery = `query ($id: ID!) {
    node(id: $id) {
      ... on Teacher {
        avgRating
        numRatings
        avgDifficulty
        wouldTakeAgainPercent
      }
    }
}`

type teacherRatingsResponse struct {
	Node *struct {
		AvgRating             float64 `json:"avgRating"`
		NumRatings            int64   `json:"numRatings"`
		AvgDifficulty         float64 `json:"avgDifficulty"`
		WouldTakeAgainPercent float64 `json:"wouldTakeAgainPercent"`
	} `json:"node"`
}

// NodeID derives the directory's graphql node key from a legacy
// numeric teacher id.
func NodeID(legacyID int64) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("Teacher-%d", legacyID)))
}

// TeacherRatings fetches aggregate rating statistics for one resolved
// teacher id.
func (c *Client) TeacherRatings(ctx context.Context, legacyID int64) (Ratings, error) {
	ctx, span := tracer.Start(ctx, "client:TeacherRatings")
	defer span.End()
	span.SetAttributes(attribute.Int64("legacy_id", legacyID))

	if err := c.limiter.Wait(ctx); err != nil {
		return Ratings{}, err
	}

	variables := map[string]any{"id": NodeID(legacyID)}
	var response teacherRatingsResponse
	err := c.graphql(ctx, "TeacherRatings", teacherRatingsQuery, variables, &response)
	if err != nil {
		return Ratings{}, err
	}
	if response.Node == nil {
		return Ratings{}, fmt.Errorf("no teacher node for legacy id %d", legacyID)
	}

	return Ratings{
		AvgRating:             response.Node.AvgRating,
		AvgDifficulty:         response.Node.AvgDifficulty,
		NumRatings:            response.Node.NumRatings,
		WouldTakeAgainPercent: response.Node.WouldTakeAgainPercent,
	}, nil
}
