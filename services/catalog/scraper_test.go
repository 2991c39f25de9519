package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"slugsched-backend/lib/scrapers/classsearch"
	"slugsched-backend/lib/testutil"
	"slugsched-backend/services/catalog/db"

	"github.com/stretchr/testify/require"
)

const portalFormHTML = `<html><body>
<form action="index.php" method="post">
<input type="hidden" name="action" value="results"/>
<select id="term_dropdown" name="term">
	<option value="2260" selected>2026 Winter Quarter</option>
</select>
<select id="subject" name="subject">
	<option value="AM">Applied Mathematics</option>
	<option value="CSE">Computer Science and Engineering</option>
</select>
<select id="reg_status" name="reg_status">
	<option value="all">All Classes</option>
</select>
</form>
</body></html>`

const amResultsHTML = `<html><body>
<div class="panel panel-default">
	<div class="panel-heading">Search Results: 1 class found</div>
	<div class="panel-body">Showing 1 of 1 pages</div>
</div>
<div class="panel panel-default">
	<div class="panel-heading"><span>Open</span> AM 10 - 01 Mathematical Methods for Engineers I</div>
	<div class="panel-body">
		<a id="class_id_111" href="#">AM 10</a>
		<div>Instructor:</div><div>Lee,D.</div>
		<div>Location:</div><div>Kresge 327</div>
		<div>Day and Time:</div><div>TuTh 01:30PM-03:05PM</div>
		<div>Enrolled: 30 of 45</div>
	</div>
</div>
</body></html>`

const csePage1HTML = `<html><body>
<div class="panel panel-default">
	<div class="panel-heading">Search Results: 2 classes found</div>
	<div class="panel-body">Showing 1 of 2 pages</div>
</div>
<div class="panel panel-default">
	<div class="panel-heading"><span>Open</span> CSE 101 - 01 Introduction to Data Structures and Algorithms</div>
	<div class="panel-body">
		<a id="class_id_222" href="#">CSE 101</a>
		<div>Instructor:</div><div>Lee,D.</div>
		<div>Location:</div><div>Thim Lecture 003</div>
		<div>Day and Time:</div><div>MWF 10:40AM-11:45AM</div>
		<div>Enrolled: 120 of 150</div>
	</div>
</div>
<a onclick="document.search.action.value = 'next'; document.search.submit();">next &gt;</a>
</body></html>`

const csePage2HTML = `<html><body>
<div class="panel panel-default">
	<div class="panel-heading">Search Results: 2 classes found</div>
	<div class="panel-body">Showing 2 of 2 pages</div>
</div>
<div class="panel panel-default">
	<div class="panel-heading"><span>Open</span> CSE 130 - 01 Principles of Computer Systems Design</div>
	<div class="panel-body">
		<a id="class_id_333" href="#">CSE 130</a>
		<div>Instructor:</div><div>Garcia,M.</div>
		<div>Location:</div><div>Media Theater M110</div>
		<div>Day and Time:</div><div>TuTh 09:50AM-11:25AM</div>
		<div>Enrolled: 90 of 90</div>
	</div>
</div>
</body></html>`

const cse101ResultsHTML = `<html><body>
<div class="panel panel-default">
	<div class="panel-heading">Search Results: 1 class found</div>
	<div class="panel-body">Showing 1 of 1 pages</div>
</div>
<div class="panel panel-default">
	<div class="panel-heading"><span>Open</span> CSE 101 - 01 Introduction to Data Structures and Algorithms</div>
	<div class="panel-body">
		<a id="class_id_222" href="#">CSE 101</a>
		<div>Instructor:</div><div>Lee,D.</div>
		<div>Enrolled: 120 of 150</div>
	</div>
</div>
</body></html>`

const cse101DetailHTML = `<html><body>
<h2>CSE 101 - 01 Introduction to Data Structures and Algorithms</h2>
<div class="panel">
	<div class="panel-heading">Associated Discussion Sections or Labs</div>
	<div class="panel-body">
		<div class="row row-striped">#1 DIS 01A M 09:20AM-10:25AM Loc: Soc Sci 2 071 Enrl: 25 / 30</div>
		<div class="row row-striped">#2 DIS 01B W 09:20AM-10:25AM Loc: Soc Sci 2 071 Enrl: 30 / 30</div>
	</div>
</div>
</body></html>`

const bareDetailHTML = `<html><body>
<h2>AM 10 - 01 Mathematical Methods for Engineers I</h2>
</body></html>`

func newPortalServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(portalFormHTML))
	})
	mux.HandleFunc("POST /index.php", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Error(err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		switch r.PostFormValue("action") {
		case "results":
			switch {
			case r.PostFormValue("catalog_nbr") == "10":
				w.Write([]byte(amResultsHTML))
			case r.PostFormValue("catalog_nbr") == "101":
				w.Write([]byte(cse101ResultsHTML))
			case r.PostFormValue("catalog_nbr") == "130":
				w.Write([]byte(csePage2HTML))
			case r.PostFormValue("subject") == "AM":
				w.Write([]byte(amResultsHTML))
			default:
				w.Write([]byte(csePage1HTML))
			}
		case "next":
			w.Write([]byte(csePage2HTML))
		case "detail":
			if r.PostFormValue("class_data") == "222" {
				w.Write([]byte(cse101DetailHTML))
			} else {
				w.Write([]byte(bareDetailHTML))
			}
		default:
			http.Error(w, "unknown action", http.StatusBadRequest)
		}
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func setupScraper(t *testing.T) (Scraper, Store, context.Context) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/catalog/scraper",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	server := newPortalServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	t.Cleanup(cancel)

	client, err := classsearch.NewClient(ctx, classsearch.ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)

	store := NewStore(setup.DB)
	return NewScraper(store, client, "UC Santa Cruz"), store, ctx
}

func TestScraperRun(t *testing.T) {
	scraper, store, ctx := setupScraper(t)

	require.NoError(t, scraper.Run(ctx))

	schoolID, err := store.UpsertSchool(ctx, "UC Santa Cruz")
	require.NoError(t, err)

	courses, err := store.Courses(ctx, schoolID)
	require.NoError(t, err)
	require.Len(t, courses, 3)
	require.Equal(t, "AM 10", courses[0].Code)
	require.Equal(t, "AM", courses[0].Department)
	require.Equal(t, "2026 Winter Quarter", courses[0].Term)

	am, err := store.SectionByCode(ctx, "AM 10-01")
	require.NoError(t, err)
	require.Equal(t, "Lee,D.", am.Instructor)
	require.Equal(t, "TuTh", am.Days)
	require.Equal(t, "01:30PM", am.StartTime)
	require.Equal(t, "03:05PM", am.EndTime)
	require.Equal(t, classsearch.StatusOpen, am.Status)

	// full at 90 of 90, reported open but stored closed
	cse130, err := store.SectionByCode(ctx, "CSE 130-01")
	require.NoError(t, err)
	require.Equal(t, classsearch.StatusClosed, cse130.Status)

	professors, err := store.Professors(ctx)
	require.NoError(t, err)
	require.Len(t, professors, 2)
	require.Equal(t, "Garcia,M.", professors[0].Name)
	require.Equal(t, "Lee,D.", professors[1].Name)

	// a second full pass changes nothing
	require.NoError(t, scraper.Run(ctx))

	courses, err = store.Courses(ctx, schoolID)
	require.NoError(t, err)
	require.Len(t, courses, 3)
	professors, err = store.Professors(ctx)
	require.NoError(t, err)
	require.Len(t, professors, 2)
}

func TestScraperLinkSubsections(t *testing.T) {
	scraper, store, ctx := setupScraper(t)

	require.NoError(t, scraper.Run(ctx))
	require.NoError(t, scraper.LinkSubsections(ctx))

	parent, err := store.SectionByCode(ctx, "CSE 101-01")
	require.NoError(t, err)
	require.False(t, parent.ParentID.Valid)

	sections, err := store.CourseSections(ctx, parent.CourseID)
	require.NoError(t, err)
	require.Len(t, sections, 3)

	dis, err := store.SectionByCode(ctx, "CSE 101-01A")
	require.NoError(t, err)
	require.Equal(t, "DIS", dis.SectionType)
	require.Equal(t, parent.ID, dis.ParentID.Int64)
	require.Equal(t, "M", dis.Days)
	require.Equal(t, "Soc Sci 2 071", dis.Location)
	require.Equal(t, int64(25), dis.Enrolled)
	require.Equal(t, classsearch.StatusOpen, dis.Status)

	// second discussion is at capacity
	full, err := store.SectionByCode(ctx, "CSE 101-01B")
	require.NoError(t, err)
	require.Equal(t, classsearch.StatusClosed, full.Status)

	// the lecture without an associated panel stays a lone section
	am, err := store.SectionByCode(ctx, "AM 10-01")
	require.NoError(t, err)
	amSections, err := store.CourseSections(ctx, am.CourseID)
	require.NoError(t, err)
	require.Len(t, amSections, 1)

	// relinking is idempotent
	require.NoError(t, scraper.LinkSubsections(ctx))
	sections, err = store.CourseSections(ctx, parent.CourseID)
	require.NoError(t, err)
	require.Len(t, sections, 3)
}
