package classsearch

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"slugsched-backend/lib/htmlutil"
	"slugsched-backend/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/classsearch")

// The portal is a stateful form-driven UI, so the client is modeled as
// a finite state machine: search form -> results -> detail, with the
// named transitions Search, NextPage, OpenDetail and BackToResults.
// Issuing a transition from the wrong state is an error rather than a
// stray request.
type state int

const (
	stateInit state = iota
	stateSearchForm
	stateResults
	stateDetail
)

func (s state) String() string {
	switch s {
	case stateSearchForm:
		return "SearchFormReady"
	case stateResults:
		return "ResultsPage"
	case stateDetail:
		return "DetailPage"
	}
	return "Init"
}

type Term struct {
	Value string
	Name  string
}

// SearchForm is the enumerated state of the portal's search widgets:
// the currently selected term and the full subject list.
type SearchForm struct {
	Term     Term
	Subjects []string

	termField    string
	subjectField string
	catalogField string
	statusField  string
	action       string
}

type SearchQuery struct {
	Term       string
	Subject    string
	CatalogNbr string
}

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	state     state
	form      SearchForm
	hidden    url.Values
	lastQuery SearchQuery
	doc       *goquery.Document
}

type ClientOptions struct {
	BaseUrl string
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/classsearch/http")

	c := &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}
	return c, nil
}

func (c *Client) State() string {
	return c.state.String()
}

func selectName(sel *goquery.Selection, fallback string) string {
	name := sel.AttrOr("name", "")
	if name == "" {
		name = sel.AttrOr("id", fallback)
	}
	return name
}

// LoadSearchForm fetches the portal's landing page and reads the term
// and subject widgets off it. An empty subject list is a valid result,
// the caller simply has nothing to iterate.
func (c *Client) LoadSearchForm(ctx context.Context) (SearchForm, error) {
	ctx, span := tracer.Start(ctx, "client:LoadSearchForm")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get("")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return SearchForm{}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return SearchForm{}, err
	}

	form := SearchForm{
		catalogField: "catalog_nbr",
		action:       "index.php",
	}

	termSelect := doc.Find("select#term_dropdown")
	form.termField = selectName(termSelect, "term_dropdown")
	selected := termSelect.Find("option[selected]").First()
	if selected.Length() == 0 {
		selected = termSelect.Find("option").First()
	}
	form.Term = Term{
		Value: selected.AttrOr("value", ""),
		Name:  strings.TrimSpace(selected.Text()),
	}

	subjectSelect := doc.Find("select#subject")
	form.subjectField = selectName(subjectSelect, "subject")
	subjectSelect.Find("option").Each(func(_ int, opt *goquery.Selection) {
		value := opt.AttrOr("value", "")
		if value != "" {
			form.Subjects = append(form.Subjects, value)
		}
	})

	// whichever select holds the "all" option is the status filter
	statusSelect := doc.Find(`option[value="all"]`).First().Parent()
	if statusSelect.Length() > 0 {
		form.statusField = selectName(statusSelect, "")
	}

	hidden := url.Values{}
	formNode := doc.Find("form").First()
	if action := formNode.AttrOr("action", ""); action != "" {
		form.action = action
	}
	formNode.Find(`input[type="hidden"]`).Each(func(_ int, input *goquery.Selection) {
		name := input.AttrOr("name", "")
		if name != "" {
			hidden.Set(name, input.AttrOr("value", ""))
		}
	})

	span.SetAttributes(
		attribute.String("term", form.Term.Value),
		attribute.Int("subjects", len(form.Subjects)),
	)

	c.form = form
	c.hidden = hidden
	c.state = stateSearchForm
	c.doc = nil
	return form, nil
}

func (c *Client) post(ctx context.Context, values url.Values) (*goquery.Document, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		SetFormDataFromValues(values).
		Post(c.form.action)
	if err != nil {
		return nil, err
	}
	// a failure page must not parse as an empty results page
	if res.IsError() {
		return nil, fmt.Errorf("portal returned %s", res.Status())
	}
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}

func (c *Client) searchValues(q SearchQuery) url.Values {
	values := url.Values{}
	for key, vals := range c.hidden {
		for _, v := range vals {
			values.Add(key, v)
		}
	}
	values.Set(c.form.termField, q.Term)
	values.Set(c.form.subjectField, q.Subject)
	if q.CatalogNbr != "" {
		values.Set(c.form.catalogField, q.CatalogNbr)
	}
	// "all" makes closed and waitlisted sections visible; the default
	// "open" filter would silently drop a large part of the catalog
	if c.form.statusField != "" {
		values.Set(c.form.statusField, "all")
	}
	return values
}

// Search submits the search form for one subject (optionally narrowed
// to a catalog number) and lands on the first results page.
func (c *Client) Search(ctx context.Context, q SearchQuery) error {
	ctx, span := tracer.Start(ctx, "client:Search")
	defer span.End()
	span.SetAttributes(
		attribute.String("subject", q.Subject),
		attribute.String("catalog_nbr", q.CatalogNbr),
	)

	if c.state == stateInit {
		err := fmt.Errorf("cannot search from state %s: load the search form first", c.state)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	values := c.searchValues(q)
	values.Set("action", "results")

	doc, err := c.post(ctx, values)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit search")
		return err
	}

	c.doc = doc
	c.lastQuery = q
	c.state = stateResults
	return nil
}

// Listings extracts the raw course blocks on the current results page.
// The results-summary banner is not a course and is skipped.
func (c *Client) Listings(ctx context.Context) ([]RawListing, error) {
	_, span := tracer.Start(ctx, "client:Listings")
	defer span.End()

	if c.state != stateResults {
		err := fmt.Errorf("cannot read listings from state %s", c.state)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var listings []RawListing
	c.doc.Find("div.panel.panel-default").Each(func(_ int, panel *goquery.Selection) {
		header := htmlutil.FlatText(panel.Find(".panel-heading"))
		if strings.Contains(header, "Search Results") {
			return
		}
		listings = append(listings, RawListing{
			Header:  header,
			Body:    htmlutil.BlockText(panel.Find(".panel-body")),
			ClassID: panel.Find(`a[id^="class_id_"]`).AttrOr("id", ""),
		})
	})

	span.SetAttributes(attribute.Int("listings", len(listings)))
	return listings, nil
}

const nextControlSelector = `a[onclick*="action.value = 'next'"]`

func (c *Client) HasNextPage() bool {
	return c.state == stateResults && c.doc.Find(nextControlSelector).Length() > 0
}

// NextPage follows the results pagination control. Callers check
// HasNextPage first; the subject loop terminates when it reports false.
func (c *Client) NextPage(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:NextPage")
	defer span.End()

	if c.state != stateResults {
		err := fmt.Errorf("cannot paginate from state %s", c.state)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if c.doc.Find(nextControlSelector).Length() == 0 {
		err := fmt.Errorf("results page has no next control")
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	values := c.searchValues(c.lastQuery)
	values.Set("action", "next")

	doc, err := c.post(ctx, values)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch next page")
		return err
	}

	c.doc = doc
	return nil
}

type DetailPage struct {
	doc *goquery.Document
}

// OpenDetail opens the detail view behind a lecture's class_id anchor.
func (c *Client) OpenDetail(ctx context.Context, classID string) (DetailPage, error) {
	ctx, span := tracer.Start(ctx, "client:OpenDetail")
	defer span.End()
	span.SetAttributes(attribute.String("class_id", classID))

	if c.state != stateResults {
		err := fmt.Errorf("cannot open a detail view from state %s", c.state)
		span.SetStatus(codes.Error, err.Error())
		return DetailPage{}, err
	}

	values := c.searchValues(c.lastQuery)
	values.Set("action", "detail")
	values.Set("class_data", strings.TrimPrefix(classID, "class_id_"))

	doc, err := c.post(ctx, values)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open detail view")
		return DetailPage{}, err
	}

	c.state = stateDetail
	return DetailPage{doc: doc}, nil
}

// BackToResults re-submits the last search to return from a detail
// view, landing on the first results page again.
func (c *Client) BackToResults(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:BackToResults")
	defer span.End()

	if c.state != stateDetail {
		err := fmt.Errorf("cannot go back to results from state %s", c.state)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return c.Search(ctx, c.lastQuery)
}

// ParentSectionNumber reads the lecture's own section number out of
// the detail page heading, e.g. "CSE 101 - 01 Introduction ...".
func (p DetailPage) ParentSectionNumber() (string, bool) {
	heading := htmlutil.FlatText(p.doc.Find("h2").First())
	groups := parentSectionRegex.FindStringSubmatch(heading)
	if groups == nil {
		return "", false
	}
	return groups[1], true
}

// AssociatedRows returns the flattened text of each row in the
// "Associated Discussion Sections or Labs" panel. A lecture without
// such a panel simply has zero rows.
func (p DetailPage) AssociatedRows() []string {
	var panel *goquery.Selection
	p.doc.Find(".panel-heading").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		if strings.Contains(heading.Text(), "Associated") {
			panel = heading.Closest(".panel")
			return false
		}
		return true
	})
	if panel == nil {
		return nil
	}

	var rows []string
	panel.Find(".row.row-striped").Each(func(_ int, row *goquery.Selection) {
		rows = append(rows, htmlutil.FlatText(row))
	})
	return rows
}
