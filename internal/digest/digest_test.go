package digest

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sri657/interview-gap-matcher/internal/matching"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

var testToday = time.Date(2026, time.February, 4, 9, 0, 0, 0, time.UTC)

func gap(region, site string, t types.GapType) types.Gap {
	g := types.Gap{
		Region:    region,
		Site:      site,
		Lesson:    "Game Design",
		Day:       "Tuesday",
		Time:      "3:00 PM-4:00 PM",
		StartDate: "1/15/2026",
		EndDate:   "6/20/2026",
		Type:      t,
	}
	g.WorkshopKey = types.WorkshopKey(region, site, g.Lesson, g.Day, g.Time)
	return g
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Kodely Gap Match Digest — 2026-02-04", Subject(testToday))
}

func TestUrgencySort(t *testing.T) {
	gaps := []types.Gap{
		gap("Brooklyn", "Tentative Site", "TENTATIVE (interview only)"),
		gap("Brooklyn", "Third Party Site", types.GapThirdParty),
		gap("Brooklyn", "Backout Site", types.GapBackout),
		gap("Brooklyn", "Open Site", types.GapOpen),
	}
	sortByUrgency(gaps)

	assert.Equal(t, "Open Site", gaps[0].Site)
	assert.Equal(t, "Backout Site", gaps[1].Site)
	assert.Equal(t, "Third Party Site", gaps[2].Site)
	assert.Equal(t, "Tentative Site", gaps[3].Site)
}

func TestUrgencySortByStartDate(t *testing.T) {
	early := gap("Brooklyn", "Early", types.GapOpen)
	early.StartDate = "1/5/2026"
	late := gap("Brooklyn", "Late", types.GapOpen)
	late.StartDate = "3/5/2026"
	undated := gap("Brooklyn", "Undated", types.GapOpen)
	undated.StartDate = ""

	gaps := []types.Gap{undated, late, early}
	sortByUrgency(gaps)
	assert.Equal(t, "Early", gaps[0].Site)
	assert.Equal(t, "Late", gaps[1].Site)
	assert.Equal(t, "Undated", gaps[2].Site)
}

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestBuildHTML(t *testing.T) {
	bk1 := gap("Brooklyn", "PS 321", types.GapOpen)
	bk2 := gap("Brooklyn", "PS 58", types.GapBackout)
	bk2.FlaggedNames = []string{"Casey Kim"}
	qn := gap("Queens", "PS 122", types.GapOpen)
	qn.District = "D30"
	unmatched := gap("Queens", "PS 150", types.GapOpen)

	formCand := types.Candidate{
		ID: "form::ana@example.com", Name: "Ana Ruiz", Email: "ana@example.com",
		Status: "Confirmed Available", Source: types.SourceForm,
		AvailableDays: []string{"Tuesday", "Monday"},
	}
	notionCand := types.Candidate{
		ID: "page-1", Name: "Ben Cho", Email: "ben@example.com",
		Status: "Interviewed", Source: types.SourceNotion,
	}

	matches := []matching.Match{
		{Candidate: notionCand, Gaps: []types.Gap{bk1, bk2}},
		{Candidate: formCand, Gaps: []types.Gap{bk1, qn}},
	}
	gaps := []types.Gap{bk1, bk2, qn, unmatched}

	html, err := BuildHTML(matches, gaps, testToday)
	require.NoError(t, err)
	doc := parseHTML(t, html)

	assert.Contains(t, doc.Find("h1").First().Text(), "Kodely Gap Match Digest")
	assert.Contains(t, doc.Find("body").Text(), "February 04, 2026")
	assert.Contains(t, html, "<b>4</b> workshop gap(s)")
	assert.Contains(t, html, "<b>2</b> matched candidate(s)")
	assert.Contains(t, html, "BROOKLYN: 2 gaps")
	assert.Contains(t, html, "QUEENS: 1 gaps")

	// Brooklyn has more matched gaps, so it leads the region tables.
	h2s := doc.Find("h2")
	assert.Contains(t, h2s.First().Text(), "BROOKLYN")
	assert.Contains(t, h2s.First().Text(), "(2 gaps)")

	body := doc.Find("body").Text()
	assert.Contains(t, body, "Casey Kim")
	assert.Contains(t, body, "District: D30")
	assert.Contains(t, body, "Monday, Tuesday")
	assert.Contains(t, html, "FORM")
	assert.Contains(t, html, "NOTION")

	// Roster groups per region, form candidates first.
	assert.Contains(t, body, "BROOKLYN — 2 candidates")
	assert.Contains(t, body, "(1 form, 1 notion)")

	// The checklist numbers every gap, including the unmatched one.
	assert.Contains(t, body, "Gap #1:")
	assert.Contains(t, body, "Gap #4:")
	assert.Contains(t, body, "NO CANDIDATES — recruiting needed")
	assert.Contains(t, body, "QUEENS — Action Checklist (2 gaps)")

	// Recruiting templates render inside the expandable cards.
	assert.Contains(t, body, "SUBJECT: KODELY BROOKLYN AFTER SCHOOL HIRING")
	assert.Contains(t, body, "BROOKLYN After-School Instructors Needed (Winter/Spring 2026)")
	assert.Contains(t, body, "reaching out to existing Kodely instructors first")
	assert.Equal(t, 4, doc.Find("details").Length()/3)
}

func TestBuildHTMLNoMatches(t *testing.T) {
	g := gap("Brooklyn", "PS 321", types.GapOpen)
	html, err := BuildHTML(nil, []types.Gap{g}, testToday)
	require.NoError(t, err)

	doc := parseHTML(t, html)
	body := doc.Find("body").Text()
	assert.Contains(t, body, "No candidate matches found for current gaps.")
	assert.Contains(t, body, "Gap #1: PS 321")
	assert.Zero(t, doc.Find("table").Length())
}

func TestRecruitingTemplates(t *testing.T) {
	g := gap("Queens", "PS 122", types.GapOpen)
	g.District = "D30"

	campaign := CampaignText("Queens", g)
	assert.True(t, strings.HasPrefix(campaign, "SUBJECT: KODELY QUEENS AFTER SCHOOL HIRING"))
	assert.Contains(t, campaign, "PS 122 (Tuesdays)")
	assert.Contains(t, campaign, "Program: Game Design")
	assert.Contains(t, campaign, "Dates: 1/15/2026 – 6/20/2026")
	assert.Contains(t, campaign, "subject line: QUEENS HIRING")
	assert.Contains(t, campaign, "• Your resume")

	bcc := BCCText("Queens", g)
	assert.True(t, strings.HasPrefix(bcc, "SUBJECT: QUEENS After-School Instructors Needed"))
	assert.Contains(t, bcc, "schedule an interview")

	form := FormEmailText("Queens", g)
	assert.Contains(t, form, "in QUEENS, D30 for Winter/Spring 2026")
	assert.Contains(t, form, "Available Placement – QUEENS")
}
