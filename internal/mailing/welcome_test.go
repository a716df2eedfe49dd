package mailing

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func hrefs(doc *goquery.Document) []string {
	var out []string
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			out = append(out, href)
		}
	})
	return out
}

func TestBuildWelcomeHTML(t *testing.T) {
	links := Links{
		Calendly:  "https://calendly.com/kodely/training",
		Checklist: "https://notion.so/checklist",
		Quiz:      "https://forms.example.com/quiz",
		AppStore:  "https://apps.apple.com/kodely",
		PlayStore: "https://play.google.com/kodely",
	}

	html, err := BuildWelcomeHTML("Jordan Li", "2026-03-16", "SF", links)
	require.NoError(t, err)

	doc := parseHTML(t, html)
	assert.Contains(t, doc.Find("body").Text(), "Hi Jordan,")
	assert.Contains(t, doc.Find("table").Text(), "SF")
	assert.Contains(t, doc.Find("table").Text(), "2026-03-16")

	all := hrefs(doc)
	for _, want := range []string{
		links.Calendly, links.Checklist, links.Quiz, links.AppStore, links.PlayStore,
		"https://learn.kodely.io", "mailto:talent@kodely.io",
	} {
		assert.Contains(t, all, want)
	}
}

func TestBuildWelcomeHTMLOmitsEmptySections(t *testing.T) {
	html, err := BuildWelcomeHTML("Mia Torres", "", "LA", Links{})
	require.NoError(t, err)

	doc := parseHTML(t, html)
	text := doc.Find("body").Text()
	assert.NotContains(t, text, "Schedule Your Training")
	assert.NotContains(t, text, "Onboarding Checklist")
	assert.NotContains(t, text, "Onboarding Quiz")
	assert.NotContains(t, text, "Leader App")
	// Core sections survive without links.
	assert.Contains(t, text, "Kodely University")
	assert.Contains(t, text, "TBD")
}

func TestBuildReturningWelcomeHTML(t *testing.T) {
	links := Links{
		ReturningCalendly: "https://calendly.com/kodely/returning",
		AppStore:          "https://apps.apple.com/kodely",
	}

	html, err := BuildReturningWelcomeHTML("Sam Okafor", "2026-04-01", "Chicago", links)
	require.NoError(t, err)

	doc := parseHTML(t, html)
	assert.Contains(t, doc.Find("h1").Text(), "Welcome Back")
	assert.Contains(t, doc.Find("body").Text(), "Hi Sam,")
	assert.Contains(t, hrefs(doc), links.ReturningCalendly)
}

func TestBuildRebookHTML(t *testing.T) {
	html, err := BuildRebookHTML("Jordan Li", "https://calendly.com/kodely/training")
	require.NoError(t, err)

	doc := parseHTML(t, html)
	assert.Contains(t, doc.Find("body").Text(), "another training session")
	assert.Contains(t, hrefs(doc), "https://calendly.com/kodely/training")
}

func TestSubjects(t *testing.T) {
	assert.Equal(t, "Welcome to Kodely, Jordan! - Onboarding Instructions", WelcomeSubject("Jordan Li"))
	assert.Equal(t, "Welcome Back, Sam! – Confirm Your Upcoming Kodely Session", ReturningSubject("Sam Okafor"))
	assert.Equal(t, "Solo", FirstName("Solo"))
	assert.Equal(t, "", FirstName(""))
}
