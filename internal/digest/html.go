package digest

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/sri657/interview-gap-matcher/internal/matching"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

type candidateView struct {
	Badge   string
	BadgeBG template.CSS
	BadgeFG template.CSS
	Name    string
	Email   string
	Status  string
	Days    string
}

func candidateViews(cands []types.Candidate) []candidateView {
	out := make([]candidateView, 0, len(cands))
	for _, c := range cands {
		v := candidateView{
			Badge:   "NOTION",
			BadgeBG: "#e3f2fd",
			BadgeFG: "#1565c0",
			Name:    c.Name,
			Email:   c.Email,
			Status:  c.Status,
		}
		if c.Source == types.SourceForm {
			v.Badge = "FORM"
			v.BadgeBG = "#e8f5e9"
			v.BadgeFG = "#2e7d32"
		}
		if len(c.AvailableDays) > 0 {
			days := append([]string(nil), c.AvailableDays...)
			sort.Strings(days)
			v.Days = strings.Join(days, ", ")
		}
		out = append(out, v)
	}
	return out
}

type gapRowView struct {
	Site       string
	Lesson     string
	Day        string
	Time       string
	StartDate  string
	EndDate    string
	District   string
	GapType    string
	GapColor   template.CSS
	Tentative  string
	Candidates []candidateView
}

type regionView struct {
	Region string
	Gaps   []gapRowView
}

type rosterView struct {
	Region      string
	FormCount   int
	NotionCount int
	Rows        []candidateView
}

type gapCardView struct {
	Num         int
	Site        string
	GapType     string
	GapColor    template.CSS
	BorderColor template.CSS
	Location    string
	Lesson      string
	Day         string
	Time        string
	StartDate   string
	EndDate     string
	Matched     int
	Candidates  []candidateView
	FormEmail   string
	BCC         string
	Campaign    string
}

type checklistView struct {
	Region string
	Count  int
	Cards  []gapCardView
}

type digestData struct {
	Today      string
	TotalGaps  int
	Matched    int
	HeatLine   template.HTML
	NoMatches  bool
	Regions    []regionView
	Roster     []rosterView
	Checklists []checklistView
}

// BuildHTML renders the full digest email body. gaps is the complete
// current gap set; matches drives the per-gap candidate lists.
func BuildHTML(matches []matching.Match, gaps []types.Gap, today time.Time) (string, error) {
	idx := buildIndex(matches)

	heat := make([]string, 0, len(idx.sorted))
	for _, r := range idx.sorted {
		heat = append(heat, fmt.Sprintf("%s: %d gaps", strings.ToUpper(r), len(idx.regions[r])))
	}

	var regions []regionView
	for _, r := range idx.sorted {
		list := append([]types.Gap(nil), idx.regions[r]...)
		sortByUrgency(list)
		rv := regionView{Region: strings.ToUpper(r)}
		for _, g := range list {
			rv.Gaps = append(rv.Gaps, gapRowView{
				Site:       g.Site,
				Lesson:     g.Lesson,
				Day:        g.Day,
				Time:       g.Time,
				StartDate:  g.StartDate,
				EndDate:    g.EndDate,
				District:   g.District,
				GapType:    string(g.Type),
				GapColor:   template.CSS(gapColor(g.Type)),
				Tentative:  strings.Join(g.FlaggedNames, ", "),
				Candidates: candidateViews(idx.gapCandidates[g.WorkshopKey]),
			})
		}
		regions = append(regions, rv)
	}

	rosterRegions := rosterByRegion(matches)
	var roster []rosterView
	for _, r := range idx.sorted {
		cands := rosterRegions[r]
		if len(cands) == 0 {
			continue
		}
		view := rosterView{Region: strings.ToUpper(r), Rows: candidateViews(cands)}
		for _, c := range cands {
			if c.Source == types.SourceForm {
				view.FormCount++
			} else {
				view.NotionCount++
			}
		}
		roster = append(roster, view)
	}

	checkRegions, checkOrder := checklistByRegion(idx, gaps)
	var checklists []checklistView
	num := 0
	for _, r := range checkOrder {
		cv := checklistView{Region: strings.ToUpper(r), Count: len(checkRegions[r])}
		for _, g := range checkRegions[r] {
			num++
			border := template.CSS("#e67e22")
			if strings.Contains(string(g.Type), "OPEN") {
				border = "#c0392b"
			}
			location := fmt.Sprintf("%s, %s", g.Site, strings.ToUpper(r))
			if g.District != "" {
				location += fmt.Sprintf(" (%s)", g.District)
			}
			cv.Cards = append(cv.Cards, gapCardView{
				Num:         num,
				Site:        g.Site,
				GapType:     string(g.Type),
				GapColor:    template.CSS(gapColor(g.Type)),
				BorderColor: border,
				Location:    location,
				Lesson:      g.Lesson,
				Day:         g.Day,
				Time:        g.Time,
				StartDate:   g.StartDate,
				EndDate:     g.EndDate,
				Matched:     len(idx.gapCandidates[g.WorkshopKey]),
				Candidates:  candidateViews(idx.gapCandidates[g.WorkshopKey]),
				FormEmail:   FormEmailText(r, g),
				BCC:         BCCText(r, g),
				Campaign:    CampaignText(r, g),
			})
		}
		checklists = append(checklists, cv)
	}

	data := digestData{
		Today:      today.Format("January 02, 2006"),
		TotalGaps:  len(gaps),
		Matched:    len(matches),
		HeatLine:   template.HTML(strings.Join(heat, " &nbsp;|&nbsp; ")),
		NoMatches:  len(matches) == 0,
		Regions:    regions,
		Roster:     roster,
		Checklists: checklists,
	}

	var sb strings.Builder
	if err := digestTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render digest: %w", err)
	}
	return sb.String(), nil
}

var digestTmpl = template.Must(template.New("digest").Funcs(template.FuncMap{
	"plural": func(n int) string {
		if n != 1 {
			return "s"
		}
		return ""
	},
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family:Arial,sans-serif;max-width:1100px;margin:0 auto;padding:16px">
  <h1 style="color:#4a90d9">Kodely Gap Match Digest</h1>
  <p style="color:#666">{{.Today}}</p>

  <div style="background:#f5f7fa;padding:12px 16px;border-radius:6px;margin-bottom:16px">
    <b>{{.TotalGaps}}</b> workshop gap(s) &nbsp;|&nbsp; <b>{{.Matched}}</b> matched candidate(s)
  </div>
  <div style="background:#fff3e0;padding:10px 16px;border-radius:6px;margin-bottom:24px;font-size:13px">
    {{.HeatLine}}
  </div>

  {{if .NoMatches}}<p style="color:#999;font-style:italic">No candidate matches found for current gaps.</p>{{end}}

{{range .Regions}}  <h2 style="color:#333;border-bottom:2px solid #4a90d9;padding-bottom:4px">
    {{.Region}} <span style="font-size:14px;color:#888">({{len .Gaps}} gap{{plural (len .Gaps)}})</span>
  </h2>
  <table style="border-collapse:collapse;width:100%;margin-bottom:24px">
    <tr style="background:#4a90d9;color:#fff">
      <th style="padding:8px;border:1px solid #ddd;text-align:left">Site</th>
      <th style="padding:8px;border:1px solid #ddd;text-align:left">Workshop Details</th>
      <th style="padding:8px;border:1px solid #ddd;text-align:left">School Info</th>
      <th style="padding:8px;border:1px solid #ddd;text-align:left">Gap Type</th>
      <th style="padding:8px;border:1px solid #ddd;text-align:left">Available Candidates</th>
    </tr>
{{range .Gaps}}    <tr>
      <td style="padding:8px;border:1px solid #ddd;vertical-align:top">{{.Site}}</td>
      <td style="padding:8px;border:1px solid #ddd;vertical-align:top">{{.Lesson}}<br>{{.Day}}s {{.Time}}<br>{{.StartDate}} &ndash; {{.EndDate}}</td>
      <td style="padding:8px;border:1px solid #ddd;vertical-align:top;font-size:12px">{{if .District}}District: {{.District}}{{else}}&mdash;{{end}}</td>
      <td style="padding:8px;border:1px solid #ddd;vertical-align:top"><span style="color:{{.GapColor}};font-weight:bold">{{.GapType}}</span>{{if .Tentative}}<br><span style="font-size:11px;color:#999">{{.Tentative}}</span>{{end}}</td>
      <td style="padding:8px;border:1px solid #ddd;vertical-align:top">{{if .Candidates}}{{range $i, $c := .Candidates}}{{if $i}}<br>{{end}}<span style="font-size:10px;background:{{$c.BadgeBG}};color:{{$c.BadgeFG}};padding:1px 4px;border-radius:3px">{{$c.Badge}}</span> {{$c.Name}}{{if $c.Email}} &lt;{{$c.Email}}&gt;{{end}} <span style="font-size:11px;color:#888">[{{$c.Status}}]</span>{{if $c.Days}} <span style="font-size:10px;color:#666">({{$c.Days}})</span>{{end}}{{end}}{{else}}<span style="color:#999">No matches</span>{{end}}</td>
    </tr>
{{end}}  </table>
{{end}}
  <h2 style="color:#455a64;border-bottom:2px solid #607d8b;padding-bottom:4px;margin-top:40px">
    All Matched Candidates by Region
  </h2>
  <p style="color:#666;font-size:13px">
    Complete list of all candidates. <b style="background:#e8f5e9;color:#2e7d32;padding:1px 5px;border-radius:3px">FORM</b> = leader confirmation form.
    <b style="background:#e3f2fd;color:#1565c0;padding:1px 5px;border-radius:3px">NOTION</b> = pipeline candidate.
  </p>
{{range .Roster}}  <h3 style="margin-top:16px">{{.Region}} &mdash; {{len .Rows}} candidate{{plural (len .Rows)}}
    <span style="font-size:12px;color:#888">({{.FormCount}} form, {{.NotionCount}} notion)</span>
  </h3>
  <table style="border-collapse:collapse;width:100%;margin-bottom:12px">
    <tr style="background:#607d8b;color:#fff">
      <th style="padding:8px;border:1px solid #ddd;text-align:left">Source</th>
      <th style="padding:8px;border:1px solid #ddd;text-align:left">Name</th>
      <th style="padding:8px;border:1px solid #ddd;text-align:left">Email</th>
      <th style="padding:8px;border:1px solid #ddd;text-align:left">Status</th>
      <th style="padding:8px;border:1px solid #ddd;text-align:left">Available Days</th>
    </tr>
{{range .Rows}}    <tr>
      <td style="padding:8px;border:1px solid #ddd;vertical-align:top"><span style="background:{{.BadgeBG}};color:{{.BadgeFG}};padding:2px 6px;border-radius:3px;font-size:11px;font-weight:bold">{{.Badge}}</span></td>
      <td style="padding:8px;border:1px solid #ddd;vertical-align:top"><b>{{.Name}}</b></td>
      <td style="padding:8px;border:1px solid #ddd;vertical-align:top">{{if .Email}}{{.Email}}{{else}}(none){{end}}</td>
      <td style="padding:8px;border:1px solid #ddd;vertical-align:top">{{.Status}}</td>
      <td style="padding:8px;border:1px solid #ddd;vertical-align:top;font-size:12px">{{if .Days}}{{.Days}}{{else}}&mdash;{{end}}</td>
    </tr>
{{end}}  </table>
{{end}}
  <h1 style="color:#c0392b;margin-top:48px;border-bottom:3px solid #c0392b;padding-bottom:6px">
    Action Checklist &amp; Ready-to-Send Templates
  </h1>
  <p style="color:#666;margin-bottom:8px">
    For each gap below: expand the templates, copy-paste, and send. Follow the steps in order.
  </p>
  <div style="background:#ffebee;padding:10px 16px;border-radius:6px;margin-bottom:24px;font-size:13px">
    <b>Workflow:</b> 1) Email FORM leaders first &rarr; 2) Email NOTION candidates &rarr;
    3) Post Handshake campaign at 9 PM, follow up next day &rarr; 4) BCC mass email &rarr; 5) Confirm placements
  </div>
{{range .Checklists}}  <h2 style="color:#333;border-bottom:2px solid #455a64;padding-bottom:4px;margin-top:32px">
    {{.Region}} &mdash; Action Checklist ({{.Count}} gaps)
  </h2>
{{range .Cards}}  <div style="border:2px solid {{.BorderColor}};border-radius:8px;padding:16px;margin-bottom:20px">
    <div style="display:flex;justify-content:space-between;align-items:center;margin-bottom:10px">
      <span style="font-size:16px;font-weight:bold">Gap #{{.Num}}: {{.Site}}</span>
      <span style="color:{{.GapColor}};font-weight:bold;font-size:13px">{{.GapType}}</span>
    </div>

    <div style="background:#f5f5f5;padding:10px;border-radius:4px;margin-bottom:12px;font-size:13px">
      <b>Location (copy-paste):</b> {{.Location}}<br>
      <b>Program:</b> {{.Lesson}}<br>
      <b>Day/Time:</b> {{.Day}}s, {{.Time}}<br>
      <b>Dates:</b> {{.StartDate}} &ndash; {{.EndDate}}
    </div>

    <div style="margin-bottom:12px">
      <b>Matched Candidates:</b> {{if .Matched}}<span style="color:#2e7d32;font-weight:bold">{{.Matched}} candidate{{plural .Matched}} matched</span>{{else}}<span style="color:#c0392b;font-weight:bold">0 candidates</span>{{end}}
      <div style="margin-top:4px;padding-left:8px">{{if .Candidates}}{{range .Candidates}}<div style="padding:3px 0"><span style="background:{{.BadgeBG}};color:{{.BadgeFG}};padding:1px 5px;border-radius:3px;font-size:10px;font-weight:bold">{{.Badge}}</span> <b>{{.Name}}</b> &mdash; {{if .Email}}{{.Email}}{{else}}(none){{end}} <span style="color:#888;font-size:11px">[{{.Status}}]{{if .Days}} | Days: {{.Days}}{{end}}</span></div>{{end}}{{else}}<span style="color:#c0392b;font-weight:bold">NO CANDIDATES — recruiting needed</span>{{end}}</div>
    </div>

    <h4 style="margin:12px 0 4px;color:#333">STEP-BY-STEP CHECKLIST</h4>
    <div style="background:#fff8e1;padding:10px;border-radius:4px;margin-bottom:12px;font-size:13px">
      <b>Step 1:</b> Email existing leaders from confirmation form (FORM candidates above)<br>
      <b>Step 2:</b> Email Notion pipeline candidates (NOTION candidates above)<br>
      <b>Step 3:</b> Post Handshake campaign (send at 9 PM, follow up next day)<br>
      <b>Step 4:</b> Send BCC mass email to broader list<br>
      <b>Step 5:</b> Check responses &amp; confirm placements
    </div>

    <details style="cursor:pointer;margin-bottom:8px">
      <summary style="color:#2e7d32;font-weight:bold;padding:6px 0">
        &#x2709; Template 1: Email to Existing Leaders (Form Candidates)
      </summary>
      <div style="background:#f1f8e9;border:1px solid #c5e1a5;border-radius:4px;padding:12px;margin-top:6px;font-size:12px;line-height:1.6;white-space:pre-wrap;font-family:monospace">{{.FormEmail}}</div>
    </details>

    <details style="cursor:pointer;margin-bottom:8px">
      <summary style="color:#1565c0;font-weight:bold;padding:6px 0">
        &#x2709; Template 2: BCC Mass Email (Job Posting)
      </summary>
      <div style="background:#e3f2fd;border:1px solid #90caf9;border-radius:4px;padding:12px;margin-top:6px;font-size:12px;line-height:1.6;white-space:pre-wrap;font-family:monospace">{{.BCC}}</div>
    </details>

    <details style="cursor:pointer;margin-bottom:8px">
      <summary style="color:#e65100;font-weight:bold;padding:6px 0">
        &#x1f4e2; Template 3: Handshake Campaign (post at 9 PM)
      </summary>
      <div style="background:#fff3e0;border:1px solid #ffcc80;border-radius:4px;padding:12px;margin-top:6px;font-size:12px;line-height:1.6;white-space:pre-wrap;font-family:monospace">{{.Campaign}}</div>
    </details>
  </div>
{{end}}{{end}}
  <hr style="border:none;border-top:1px solid #ddd;margin-top:32px">
  <p style="font-size:12px;color:#999">
    Automated digest from the Interview Gap Matcher.
    Matches are based on candidate location, pipeline stage, and day availability.
  </p>
</body>
</html>`))
