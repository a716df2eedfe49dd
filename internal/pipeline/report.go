package pipeline

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/sri657/interview-gap-matcher/internal/notion"
	"github.com/sri657/interview-gap-matcher/internal/opshub"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

// DigestSubject is the subject line for the onboarding report email.
func DigestSubject(today time.Time) string {
	return fmt.Sprintf("Kodely Onboarding Report — %s", today.Format("Jan 02, 2006"))
}

type taskBadge struct {
	Color template.CSS
	Icon  template.HTML
	Name  string
}

type workshopView struct {
	Site     string
	Lesson   string
	Schedule string
}

type digestRow struct {
	Name      string
	Region    string
	Start     string
	Badges    []taskBadge
	Workshops []workshopView
}

type digestEmailData struct {
	Date        string
	Total       int
	UrgentDays  int
	WarningDays int
	Urgent      []digestRow
	Warning     []digestRow
	InProgress  []digestRow
	FullyDone   []string
}

func digestRows(entries []digestEntry, workshops map[string][]opshub.Workshop) []digestRow {
	rows := make([]digestRow, 0, len(entries))
	for _, e := range entries {
		row := digestRow{
			Name:   e.Leader.Name,
			Region: e.Leader.Region,
			Start:  "TBD",
		}
		if e.Leader.StartDate != nil {
			if d := e.DaysUntil; d < 0 {
				row.Start = fmt.Sprintf("%s (%dd ago)", e.Leader.StartDate.Format("Jan 2"), -d)
			} else {
				row.Start = fmt.Sprintf("%s (%dd)", e.Leader.StartDate.Format("Jan 2"), d)
			}
		}
		for _, t := range e.Completed {
			row.Badges = append(row.Badges, taskBadge{Color: "green", Icon: "&#9989;", Name: t})
		}
		for _, t := range e.Incomplete {
			row.Badges = append(row.Badges, taskBadge{Color: "red", Icon: "&#10060;", Name: t})
		}
		for _, w := range workshops[e.Leader.Name] {
			row.Workshops = append(row.Workshops, workshopView{
				Site:     w.Site,
				Lesson:   w.Lesson,
				Schedule: w.Day + " " + w.Time,
			})
		}
		rows = append(rows, row)
	}
	return rows
}

// BuildDigestEmailHTML renders the daily onboarding report as an HTML
// email, the same grouping as the Slack digest with color-coded tables.
func BuildDigestEmailHTML(leaders []types.Leader, workshops map[string][]opshub.Workshop, today time.Time, urgentDays, warningDays int) (string, error) {
	g := GroupForDigest(leaders, today, urgentDays, warningDays)
	data := digestEmailData{
		Date:        today.Format("Jan 02, 2006"),
		Total:       len(leaders),
		UrgentDays:  urgentDays,
		WarningDays: warningDays,
		Urgent:      digestRows(g.Urgent, workshops),
		Warning:     digestRows(g.Warning, workshops),
		InProgress:  digestRows(g.InProgress, workshops),
		FullyDone:   g.FullyDone,
	}
	var buf strings.Builder
	if err := digestEmailTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render onboarding report: %w", err)
	}
	return buf.String(), nil
}

var digestEmailTmpl = template.Must(template.New("onboarding_report").Funcs(template.FuncMap{
	"plural": plural,
}).Parse(`<!DOCTYPE html><html><head><meta charset='utf-8'></head><body style='font-family:Arial,sans-serif;max-width:750px;margin:auto;'>
<h2 style='background:#1a1a2e;color:#fff;padding:14px 18px;margin:0;border-radius:6px 6px 0 0;'>KODELY DAILY ONBOARDING REPORT &mdash; {{.Date}}</h2>
<p style='padding:0 18px;'><strong>{{.Total}}</strong> leader{{plural .Total}} actively onboarding</p>
{{if .Urgent}}<h3 style='color:#cc0000;margin:18px 0 8px;'>&#128680; URGENT &mdash; Starting in &lt;{{.UrgentDays}} days</h3>
{{template "group_table" .Urgent}}{{end}}
{{if .Warning}}<h3 style='color:#cc8800;margin:18px 0 8px;'>&#9888;&#65039; WARNING &mdash; Starting in &lt;{{.WarningDays}} days</h3>
{{template "group_table" .Warning}}{{end}}
{{if .InProgress}}<h3 style='margin:18px 0 8px;'>&#9203; IN PROGRESS</h3>
{{template "group_table" .InProgress}}{{end}}
{{if .FullyDone}}<p style='margin:18px 0;'>&#9989; <strong>{{len .FullyDone}}</strong> leader{{plural (len .FullyDone)}} fully onboarded: {{range $i, $n := .FullyDone}}{{if $i}}, {{end}}{{$n}}{{end}}</p>{{end}}
<br><p style='color:#999;font-size:12px;'>Generated by Kodely Onboarding Report</p>
</body></html>
{{define "group_table"}}<table style='border-collapse:collapse;width:100%;' border='1' cellpadding='6' cellspacing='0'>
<tr style='background:#eee;'><th>Leader</th><th>Region</th><th>Starts</th><th>Tasks</th><th>Workshop(s)</th></tr>
{{range .}}<tr><td>{{.Name}}</td><td>{{.Region}}</td><td>{{.Start}}</td><td>{{range $i, $b := .Badges}}{{if $i}} &nbsp; {{end}}<span style='color:{{$b.Color}};'>{{$b.Icon}} {{$b.Name}}</span>{{end}}</td><td>{{if .Workshops}}{{range $i, $w := .Workshops}}{{if $i}}<br>{{end}}{{$w.Site}} &mdash; {{$w.Lesson}}<br><small>{{$w.Schedule}}</small>{{end}}{{else}}<span style='color:#888;'>None assigned</span>{{end}}</td></tr>
{{end}}</table>{{end}}`))

// stepCol is one task column in the detailed report. Automated steps
// are handled by this system; manual ones need a teammate.
type stepCol struct {
	Prop    string
	Display string
	Auto    bool
}

var stepCols = []stepCol{
	{notion.PropComplianceStatus, "Background Check", true},
	{notion.PropOnboardingEmail, "Welcome Email", true},
	{notion.PropLessonPlan, "Lesson Plan", true},
	{notion.PropSlackInvite, "Slack Invite", false},
	{notion.PropWorkshopSlack, "Workshop Slack", false},
	{notion.PropGusto, "Gusto", false},
	{notion.PropTrainingStatus, "Training", true},
	{notion.PropTrainingOutcome, "Outcome", true},
}

// stepValue reads a step column's raw value off a leader. Training
// fields live on the struct, not in TaskFields.
func stepValue(l types.Leader, prop string) string {
	switch prop {
	case notion.PropTrainingStatus:
		return l.TrainingStatus
	case notion.PropTrainingOutcome:
		return l.TrainingOutcome
	default:
		return l.Task(prop)
	}
}

type taskCell struct {
	BG    template.CSS
	FG    template.CSS
	Bold  bool
	Small bool
	Text  template.HTML
}

func statusCell(value string) taskCell {
	if notion.TaskDone(value) {
		return taskCell{BG: "#d4edda", FG: "#155724", Bold: true, Text: "&#9989;"}
	}
	switch strings.ToLower(value) {
	case "", "not sent", "no", "n/a":
		return taskCell{BG: "#f8d7da", FG: "#721c24", Text: "&#10060;"}
	}
	short := value
	if len(short) > 17 {
		short = short[:15] + ".."
	}
	return taskCell{BG: "#fff3cd", FG: "#856404", Small: true, Text: template.HTML(template.HTMLEscapeString(short))}
}

type detailRow struct {
	Name      string
	Region    string
	RowBG     template.CSS
	StartText string
	StartNote string
	NoteColor template.CSS
	Workshops []workshopView
	Cells     []taskCell
}

type stageSection struct {
	Label         template.HTML
	BG            template.CSS
	Desc          string
	Count         int
	ManualPending int
	Rows          []detailRow
}

type detailedReportData struct {
	Date          string
	PipelineCount int
	ActiveCount   int
	Steps         []stepCol
	Stages        []stageSection
	OtherCount    int
}

type stageLabel struct {
	Label template.HTML
	BG    template.CSS
	Desc  string
}

var stageLabels = map[string]stageLabel{
	"Matched":                  {"&#127920; MATCHED", "#e8f0fe", "Waiting for background check to be sent"},
	"Background Check Pending": {"&#128270; BACKGROUND CHECK PENDING", "#f3e5f5", "Checkr running — waiting for clearance"},
	"Onboarding Setup":         {"&#128736; ONBOARDING SETUP", "#fff8e1", "Access setup in progress — check manual tasks"},
	"Training In Progress":     {"&#127891; TRAINING IN PROGRESS", "#e8f5e9", "Waiting for training completion via Calendly"},
	"ACTIVE":                   {"&#9989; ACTIVE", "#e8f5e9", "Fully onboarded and active"},
	"Needs Review":             {"&#128680; NEEDS REVIEW", "#fce4ec", "Training failed or no-show — manual review required"},
}

var detailStageOrder = []string{
	"Matched",
	"Background Check Pending",
	"Onboarding Setup",
	"Training In Progress",
	"ACTIVE",
	"Needs Review",
}

func detailLeaderRow(l types.Leader, today time.Time, workshops map[string][]opshub.Workshop, urgentDays, warningDays int) detailRow {
	row := detailRow{
		Name:      l.Name,
		Region:    l.Region,
		RowBG:     "#fff",
		StartText: "TBD",
	}
	days := daysUntilStart(l.StartDate, today)
	if l.StartDate != nil {
		row.StartText = l.StartDate.Format("Jan 2")
		switch {
		case days < 0:
			row.StartNote = fmt.Sprintf("(%dd ago)", -days)
			row.NoteColor = "red"
			row.RowBG = "#fff0f0"
		case days < urgentDays:
			row.StartNote = fmt.Sprintf("(%dd)", days)
			row.NoteColor = "red"
			row.RowBG = "#fff0f0"
		case days < warningDays:
			row.StartNote = fmt.Sprintf("(%dd)", days)
			row.NoteColor = "#856404"
			row.RowBG = "#fffbe6"
		default:
			row.StartNote = fmt.Sprintf("(%dd)", days)
		}
	}
	for _, w := range workshops[l.Name] {
		row.Workshops = append(row.Workshops, workshopView{
			Site:     w.Site,
			Schedule: w.Day + " " + w.Time,
		})
	}
	for _, col := range stepCols {
		row.Cells = append(row.Cells, statusCell(stepValue(l, col.Prop)))
	}
	return row
}

// BuildDetailedReportHTML renders the per-stage onboarding board with
// one column per task, flagging which steps are automated and which
// need manual action.
func BuildDetailedReportHTML(leaders []types.Leader, workshops map[string][]opshub.Workshop, today time.Time, urgentDays, warningDays int) (string, error) {
	byStage := make(map[string][]types.Leader, len(detailStageOrder))
	var other int
	known := make(map[string]bool, len(detailStageOrder))
	for _, s := range detailStageOrder {
		known[s] = true
	}
	for _, l := range leaders {
		if known[l.ReadinessStatus] {
			byStage[l.ReadinessStatus] = append(byStage[l.ReadinessStatus], l)
		} else {
			other++
		}
	}

	activeCount := len(byStage["ACTIVE"])
	data := detailedReportData{
		Date:          today.Format("Jan 02, 2006"),
		PipelineCount: len(leaders) - activeCount,
		ActiveCount:   activeCount,
		Steps:         stepCols,
		OtherCount:    other,
	}

	for _, stage := range detailStageOrder {
		group := byStage[stage]
		if len(group) == 0 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			return daysUntilStart(group[i].StartDate, today) < daysUntilStart(group[j].StartDate, today)
		})

		manualPending := 0
		for _, l := range group {
			for _, col := range stepCols {
				if !col.Auto && !notion.TaskDone(stepValue(l, col.Prop)) {
					manualPending++
				}
			}
		}

		label := stageLabels[stage]
		section := stageSection{
			Label:         label.Label,
			BG:            label.BG,
			Desc:          label.Desc,
			Count:         len(group),
			ManualPending: manualPending,
		}
		for _, l := range group {
			section.Rows = append(section.Rows, detailLeaderRow(l, today, workshops, urgentDays, warningDays))
		}
		data.Stages = append(data.Stages, section)
	}

	var buf strings.Builder
	if err := detailedReportTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render detailed onboarding report: %w", err)
	}
	return buf.String(), nil
}

var detailedReportTmpl = template.Must(template.New("detailed_report").Funcs(template.FuncMap{
	"plural": plural,
}).Parse(`<!DOCTYPE html><html><head><meta charset='utf-8'></head>
<body style='font-family:Arial,sans-serif;max-width:1000px;margin:auto;'>
<h2 style='background:#1a1a2e;color:#fff;padding:14px 18px;margin:0;border-radius:6px 6px 0 0;'>KODELY ONBOARDING DETAILED REPORT &mdash; {{.Date}}</h2>
<p style='padding:4px 18px;margin:0;'><strong>{{.PipelineCount}}</strong> leaders in pipeline &nbsp;|&nbsp; <strong>{{.ActiveCount}}</strong> active</p>
<p style='padding:0 18px;margin:4px 0 12px;font-size:13px;color:#555;'>&#9889; = Automated &nbsp;&nbsp; &#9997; = Manual action needed</p>
{{range .Stages}}<h3 style='background:{{.BG}};padding:10px 14px;margin:18px 0 0;border-radius:4px;'>{{.Label}} &mdash; {{.Count}} leader{{plural .Count}}{{if .ManualPending}} &nbsp;|&nbsp; <strong style='color:#cc0000;'>{{.ManualPending}} manual task(s) pending</strong>{{end}}</h3>
<p style='margin:2px 0 8px 14px;font-size:12px;color:#666;'>{{.Desc}}</p>
<table style='border-collapse:collapse;width:100%;font-size:13px;' border='1' cellpadding='0' cellspacing='0'>
<tr style='background:#eee;'><th style='padding:6px 8px;text-align:left;white-space:nowrap;'>Leader</th><th style='padding:6px 8px;'>Region</th><th style='padding:6px 8px;'>Starts</th><th style='padding:6px 8px;'>Workshop</th>{{range $.Steps}}<th style='padding:6px 4px;font-size:12px;text-align:center;white-space:nowrap;'>{{if .Auto}}&#9889;{{else}}&#9997;{{end}}<br>{{.Display}}</th>{{end}}</tr>
{{range .Rows}}<tr style='background:{{.RowBG}};'><td style='padding:6px 8px;white-space:nowrap;'><strong>{{.Name}}</strong></td><td style='padding:6px 8px;text-align:center;'>{{.Region}}</td><td style='padding:6px 8px;text-align:center;'>{{if .StartNote}}{{.StartText}}<br><small{{if .NoteColor}} style='color:{{.NoteColor}};'{{end}}>{{.StartNote}}</small>{{else}}{{.StartText}}{{end}}</td><td style='padding:6px 8px;'>{{if .Workshops}}{{range $i, $w := .Workshops}}{{if $i}}<br>{{end}}<small>{{$w.Site}}<br>{{$w.Schedule}}</small>{{end}}{{else}}<small style='color:#999;'>None</small>{{end}}</td>{{range .Cells}}<td style='text-align:center;background:{{.BG}};color:{{.FG}};{{if .Bold}}font-weight:bold;{{end}}padding:4px;{{if .Small}}font-size:11px;{{end}}'>{{.Text}}</td>{{end}}</tr>
{{end}}</table>
{{end}}{{if .OtherCount}}<p style='margin:18px 0;color:#888;'>{{.OtherCount}} leader(s) in other stages (not shown)</p>{{end}}
<div style='margin:20px 0;padding:12px;background:#f5f5f5;border-radius:4px;font-size:12px;'><strong>Legend:</strong><br>&#9989; = Complete &nbsp;&nbsp; &#10060; = Not started &nbsp;&nbsp; <span style='background:#fff3cd;padding:2px 6px;'>In progress</span> = Started but not done<br>&#9889; = Auto-handled by system &nbsp;&nbsp; &#9997; = Needs manual team action</div>
<p style='color:#999;font-size:11px;'>Generated by Kodely Onboarding Automation</p>
</body></html>`))
