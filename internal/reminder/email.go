package reminder

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/sri657/interview-gap-matcher/internal/calendly"
	"github.com/sri657/interview-gap-matcher/internal/types"
)

type noTrainerRow struct {
	Icon   template.HTML
	Name   string
	Date   string
	Status string
	BG     template.CSS
}

type sessionRow struct {
	Leader  string
	Trainer string
	Date    string
}

type assignedRow struct {
	Name    string
	Trainer string
	Stage   string
}

type reportData struct {
	Today     string
	NoTrainer []noTrainerRow
	Expedited []sessionRow
	Upcoming  []sessionRow
	Assigned  []assignedRow
}

func sessionDateDisplay(t time.Time) string {
	if t.IsZero() {
		return "TBD"
	}
	return t.Format("Jan 2 3:04 PM")
}

func noTrainerRows(b Buckets) []noTrainerRow {
	type bucketStyle struct {
		leaders []types.Leader
		status  string
		bg      template.CSS
		icon    template.HTML
	}
	styles := []bucketStyle{
		{b.Overdue, "Overdue", "#ffcccc", "&#128308; "},
		{b.ThisWeek, "This week", "#fff3cd", "&#128993; "},
		{b.NextWeek, "Next week", "#ffffff", ""},
		{b.Later, "Coming up", "#ffffff", ""},
	}

	var rows []noTrainerRow
	for _, s := range styles {
		for _, l := range s.leaders {
			d := "No date"
			if l.StartDate != nil {
				d = l.StartDate.Format("Jan 2")
			}
			rows = append(rows, noTrainerRow{
				Icon: s.icon, Name: l.Name, Date: d, Status: s.status, BG: s.bg,
			})
		}
	}
	return rows
}

func sessionRows(sessions []calendly.Session) []sessionRow {
	rows := make([]sessionRow, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, sessionRow{
			Leader:  s.Invitee,
			Trainer: s.Trainer,
			Date:    sessionDateDisplay(s.Start),
		})
	}
	return rows
}

func assignedRows(leaders []types.Leader) []assignedRow {
	rows := make([]assignedRow, 0, len(leaders))
	for _, l := range leaders {
		rows = append(rows, assignedRow{
			Name:    l.Name,
			Trainer: l.TrainerAssigned,
			Stage:   l.ReadinessStatus,
		})
	}
	return rows
}

// BuildEmailHTML renders the daily training report email.
func BuildEmailHTML(b Buckets, expedited, upcoming []calendly.Session, assigned []types.Leader, today time.Time) (string, error) {
	data := reportData{
		Today:     today.Format("Jan 02, 2006"),
		NoTrainer: noTrainerRows(b),
		Expedited: sessionRows(expedited),
		Upcoming:  sessionRows(upcoming),
		Assigned:  assignedRows(assigned),
	}

	var sb strings.Builder
	if err := reportTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render training report: %w", err)
	}
	return sb.String(), nil
}

// SendEmail fetches the Calendly schedule plus recently assigned
// trainers and mails the full report. Calendly failures degrade to empty
// sections rather than dropping the email.
func (s *Service) SendEmail(ctx context.Context, b Buckets) error {
	var expedited, upcoming []calendly.Session
	if s.Sessions != nil {
		user, err := s.Sessions.CurrentUser(ctx)
		if err != nil {
			s.logger().Error("failed to fetch calendly data for email", "error", err)
		} else {
			orgURI := user.CurrentOrganization
			if expedited, err = s.Sessions.ExpeditedSessions(ctx, orgURI, s.ExpeditedTerms); err != nil {
				s.logger().Error("failed to fetch expedited sessions", "error", err)
			}
			if upcoming, err = s.Sessions.UpcomingTrainingSessions(ctx, orgURI); err != nil {
				s.logger().Error("failed to fetch upcoming sessions", "error", err)
			}
		}
	}

	assigned, err := s.Leaders.LeadersWithTrainer(ctx)
	if err != nil {
		s.logger().Error("failed to query recently assigned trainers", "error", err)
	}

	today := s.now()
	subject := fmt.Sprintf("Kodely Training Report — %s", today.Format("Jan 02, 2006"))
	html, err := BuildEmailHTML(b, expedited, upcoming, assigned, today)
	if err != nil {
		return err
	}

	if s.DryRun {
		fmt.Printf("--- DRY RUN: TRAINING EMAIL ---\nSubject: %s\n%s\n\n", subject, html)
		return nil
	}
	if err := s.Mailer.SendReport(ctx, s.EmailTo, s.EmailCC, subject, html); err != nil {
		return fmt.Errorf("failed to send training report email: %w", err)
	}
	return nil
}

var reportTmpl = template.Must(template.New("training-report").Parse(`<!DOCTYPE html><html><head><meta charset='utf-8'></head><body style='font-family:Arial,sans-serif;max-width:700px;margin:auto;'>
<h2 style='background:#1a1a2e;color:#fff;padding:14px 18px;margin:0;border-radius:6px 6px 0 0;'>KODELY DAILY TRAINING REPORT &mdash; {{.Today}}</h2>
{{if .NoTrainer}}<h3 style='margin:18px 0 8px;'>&#9888;&#65039; NO TRAINER ASSIGNED ({{len .NoTrainer}} leader{{if ne (len .NoTrainer) 1}}s{{end}})</h3>
<table style='border-collapse:collapse;width:100%;' border='1' cellpadding='6' cellspacing='0'>
<tr style='background:#eee;'><th>Leader</th><th>Start Date</th><th>Status</th></tr>
{{range .NoTrainer}}<tr style='background:{{.BG}};'><td>{{.Icon}}{{.Name}}</td><td>{{.Date}}</td><td>{{.Status}}</td></tr>
{{end}}</table>
{{else}}<p style='color:green;font-weight:bold;'>&#9989; All leaders have a trainer assigned.</p>
{{end}}<h3 style='margin:18px 0 8px;'>&#128203; EXPEDITED / FEEDBACK TRAINING</h3>
{{if .Expedited}}<table style='border-collapse:collapse;width:100%;' border='1' cellpadding='6' cellspacing='0'>
<tr style='background:#eee;'><th>Leader</th><th>Trainer</th><th>Date</th></tr>
{{range .Expedited}}<tr><td>{{.Leader}}</td><td>{{.Trainer}}</td><td>{{.Date}}</td></tr>
{{end}}</table>
{{else}}<p style='color:#888;'>No expedited/feedback training sessions found.</p>
{{end}}<h3 style='margin:18px 0 8px;'>&#128197; UPCOMING TRAINING (next 7 days)</h3>
{{if .Upcoming}}<table style='border-collapse:collapse;width:100%;' border='1' cellpadding='6' cellspacing='0'>
<tr style='background:#eee;'><th>Leader</th><th>Trainer</th><th>Date</th></tr>
{{range .Upcoming}}<tr><td>{{.Leader}}</td><td>{{.Trainer}}</td><td>{{.Date}}</td></tr>
{{end}}</table>
{{else}}<p style='color:#888;'>No upcoming training sessions in the next 7 days.</p>
{{end}}<h3 style='margin:18px 0 8px;'>&#9989; RECENTLY ASSIGNED TRAINERS</h3>
{{if .Assigned}}<table style='border-collapse:collapse;width:100%;' border='1' cellpadding='6' cellspacing='0'>
<tr style='background:#eee;'><th>Leader</th><th>Trainer</th><th>Pipeline Stage</th></tr>
{{range .Assigned}}<tr><td>{{.Name}}</td><td>{{.Trainer}}</td><td>{{.Stage}}</td></tr>
{{end}}</table>
{{else}}<p style='color:#888;'>No recently assigned trainers found.</p>
{{end}}<br><p style='color:#999;font-size:12px;'>Generated by Kodely Training Report</p>
</body></html>`))
