package mailing

import (
	"fmt"
	"html/template"
	"strings"
)

// Links are the onboarding resource URLs woven into the welcome emails.
// Empty links drop their section from the body.
type Links struct {
	Calendly          string
	ReturningCalendly string
	Checklist         string
	Quiz              string
	AppStore          string
	PlayStore         string
}

type welcomeData struct {
	FirstName    string
	Region       string
	StartDisplay string
	Links        Links
}

// FirstName returns the leading word of a full name, or the name itself
// when it has no spaces.
func FirstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return fullName
	}
	return fields[0]
}

// WelcomeSubject is the subject line for new-leader welcome emails.
func WelcomeSubject(leaderName string) string {
	return fmt.Sprintf("Welcome to Kodely, %s! - Onboarding Instructions", FirstName(leaderName))
}

// ReturningSubject is the subject line for returning-leader emails.
func ReturningSubject(leaderName string) string {
	return fmt.Sprintf("Welcome Back, %s! – Confirm Your Upcoming Kodely Session", FirstName(leaderName))
}

// BuildWelcomeHTML renders the welcome email for a new leader.
func BuildWelcomeHTML(leaderName, startDate, region string, links Links) (string, error) {
	return render(welcomeTmpl, welcomeData{
		FirstName:    FirstName(leaderName),
		Region:       region,
		StartDisplay: startDisplay(startDate),
		Links:        links,
	})
}

// BuildReturningWelcomeHTML renders the welcome-back email for a
// returning leader.
func BuildReturningWelcomeHTML(leaderName, startDate, region string, links Links) (string, error) {
	return render(returningTmpl, welcomeData{
		FirstName:    FirstName(leaderName),
		Region:       region,
		StartDisplay: startDisplay(startDate),
		Links:        links,
	})
}

// BuildRebookHTML renders the training rebook email with the Calendly
// booking button.
func BuildRebookHTML(leaderName, bookingURL string) (string, error) {
	return render(rebookTmpl, struct {
		Name       string
		BookingURL string
	}{Name: leaderName, BookingURL: bookingURL})
}

func startDisplay(startDate string) string {
	if startDate == "" {
		return "TBD"
	}
	return startDate
}

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}
	return b.String(), nil
}

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family:Arial,Helvetica,sans-serif;max-width:600px;margin:0 auto;color:#1a1a2e;">

<div style="background:#1a1a2e;padding:24px 28px;border-radius:8px 8px 0 0;">
  <h1 style="color:#ffffff;margin:0;font-size:22px;">Welcome to Kodely!</h1>
</div>

<div style="padding:24px 28px;border:1px solid #e5e7eb;border-top:none;border-radius:0 0 8px 8px;">

  <p>Hi {{.FirstName}},</p>

  <p>Congratulations on being matched as a Kodely Leader! We're excited to have you
  on the team. Below you'll find everything you need to get started.</p>

  <table style="width:100%;border-collapse:collapse;margin:16px 0;">
    <tr>
      <td style="padding:8px 12px;background:#f3f4f6;font-weight:600;width:120px;">Region</td>
      <td style="padding:8px 12px;background:#f3f4f6;">{{.Region}}</td>
    </tr>
    <tr>
      <td style="padding:8px 12px;font-weight:600;">Start Date</td>
      <td style="padding:8px 12px;">{{.StartDisplay}}</td>
    </tr>
  </table>

  <hr style="border:none;border-top:1px solid #e5e7eb;margin:20px 0;">
{{if .Links.Calendly}}
  <h3 style="color:#1a1a2e;margin:24px 0 8px;">1. Schedule Your Training</h3>
  <p style="margin:4px 0 12px;">
    <a href="{{.Links.Calendly}}" style="color:#2563eb;text-decoration:none;font-weight:600;">
      Click here to schedule your Training Call &amp; Dress Rehearsal
    </a>
  </p>
{{end}}{{if .Links.Checklist}}
  <h3 style="color:#1a1a2e;margin:24px 0 8px;">2. New Hire Onboarding Checklist</h3>
  <p style="margin:4px 0 12px;">
    <a href="{{.Links.Checklist}}" style="color:#2563eb;text-decoration:none;font-weight:600;">
      View Your Onboarding Checklist
    </a><br>
    This is where you'll find information on Gusto, the Kodely App, and compliance requirements.
  </p>
{{end}}
  <h3 style="color:#1a1a2e;margin:24px 0 8px;">3. Kodely University</h3>
  <p style="margin:4px 0 4px;">
    Log into <a href="https://learn.kodely.io" style="color:#2563eb;text-decoration:none;font-weight:600;">learn.kodely.io</a>.
    Use the email address we have on file for you.
  </p>
  <p style="margin:4px 0 4px;">
    Prepare only the first lesson you are assigned to teach.
  </p>
  <p style="margin:4px 0 12px;">
    Review and complete Kodely University which can be found at
    <a href="https://learn.kodely.io" style="color:#2563eb;text-decoration:none;font-weight:600;">learn.kodely.io</a>.
  </p>
{{if or .Links.AppStore .Links.PlayStore}}
  <h3 style="color:#1a1a2e;margin:24px 0 8px;">4. Download the Kodely Leader App</h3>
  <p style="margin:4px 0 12px;">
    {{if .Links.AppStore}}<a href="{{.Links.AppStore}}" style="color:#2563eb;text-decoration:none;font-weight:600;">Download for iPhone (App Store)</a>{{end}}{{if and .Links.AppStore .Links.PlayStore}}<br>{{end}}{{if .Links.PlayStore}}<a href="{{.Links.PlayStore}}" style="color:#2563eb;text-decoration:none;font-weight:600;">Download for Android (Google Play)</a>{{end}}
  </p>
{{end}}{{if .Links.Quiz}}
  <h3 style="color:#1a1a2e;margin:24px 0 8px;">5. Onboarding Quiz</h3>
  <p style="margin:4px 0 12px;">
    <a href="{{.Links.Quiz}}" style="color:#2563eb;text-decoration:none;font-weight:600;">
      Take the Onboarding Quiz
    </a> &mdash; Test your knowledge before your first session.
  </p>
{{end}}
  <div style="background:#fef3c7;border-left:4px solid #f59e0b;padding:12px 16px;margin:20px 0;border-radius:4px;">
    <strong>Important:</strong> Please complete all onboarding steps and schedule your
    training call before your start date ({{.StartDisplay}}).
  </div>

  <h3 style="color:#1a1a2e;margin:24px 0 8px;">Questions or Support</h3>
  <p>For all questions, please contact
    <a href="mailto:talent@kodely.io" style="color:#2563eb;text-decoration:none;font-weight:600;">talent@kodely.io</a>.
  </p>

  <p style="margin-top:24px;">Best,<br>
  <strong>The Kodely Team</strong></p>

</div>

<p style="color:#999;font-size:11px;text-align:center;margin-top:16px;">
  This is an automated onboarding email from Kodely.
</p>

</body>
</html>`))

var returningTmpl = template.Must(template.New("returning").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family:Arial,Helvetica,sans-serif;max-width:600px;margin:0 auto;color:#1a1a2e;">

<div style="background:#1a1a2e;padding:24px 28px;border-radius:8px 8px 0 0;">
  <h1 style="color:#ffffff;margin:0;font-size:22px;">Welcome Back to Kodely!</h1>
</div>

<div style="padding:24px 28px;border:1px solid #e5e7eb;border-top:none;border-radius:0 0 8px 8px;">

  <p>Hi {{.FirstName}},</p>

  <p>Welcome back! We're excited to have you leading another Kodely session.</p>

  <p>Please take a moment to confirm that everything is set up for your upcoming workshop:</p>

  <hr style="border:none;border-top:1px solid #e5e7eb;margin:20px 0;">

  <h3 style="color:#1a1a2e;margin:24px 0 8px;">1. Check Your Kodely Leader App</h3>
  <p style="margin:4px 0 12px;">
    Make sure your new session appears in the app. If you don't see it, reach out to
    <a href="mailto:support@kodely.io" style="color:#2563eb;text-decoration:none;font-weight:600;">support@kodely.io</a>.<br>
    {{if .Links.AppStore}}<a href="{{.Links.AppStore}}" style="color:#2563eb;text-decoration:none;font-weight:600;">iPhone (App Store)</a>{{end}}{{if and .Links.AppStore .Links.PlayStore}} &nbsp;|&nbsp; {{end}}{{if .Links.PlayStore}}<a href="{{.Links.PlayStore}}" style="color:#2563eb;text-decoration:none;font-weight:600;">Android (Google Play)</a>{{end}}
  </p>

  <h3 style="color:#1a1a2e;margin:24px 0 8px;">2. Review Your New Lessons</h3>
  <p style="margin:4px 0 12px;">
    Head to <a href="https://learn.kodely.io" style="color:#2563eb;text-decoration:none;font-weight:600;">learn.kodely.io</a>
    and review the updated lesson plan for your upcoming class.
    A new lesson plan will be added to your account &mdash; be sure to review it before Day 1!
  </p>

  <h3 style="color:#1a1a2e;margin:24px 0 8px;">3. Schedule Training</h3>
  <p style="margin:4px 0 12px;">
    <a href="{{.Links.ReturningCalendly}}" style="color:#2563eb;text-decoration:none;font-weight:600;">
      Click here to schedule your Returning Leaders Training Check-In
    </a>
  </p>

  <div style="background:#fef3c7;border-left:4px solid #f59e0b;padding:12px 16px;margin:20px 0;border-radius:4px;">
    <strong>Important:</strong> Training is required before you can begin at your school.
  </div>

  <p>That's it! Let us know if you have any questions or need support &mdash; we're here to help.</p>

  <h3 style="color:#1a1a2e;margin:24px 0 8px;">Questions or Support</h3>
  <p>For all questions, please contact
    <a href="mailto:talent@kodely.io" style="color:#2563eb;text-decoration:none;font-weight:600;">talent@kodely.io</a>.
  </p>

  <p style="margin-top:24px;">Best,<br>
  <strong>The Kodely Team</strong></p>

</div>

<p style="color:#999;font-size:11px;text-align:center;margin-top:16px;">
  This is an automated onboarding email from Kodely.
</p>

</body>
</html>`))

var rebookTmpl = template.Must(template.New("rebook").Parse(`<html><body style="font-family:Arial,sans-serif;max-width:600px;margin:auto;">
<p>Hi {{.Name}},</p>
<p>We'd like to schedule another training session with you. Please use the link below
to book a time that works:</p>
<p style="text-align:center;margin:24px 0;">
  <a href="{{.BookingURL}}"
     style="background:#4A90D9;color:#fff;padding:12px 28px;text-decoration:none;
            border-radius:6px;font-weight:bold;display:inline-block;">
    Book Training Session
  </a>
</p>
<p>If you have any questions, feel free to reply to this email.</p>
<p>Best,<br>Kodely Talent Team</p>
</body></html>`))

// RebookSubject is the subject line for training rebook emails.
const RebookSubject = "Let's Schedule Another Training Session"
