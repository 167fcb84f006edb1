package queue

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type emailSpec struct {
	subject  string
	template string
	path     string
}

var emailSpecs = map[EmailKind]emailSpec{
	KindVerifyEmail:   {"Confirm your email", "verify_email.html", "/v1/auth/verify-email"},
	KindPasswordReset: {"Reset your password", "password_reset.html", "/v1/users/password/reset"},
}

// Renderer turns jobs into subject and HTML body.
type Renderer struct {
	BaseURL  string
	ValidFor map[EmailKind]time.Duration
}

func (r Renderer) Render(job EmailJob) (subject, body string, err error) {
	spec, ok := emailSpecs[job.Kind]
	if !ok {
		return "", "", fmt.Errorf("queue: unknown email kind %q", job.Kind)
	}
	link := strings.TrimRight(r.BaseURL, "/") + spec.path + "?token=" + url.QueryEscape(job.Token)

	var buf bytes.Buffer
	err = templates.ExecuteTemplate(&buf, spec.template, struct {
		Link     string
		ValidFor string
	}{link, humanDuration(r.ValidFor[job.Kind])})
	if err != nil {
		return "", "", fmt.Errorf("queue: render %s: %w", job.Kind, err)
	}
	return spec.subject, buf.String(), nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a limited time"
	case d%(24*time.Hour) == 0:
		return plural(int(d/(24*time.Hour)), "day")
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(int(d/time.Minute), "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
