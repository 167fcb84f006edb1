package handler

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-rbac/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

const resetPasswordPath = "/v1/users/password/reset"

type pages struct {
	tmpl *template.Template
}

func loadPages() *pages {
	return &pages{tmpl: template.Must(template.ParseFS(templateFS, "templates/*.html"))}
}

func (p *pages) render(c echo.Context, log *slog.Logger, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error("render page", slog.String("template", name), slog.Any("err", err))
		return c.String(http.StatusInternalServerError, "internal error")
	}
	return c.HTMLBlob(status, buf.Bytes())
}

func (p *pages) verifyResult(c echo.Context, log *slog.Logger, err error) error {
	if err == nil {
		return p.render(c, log, http.StatusOK, "verify_result.html", map[string]any{"OK": true, "Message": "Your email address is confirmed"})
	}
	status, msg := http.StatusInternalServerError, "Something went wrong"
	switch service.KindOf(err) {
	case service.KindValidation:
		status, msg = http.StatusBadRequest, "The link is invalid or has expired"
	case service.KindNotFound:
		status, msg = http.StatusNotFound, "The account for this link no longer exists"
	default:
		log.Error("verify email", slog.Any("err", err))
	}
	return p.render(c, log, status, "verify_result.html", map[string]any{"OK": false, "Message": msg})
}

func (p *pages) resetForm(c echo.Context, log *slog.Logger, token string) error {
	return p.render(c, log, http.StatusOK, "reset_password.html", map[string]any{"Token": token, "Action": resetPasswordPath})
}
