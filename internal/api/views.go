package api

import (
	"embed"
	"html/template"
	"time"

	"gorm.io/datatypes"

	"resumedesk/internal/auth"
	"resumedesk/internal/database"
	"resumedesk/internal/session"
)

//go:embed templates/*.html
var templateFiles embed.FS

// pageData 是所有页面模板共享的外层数据。
type pageData struct {
	Title   string
	User    auth.Identity
	Flash   *session.Flash
	Content any
}

type dashboardContent struct {
	Resumes        []database.Resume
	ArchiveEnabled bool
}

func loadTemplates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"date":     formatFormDate,
		"longdate": func(t time.Time) string { return t.Format("January 2, 2006") },
	}).ParseFS(templateFiles, "templates/*.html"))
}

func formatFormDate(d *datatypes.Date) string {
	if d == nil {
		return ""
	}
	return time.Time(*d).Format("2006-01-02")
}
