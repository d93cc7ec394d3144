package pdf

import (
	"bytes"
	"fmt"
	"html/template"
)

// documentTemplate 是紧凑的单页版式；所有字段都经过 html/template 上下文转义。
const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
  @page { size: A4; margin: 0.6in; }
  body {
    font-family: Arial, sans-serif;
    line-height: 1.2;
    margin: 0;
    padding: 0;
    color: #333;
    font-size: 9.5pt;
  }
  h1, h2, h3 { color: #0056b3; margin: 0 0 2px 0; padding: 0; }
  h1 { text-align: center; font-size: 18pt; margin-bottom: 6px; }
  h2 {
    font-size: 13pt;
    border-bottom: 1.5px solid #0056b3;
    padding-bottom: 2px;
    margin-top: 12px;
    margin-bottom: 8px;
  }
  .header-contact { text-align: center; margin-bottom: 12px; font-size: 8.5pt; }
  .header-contact p { margin: 0 8px 0 0; display: inline-block; }
  .header-contact p:last-child { margin-right: 0; }
  .section { margin-bottom: 12px; }
  .section-item {
    margin-bottom: 8px;
    position: relative;
    padding-right: 110px;
    box-sizing: border-box;
  }
  .section-item:last-child { margin-bottom: 0; }
  .title { font-weight: bold; margin: 0 0 2px 0; line-height: 1.1; display: block; }
  .subtitle {
    font-style: italic;
    color: #555;
    margin: 0 0 2px 0;
    display: block;
    font-size: 9pt;
  }
  .dates {
    position: absolute;
    top: 0;
    right: 0;
    width: 100px;
    margin: 0;
    text-align: right;
    color: #666;
    font-size: 8.5pt;
    line-height: 1.1;
  }
  ul { list-style: disc; margin: 2px 0 0 12px; padding: 0; }
  ul li { margin-bottom: 1px; line-height: 1.15; font-size: 9.2pt; }
  .skills-category { font-weight: bold; margin: 6px 0 2px 0; font-size: 9.5pt; }
  .skills-list { margin: 0; font-size: 9.2pt; }
  .technologies { margin: 0 0 2px 0; }
  a { color: #0056b3; text-decoration: none; }
</style>
</head>
<body>
<h1>{{.Name}}</h1>
{{- if .Contacts}}
<div class="header-contact">
  {{- range .Contacts}}
  <p>{{if .Label}}{{.Label}}: {{end}}{{if .Href}}<a href="{{.Href}}">{{.Value}}</a>{{else}}{{.Value}}{{end}}</p>
  {{- end}}
</div>
{{- end}}

{{- if .Summary}}
<div class="section">
  <h2>Summary</h2>
  <p>{{range $i, $line := .Summary}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
</div>
{{- end}}

{{- if .Experiences}}
<div class="section">
  <h2>Work Experience</h2>
  {{- range .Experiences}}
  <div class="section-item">
    <p class="dates">{{.Dates}}</p>
    <p class="title">{{.Title}}</p>
    <p class="subtitle">{{.Subtitle}}</p>
    {{- if .Bullets}}
    <ul>{{range .Bullets}}<li>{{.}}</li>{{end}}</ul>
    {{- end}}
  </div>
  {{- end}}
</div>
{{- end}}

{{- if .Education}}
<div class="section">
  <h2>Education</h2>
  {{- range .Education}}
  <div class="section-item">
    <p class="dates">{{.Dates}}</p>
    <p class="title">{{.Title}}</p>
    <p class="subtitle">{{.Subtitle}}</p>
  </div>
  {{- end}}
</div>
{{- end}}

{{- if .SkillGroups}}
<div class="section">
  <h2>Skills</h2>
  {{- range .SkillGroups}}
  <p class="skills-category">{{.Category}}:</p>
  <p class="skills-list">{{.Skills}}</p>
  {{- end}}
</div>
{{- end}}

{{- if .Projects}}
<div class="section">
  <h2>Projects</h2>
  {{- range .Projects}}
  <div class="section-item">
    <p class="title">{{.Title}}{{if .URL}} <small>(<a href="{{.URL}}">{{.URL}}</a>)</small>{{end}}</p>
    {{- if .Technologies}}
    <p class="technologies"><strong>Technologies:</strong> {{.Technologies}}</p>
    {{- end}}
    {{- if .Bullets}}
    <ul>{{range .Bullets}}<li>{{.}}</li>{{end}}</ul>
    {{- end}}
  </div>
  {{- end}}
</div>
{{- end}}
</body>
</html>
`

var documentTmpl = template.Must(template.New("resume").Parse(documentTemplate))

// RenderHTML 执行模板，输出可直接交给浏览器打印的 HTML。
func RenderHTML(doc Document) (string, error) {
	var buf bytes.Buffer
	if err := documentTmpl.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("execute resume template: %w", err)
	}
	return buf.String(), nil
}
