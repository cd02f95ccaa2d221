package render

import (
	"bytes"
	"html/template"
)

const documentTemplate = `{{define "value"}}{{if .Missing}}<span class="missing" style="color:red;font-weight:bold">[MISSING]</span>{{else if .Items}}<ul>{{range .Items}}<li>{{template "field" .}}</li>{{end}}</ul>{{else}}{{.Value}}{{end}}{{end}}
{{- define "field"}}{{if .Label}}<b>{{.Label}}:</b> {{end}}{{template "value" .}}{{end -}}
<h2>{{.Title}}</h2>
<p>{{template "field" .VisitDate}}</p>
{{range .Sections}}<details data-section="{{.Key}}">
  <summary><b>{{.Title}}</b></summary>
  <div>
{{range .Fields}}    <div class="field">{{template "field" .}}</div>
{{end}}  </div>
</details>
{{end}}{{if .Findings}}<details open data-section="findings">
  <summary><b>REVIEW FINDINGS</b></summary>
  <ul>
{{range .Findings}}    <li>{{.}}</li>
{{end}}  </ul>
</details>
{{end}}`

var htmlTemplate = template.Must(template.New("document").Parse(documentTemplate))

// HTML serializes doc as an HTML fragment with one collapsible <details> block per section.
// Missing fields carry a red [MISSING] marker. All record text is escaped.
func HTML(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
