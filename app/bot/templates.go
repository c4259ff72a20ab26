package bot

import (
	"html"
	"text/template"
)

// lookupTemplate renders lookup result with Telegram HTML markup.
// Entries are rendered one by one so a long message is cut between complete blocks.
const lookupTemplate = `{{ define "header" }}<b>{{ escape .Word }}</b>{{ end }}
{{- define "entry" }}

<u>{{ escape .Source.Title }}</u>
{{- if .Source.List }}
{{ range $i, $v := .Display }}{{ if $i }}, {{ end }}<code>{{ escape $v }}</code>{{ end }}
{{- else }}
{{- range .Display }}
{{ escape . }}
{{- end }}
{{- end }}
{{- end }}`

var lookupMessage = template.Must(template.New("lookup").
	Funcs(template.FuncMap{"escape": html.EscapeString}).
	Parse(lookupTemplate))
