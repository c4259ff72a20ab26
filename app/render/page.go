package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/rbhz/word-lookup/app/lookup"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{ .Word }}</title>
<link href="https://fonts.googleapis.com/css2?family=Roboto:wght@400;700&display=swap" rel="stylesheet">
<style>
  body { font-family:'Roboto',sans-serif; padding:10px; background:#f2f2f2; }
  h1 { text-align:center; color:#2196F3; }
  .card { background:white; padding:15px; border-radius:12px; box-shadow:0 2px 8px rgba(0,0,0,0.2); margin:10px 0; }
  .card h2 { color:#333; margin-bottom:8px; }
  .synonyms li { display:inline-block; background:#e0f7fa; margin:3px; padding:5px 10px; border-radius:8px; font-size:0.9em; }
</style>
</head>
<body>
<h1>{{ .Word }}</h1>
{{- range $e := .Entries }}
<div class="card" data-source="{{ $e.Source.ID }}"><h2>{{ $e.Source.Title }}</h2>
{{- if $e.Source.List }}<ul class="synonyms">{{ range $e.Display }}<li>{{ . }}</li>{{ end }}</ul>
{{- else }}{{ range $e.Display }}<p>{{ . }}</p>{{ end }}
{{- end }}</div>
{{- end }}
</body>
</html>
`

var page = template.Must(template.New("page").Parse(pageTemplate))

// Page writes lookup result as a HTML document.
// All values are escaped.
func Page(w io.Writer, result lookup.Result) error {
	buf := &bytes.Buffer{}
	if err := page.Execute(buf, result); err != nil {
		return fmt.Errorf("execute page template: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
