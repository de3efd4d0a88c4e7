package site

// previewTemplate is the Go html/template for the outline preview page.
const previewTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}} — Documentation Outline</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 0; color: #1f2328; }
    .page { max-width: 880px; margin: 0 auto; padding: 2rem 1.5rem; }
    h1 { border-bottom: 1px solid #d1d9e0; padding-bottom: .5rem; }
    .section { margin: 1rem 0; padding: 1rem; border: 1px solid #d1d9e0; border-radius: 8px; }
    .section.custom { border-color: #8250df; background: #fbf8ff; }
    .section h2 { margin: 0 0 .25rem; font-size: 1.1rem; }
    .section .desc { color: #59636e; margin: 0 0 .5rem; }
    .badge { font-size: .7rem; background: #8250df; color: #fff; border-radius: 10px; padding: 2px 8px; vertical-align: middle; }
    .children { margin-left: 1.5rem; }
    .content { border-top: 1px dashed #d1d9e0; margin-top: .5rem; padding-top: .5rem; }
    pre { background: #f6f8fa; padding: .75rem; border-radius: 6px; overflow-x: auto; }
  </style>
</head>
<body>
  <div class="page">
    <h1>{{.Title}}</h1>
    {{template "sections" .Sections}}
  </div>
</body>
</html>

{{define "sections"}}
{{range .}}
<div class="section{{if .IsCustom}} custom{{end}}">
  <h2>{{if .Icon}}{{.Icon}} {{end}}{{.Name}}{{if .IsCustom}} <span class="badge">custom</span>{{end}}</h2>
  {{if .Description}}<p class="desc">{{.Description}}</p>{{end}}
  {{if .ContentHTML}}<div class="content">{{.ContentHTML}}</div>{{end}}
  {{if .Children}}<div class="children">{{template "sections" .Children}}</div>{{end}}
</div>
{{end}}
{{end}}`
