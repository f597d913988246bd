package templates

// Общие части HTML писем. Каждое письмо начинается с {{template "head" .}}
// и заканчивается {{template "foot" .}}, поэтому данные письма встраивают common.
// "row" принимает пару (list "Подпись" значение).
const htmlLayout = `
{{- define "head" -}}
<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
</head>
<body style="margin:0;padding:0;background:#f4f4f4;font-family:Arial,Helvetica,sans-serif;color:#333333;line-height:1.6;">
<div style="max-width:600px;margin:20px auto;background:#ffffff;border-radius:8px;overflow:hidden;">
<div style="background:{{.Header}};color:#ffffff;padding:24px;text-align:center;">
<h1 style="margin:0;font-size:22px;">{{.Title}}</h1>
</div>
<div style="padding:24px;">
{{- end -}}

{{- define "row" -}}
<tr><td style="padding:6px 12px 6px 0;font-weight:bold;vertical-align:top;">{{index . 0}}</td><td style="padding:6px 0;">{{index . 1}}</td></tr>
{{- end -}}

{{- define "foot" -}}
</div>
<div style="background:#f9f9f9;padding:16px;text-align:center;font-size:12px;color:#777777;">
<p style="margin:0;">&copy; {{.Year}} {{.Brand}}. All rights reserved.</p>
<p style="margin:4px 0 0;">Questions? Contact us at <a href="mailto:{{.SupportEmail}}">{{.SupportEmail}}</a></p>
</div>
</div>
</body>
</html>
{{- end -}}
`

const (
	colorPrimary = "#005eb8"
	colorSuccess = "#007f3b"
	colorDanger  = "#d5281b"
)
