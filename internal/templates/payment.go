package templates

import (
	"strings"
	"time"

	"github.com/Dhoini/notification-relay/internal/domain"
)

type paymentData struct {
	common
	PaymentIntentID string
	Amount          string
	CustomerEmail   string
	CustomerName    string
	ErrorMessage    string
	Metadata        []domain.MetadataEntry
}

func (f *Formatter) paymentData(out domain.PaymentOutcome, now time.Time, header, title string) paymentData {
	return paymentData{
		common:          f.common(now, header, title),
		PaymentIntentID: out.PaymentIntentID,
		Amount:          FormatAmount(out.Amount, out.Currency),
		CustomerEmail:   orDefault(out.CustomerEmail, notProvided),
		CustomerName:    orDefault(out.CustomerName, notProvided),
		Metadata:        metadataRows(out.Metadata),
	}
}

// PaymentSuccessClient подтверждение оплаты для клиента. Метаданные платежа в письмо клиенту не попадают.
func (f *Formatter) PaymentSuccessClient(out domain.PaymentOutcome, now time.Time) domain.EmailMessage {
	data := f.paymentData(out, now, colorSuccess, "Payment Confirmed")
	data.CustomerName = orDefault(out.CustomerName, "Customer")

	html, text := render("payment_success_client", data)
	return domain.EmailMessage{
		Subject: "Payment Confirmation - " + f.brand,
		HTML:    html,
		Text:    text,
	}
}

// PaymentSuccessAdmin уведомление администратора об успешной оплате
func (f *Formatter) PaymentSuccessAdmin(out domain.PaymentOutcome, now time.Time) domain.EmailMessage {
	data := f.paymentData(out, now, colorSuccess, "Payment Received")

	html, text := render("payment_success_admin", data)
	return domain.EmailMessage{
		Subject: "💰 Payment Received - " + data.Amount,
		HTML:    html,
		Text:    text,
	}
}

// PaymentFailureAdmin уведомление администратора о неудачной оплате.
// Сумма и валюта могут отсутствовать, тогда выводится N/A.
func (f *Formatter) PaymentFailureAdmin(out domain.PaymentOutcome, now time.Time) domain.EmailMessage {
	data := f.paymentData(out, now, colorDanger, "Payment Failed")
	data.ErrorMessage = orDefault(out.ErrorMessage, defaultErrorMessage)

	currency := orDefault(strings.ToUpper(out.Currency), notAvailable)
	amount := notAvailable
	if out.Amount != 0 {
		amount = formatMinorUnits(out.Amount)
	}
	data.Amount = currency + " " + amount

	html, text := render("payment_failure_admin", data)
	return domain.EmailMessage{
		Subject: "⚠️ Payment Failed - Action Required",
		HTML:    html,
		Text:    text,
	}
}

const paymentSuccessClientHTML = `
{{- define "payment_success_client.html" -}}
{{template "head" .}}
<p>Dear {{.CustomerName}},</p>
<p>Thank you for your payment. We have successfully received it and your order is now being processed.</p>
<div style="background:#e8f5ec;border-left:4px solid #007f3b;padding:12px;margin:16px 0;">
<p style="margin:0;font-size:20px;font-weight:bold;">{{.Amount}}</p>
</div>
<table style="border-collapse:collapse;">
{{template "row" (list "Payment reference" .PaymentIntentID)}}
{{template "row" (list "Date" .Timestamp)}}
</table>
<p>Please keep this email for your records. If you have any questions about your payment, contact us at <a href="mailto:{{.SupportEmail}}">{{.SupportEmail}}</a>.</p>
<p>Best regards,<br>The {{.Brand}} Team</p>
{{template "foot" .}}
{{- end -}}
`

const paymentSuccessAdminHTML = `
{{- define "payment_success_admin.html" -}}
{{template "head" .}}
<p>A payment was completed on {{.Timestamp}}.</p>
<table style="border-collapse:collapse;">
{{template "row" (list "Amount" .Amount)}}
{{template "row" (list "Payment intent" .PaymentIntentID)}}
{{template "row" (list "Customer name" .CustomerName)}}
{{template "row" (list "Customer email" .CustomerEmail)}}
</table>
{{- if .Metadata}}
<h3 style="color:#007f3b;">Metadata</h3>
<table style="border-collapse:collapse;">
{{- range .Metadata}}
{{template "row" (list .Key .Value)}}
{{- end}}
</table>
{{- end}}
<p><a href="https://dashboard.stripe.com/payments/{{.PaymentIntentID}}">View in Stripe Dashboard</a></p>
{{template "foot" .}}
{{- end -}}
`

const paymentFailureAdminHTML = `
{{- define "payment_failure_admin.html" -}}
{{template "head" .}}
<p>A payment attempt failed on {{.Timestamp}} and may need follow-up.</p>
<div style="background:#fdecea;border-left:4px solid #d5281b;padding:12px;margin:16px 0;">
<p style="margin:0;"><strong>Error:</strong> {{.ErrorMessage}}</p>
</div>
<table style="border-collapse:collapse;">
{{template "row" (list "Amount" .Amount)}}
{{template "row" (list "Payment intent" .PaymentIntentID)}}
{{template "row" (list "Customer name" .CustomerName)}}
{{template "row" (list "Customer email" .CustomerEmail)}}
</table>
{{- if .Metadata}}
<h3 style="color:#d5281b;">Metadata</h3>
<table style="border-collapse:collapse;">
{{- range .Metadata}}
{{template "row" (list .Key .Value)}}
{{- end}}
</table>
{{- end}}
<p><a href="https://dashboard.stripe.com/payments/{{.PaymentIntentID}}">View in Stripe Dashboard</a></p>
{{template "foot" .}}
{{- end -}}
`

const paymentSuccessClientText = `
{{- define "payment_success_client.txt" -}}
Dear {{.CustomerName}},

Thank you for your payment. We have successfully received it and your order is now being processed.

Amount: {{.Amount}}
Payment reference: {{.PaymentIntentID}}
Date: {{.Timestamp}}

Please keep this email for your records. If you have any questions about your payment, contact us at {{.SupportEmail}}.

Best regards,
The {{.Brand}} Team
{{- end -}}
`

const paymentSuccessAdminText = `
{{- define "payment_success_admin.txt" -}}
Payment received ({{.Timestamp}})

Amount: {{.Amount}}
Payment intent: {{.PaymentIntentID}}
Customer name: {{.CustomerName}}
Customer email: {{.CustomerEmail}}
{{- if .Metadata}}

Metadata:
{{- range .Metadata}}
{{.Key}}: {{.Value}}
{{- end}}
{{- end}}

https://dashboard.stripe.com/payments/{{.PaymentIntentID}}
{{- end -}}
`

const paymentFailureAdminText = `
{{- define "payment_failure_admin.txt" -}}
Payment failed ({{.Timestamp}})

Error: {{.ErrorMessage}}
Amount: {{.Amount}}
Payment intent: {{.PaymentIntentID}}
Customer name: {{.CustomerName}}
Customer email: {{.CustomerEmail}}
{{- if .Metadata}}

Metadata:
{{- range .Metadata}}
{{.Key}}: {{.Value}}
{{- end}}
{{- end}}

https://dashboard.stripe.com/payments/{{.PaymentIntentID}}
{{- end -}}
`
