package templates

import (
	"time"

	"github.com/Dhoini/notification-relay/internal/domain"
)

type contactData struct {
	common
	Name            string
	Email           string
	Phone           string
	Service         string
	Message         string
	AppointmentDate string
	AppointmentTime string
}

func (f *Formatter) contactData(sub domain.ContactSubmission, now time.Time, header, title string) contactData {
	return contactData{
		common:          f.common(now, header, title),
		Name:            sub.Name,
		Email:           sub.Email,
		Phone:           sub.Phone,
		Service:         sub.Service,
		Message:         sub.Message,
		AppointmentDate: sub.AppointmentDate,
		AppointmentTime: sub.AppointmentTime,
	}
}

// ContactConfirmation письмо клиенту после отправки формы
func (f *Formatter) ContactConfirmation(sub domain.ContactSubmission, now time.Time) domain.EmailMessage {
	data := f.contactData(sub, now, colorPrimary, "Thank You for Contacting Us")
	html, text := render("contact_confirmation", data)
	return domain.EmailMessage{
		Subject: "Thank You for Contacting " + f.brand,
		HTML:    html,
		Text:    text,
	}
}

// ContactAdminNotification уведомление администратора о новой заявке
func (f *Formatter) ContactAdminNotification(sub domain.ContactSubmission, now time.Time) domain.EmailMessage {
	data := f.contactData(sub, now, colorPrimary, "New Contact Form Submission")
	html, text := render("contact_admin", data)
	return domain.EmailMessage{
		Subject: "New Contact Form Submission - " + sub.Service,
		HTML:    html,
		Text:    text,
	}
}

const contactConfirmationHTML = `
{{- define "contact_confirmation.html" -}}
{{template "head" .}}
<p>Dear {{.Name}},</p>
<p>Thank you for reaching out to {{.Brand}}. We have received your enquiry and a member of our team will get back to you shortly.</p>
<h3 style="color:#005eb8;">Your submission</h3>
<table style="border-collapse:collapse;">
{{template "row" (list "Service" .Service)}}
{{- if .AppointmentDate}}
{{template "row" (list "Preferred date" .AppointmentDate)}}
{{- end}}
{{- if .AppointmentTime}}
{{template "row" (list "Preferred time" .AppointmentTime)}}
{{- end}}
{{- if .Phone}}
{{template "row" (list "Phone" .Phone)}}
{{- end}}
</table>
{{- if .Message}}
<h3 style="color:#005eb8;">Your message</h3>
<p style="white-space:pre-wrap;background:#f4f4f4;padding:12px;border-radius:4px;">{{.Message}}</p>
{{- end}}
<p>If you have any urgent questions in the meantime, email us at <a href="mailto:{{.SupportEmail}}">{{.SupportEmail}}</a>.</p>
<p>Best regards,<br>The {{.Brand}} Team</p>
{{template "foot" .}}
{{- end -}}
`

const contactAdminHTML = `
{{- define "contact_admin.html" -}}
{{template "head" .}}
<p>A new contact form submission was received on {{.Timestamp}}.</p>
<table style="border-collapse:collapse;">
{{template "row" (list "Name" .Name)}}
<tr><td style="padding:6px 12px 6px 0;font-weight:bold;">Email</td><td style="padding:6px 0;"><a href="mailto:{{.Email}}">{{.Email}}</a></td></tr>
{{- if .Phone}}
{{template "row" (list "Phone" .Phone)}}
{{- end}}
{{template "row" (list "Service" .Service)}}
{{- if .AppointmentDate}}
{{template "row" (list "Appointment date" .AppointmentDate)}}
{{- end}}
{{- if .AppointmentTime}}
{{template "row" (list "Appointment time" .AppointmentTime)}}
{{- end}}
</table>
{{- if .Message}}
<h3 style="color:#005eb8;">Message</h3>
<p style="white-space:pre-wrap;background:#f4f4f4;padding:12px;border-radius:4px;">{{.Message}}</p>
{{- end}}
<p><a href="mailto:{{.Email}}" style="display:inline-block;background:#005eb8;color:#ffffff;padding:10px 18px;border-radius:4px;text-decoration:none;">Reply to {{.Name}}</a></p>
{{template "foot" .}}
{{- end -}}
`

const contactConfirmationText = `
{{- define "contact_confirmation.txt" -}}
Dear {{.Name}},

Thank you for reaching out to {{.Brand}}. We have received your enquiry and a member of our team will get back to you shortly.

Your submission
Service: {{.Service}}
{{- if .AppointmentDate}}
Preferred date: {{.AppointmentDate}}
{{- end}}
{{- if .AppointmentTime}}
Preferred time: {{.AppointmentTime}}
{{- end}}
{{- if .Phone}}
Phone: {{.Phone}}
{{- end}}
{{- if .Message}}

Your message:
{{.Message}}
{{- end}}

If you have any urgent questions in the meantime, email us at {{.SupportEmail}}.

Best regards,
The {{.Brand}} Team
{{- end -}}
`

const contactAdminText = `
{{- define "contact_admin.txt" -}}
New contact form submission ({{.Timestamp}})

Name: {{.Name}}
Email: {{.Email}}
{{- if .Phone}}
Phone: {{.Phone}}
{{- end}}
Service: {{.Service}}
{{- if .AppointmentDate}}
Appointment date: {{.AppointmentDate}}
{{- end}}
{{- if .AppointmentTime}}
Appointment time: {{.AppointmentTime}}
{{- end}}
{{- if .Message}}

Message:
{{.Message}}
{{- end}}
{{- end -}}
`
