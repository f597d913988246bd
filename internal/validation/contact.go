package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Dhoini/notification-relay/internal/domain"
)

const dateLayout = "2006-01-02"

var (
	appointmentDateRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`)
	appointmentTimeRe = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
)

// rule один тег validator/v10 и сообщение, которое получит клиент
type rule struct {
	tag     string
	message string
}

type field struct {
	name     string
	value    string
	optional bool
	rules    []rule
}

// ContactValidator проверяет форму обратной связи.
// Проверяются все поля, по каждому полю возвращается не больше одной ошибки.
type ContactValidator struct {
	validate *validator.Validate
	loc      *time.Location
	now      func() time.Time
}

// NewContactValidator создает валидатор. loc задает часовой пояс, в котором
// определяется "сегодня" для даты записи.
func NewContactValidator(loc *time.Location, now func() time.Time) *ContactValidator {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}

	v := &ContactValidator{
		validate: validator.New(),
		loc:      loc,
		now:      now,
	}

	mustRegister(v.validate, "ymd", v.isCalendarDate)
	mustRegister(v.validate, "notpast", v.isNotPast)
	mustRegister(v.validate, "hhmm", func(fl validator.FieldLevel) bool {
		return appointmentTimeRe.MatchString(fl.Field().String())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// Validate возвращает нормализованную заявку или domain.ValidationErrors
func (v *ContactValidator) Validate(form domain.ContactForm) (*domain.ContactSubmission, error) {
	fields := []field{
		{name: "name", value: form.Name, rules: []rule{
			{"required", "Name is required"},
			{"min=2,max=100", "Name must be between 2 and 100 characters"},
		}},
		{name: "email", value: form.Email, rules: []rule{
			{"required", "Email is required"},
			{"email", "Must be a valid email address"},
		}},
		{name: "phone", value: form.Phone, optional: true, rules: []rule{
			{"min=10,max=20", "Phone number must be between 10 and 20 characters"},
		}},
		{name: "service", value: form.Service, rules: []rule{
			{"required", "Service selection is required"},
		}},
		{name: "message", value: form.Message, optional: true, rules: []rule{
			{"max=2000", "Message must not exceed 2000 characters"},
		}},
		{name: "appointmentDate", value: form.AppointmentDate, rules: []rule{
			{"required", "Appointment date is required"},
			{"ymd", "Appointment date must be in YYYY-MM-DD format"},
			{"notpast", "Appointment date cannot be in the past"},
		}},
		{name: "appointmentTime", value: form.AppointmentTime, rules: []rule{
			{"required", "Appointment time is required"},
			{"hhmm", "Appointment time must be in HH:MM format (24-hour)"},
		}},
	}

	var errs domain.ValidationErrors
	clean := make(map[string]string, len(fields))

	for _, f := range fields {
		// Необязательное поле проверяется, только если оно вообще передано
		if f.optional && f.value == "" {
			continue
		}
		value := strings.TrimSpace(f.value)
		for _, r := range f.rules {
			if err := v.validate.Var(value, r.tag); err != nil {
				errs.Add(f.name, r.message)
				break
			}
		}
		clean[f.name] = value
	}

	if errs.HasErrors() {
		return nil, errs
	}

	return &domain.ContactSubmission{
		Name:            clean["name"],
		Email:           NormalizeEmail(clean["email"]),
		Phone:           clean["phone"],
		Service:         clean["service"],
		Message:         clean["message"],
		AppointmentDate: clean["appointmentDate"],
		AppointmentTime: clean["appointmentTime"],
	}, nil
}

// isCalendarDate: строгий YYYY-MM-DD и существующая дата (2025-02-30 не проходит)
func (v *ContactValidator) isCalendarDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !appointmentDateRe.MatchString(s) {
		return false
	}
	_, err := time.ParseInLocation(dateLayout, s, v.loc)
	return err == nil
}

// isNotPast сравнивает только даты, время суток не учитывается
func (v *ContactValidator) isNotPast(fl validator.FieldLevel) bool {
	date, err := time.ParseInLocation(dateLayout, fl.Field().String(), v.loc)
	if err != nil {
		return false
	}
	now := v.now().In(v.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, v.loc)
	return !date.Before(today)
}

// NormalizeEmail приводит адрес к каноническому виду: нижний регистр, для Gmail
// без точек и +тегов в локальной части.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return email
	}
	local, host := email[:at], email[at+1:]

	if host == "gmail.com" || host == "googlemail.com" {
		if plus := strings.Index(local, "+"); plus >= 0 {
			local = local[:plus]
		}
		local = strings.ReplaceAll(local, ".", "")
		host = "gmail.com"
	}
	return local + "@" + host
}
