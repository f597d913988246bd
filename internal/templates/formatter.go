// Package templates формирует письма (тема, HTML и текст) для клиента и администратора.
// Все функции чистые: результат зависит только от входных данных и переданного времени.
package templates

import (
	"bytes"
	htmltemplate "html/template"
	"strconv"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/Dhoini/notification-relay/internal/domain"
)

const (
	timestampLayout     = "02/01/2006, 15:04:05"
	notProvided         = "Not provided"
	notAvailable        = "N/A"
	defaultErrorMessage = "No error message provided"
)

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.New("html").Funcs(htmltemplate.FuncMap{
		"list": func(cells ...string) []string { return cells },
	}).Parse(
		htmlLayout + contactConfirmationHTML + contactAdminHTML +
			paymentSuccessClientHTML + paymentSuccessAdminHTML + paymentFailureAdminHTML))

	textTemplates = texttemplate.Must(texttemplate.New("text").Parse(
		contactConfirmationText + contactAdminText +
			paymentSuccessClientText + paymentSuccessAdminText + paymentFailureAdminText))
)

// Formatter хранит брендинг писем. Безопасен для конкурентного использования.
type Formatter struct {
	brand        string
	supportEmail string
	loc          *time.Location
}

// NewFormatter создает форматтер. Время в письмах выводится в часовом поясе loc.
func NewFormatter(brand, supportEmail string, loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return &Formatter{
		brand:        brand,
		supportEmail: supportEmail,
		loc:          loc,
	}
}

// common поля, которые есть во всех письмах
type common struct {
	Brand        string
	SupportEmail string
	Timestamp    string
	Year         int
	// Header цвет шапки письма
	Header string
	Title  string
}

func (f *Formatter) common(now time.Time, header, title string) common {
	local := now.In(f.loc)
	return common{
		Brand:        f.brand,
		SupportEmail: f.supportEmail,
		Timestamp:    local.Format(timestampLayout),
		Year:         local.Year(),
		Header:       header,
		Title:        title,
	}
}

// render выполняет пару шаблонов name+".html" / name+".txt".
// Шаблоны фиксированы и покрыты тестами, поэтому ошибка выполнения
// дает пустое тело, а не панику.
func render(name string, data any) (string, string) {
	var html, text bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&html, name+".html", data); err != nil {
		html.Reset()
	}
	if err := textTemplates.ExecuteTemplate(&text, name+".txt", data); err != nil {
		text.Reset()
	}
	return html.String(), strings.TrimSpace(text.String()) + "\n"
}

// FormatAmount переводит сумму в минимальных единицах в строку вида "GBP 99.00"
func FormatAmount(amount int64, currency string) string {
	return strings.ToUpper(currency) + " " + formatMinorUnits(amount)
}

func formatMinorUnits(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	cents := strconv.FormatInt(amount%100, 10)
	if len(cents) == 1 {
		cents = "0" + cents
	}
	return sign + strconv.FormatInt(amount/100, 10) + "." + cents
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// metadataRows копирует метаданные, сохраняя порядок
func metadataRows(entries []domain.MetadataEntry) []domain.MetadataEntry {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]domain.MetadataEntry, len(entries))
	copy(rows, entries)
	return rows
}
