package domain

// EmailMessage результат форматирования шаблона
type EmailMessage struct {
	Subject string
	HTML    string
	Text    string
}
