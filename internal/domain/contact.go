package domain

// ContactForm сырые поля формы обратной связи, как они пришли от клиента
type ContactForm struct {
	Name            string `json:"name" form:"name"`
	Email           string `json:"email" form:"email"`
	Phone           string `json:"phone" form:"phone"`
	Service         string `json:"service" form:"service"`
	Message         string `json:"message" form:"message"`
	AppointmentDate string `json:"appointmentDate" form:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime" form:"appointmentTime"`
}

// ContactSubmission проверенная и нормализованная заявка.
// Phone и Message пустые, если не были указаны.
type ContactSubmission struct {
	Name            string
	Email           string
	Phone           string
	Service         string
	Message         string
	AppointmentDate string
	AppointmentTime string
}
