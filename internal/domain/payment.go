package domain

// DefaultCurrency валюта платежа по умолчанию
const DefaultCurrency = "gbp"

// PaymentIntentRequest запрос на создание payment intent после валидации.
// Amount задан в минимальных единицах валюты (пенсы).
type PaymentIntentRequest struct {
	Amount        int64
	Currency      string
	CustomerEmail string
	CustomerName  string
	Metadata      map[string]string
}

// PaymentIntentResult то, что нужно платежной форме на клиенте
type PaymentIntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// MetadataEntry одна пара ключ/значение метаданных платежа
type MetadataEntry struct {
	Key   string
	Value string
}

// PaymentOutcome данные платежа, извлеченные из проверенного события.
// Используются только для заполнения шаблонов писем.
type PaymentOutcome struct {
	PaymentIntentID string
	Amount          int64
	Currency        string
	CustomerEmail   string
	CustomerName    string
	// Metadata в порядке следования ключей в исходном событии
	Metadata     []MetadataEntry
	ErrorMessage string
}

// HasCustomerEmail сообщает, можно ли отправить письмо клиенту
func (o PaymentOutcome) HasCustomerEmail() bool {
	return o.CustomerEmail != ""
}
