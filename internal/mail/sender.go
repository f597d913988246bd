// Package mail отправляет письма через HTTP API ZeptoMail.
package mail

import (
	"context"
	"encoding/json"
)

// Address отправитель или получатель письма
type Address struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

// Recipient элемент списка "to" в формате ZeptoMail
type Recipient struct {
	EmailAddress Address `json:"email_address"`
}

// SendRequest тело запроса к ZeptoMail
type SendRequest struct {
	From     Address     `json:"from"`
	To       []Recipient `json:"to"`
	Subject  string      `json:"subject"`
	HTMLBody string      `json:"htmlbody"`
	TextBody string      `json:"textbody,omitempty"`
}

// SendResponse ответ провайдера. Тело сохраняется как есть.
type SendResponse struct {
	StatusCode int
	Body       json.RawMessage
}

// Sender отправляет одно письмо. Одна попытка, без повторов.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (*SendResponse, error)
}

// To собирает список получателей из одного адреса
func To(address, name string) []Recipient {
	return []Recipient{{EmailAddress: Address{Address: address, Name: name}}}
}
