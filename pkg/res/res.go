package res

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse представляет формат JSON-ответа для ошибок.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Errors  any    `json:"errors,omitempty"` // Ошибки валидации по полям
	Error   string `json:"error,omitempty"`  // Отладочная информация (ТОЛЬКО вне production!)
}

// SuccessResponse ответ об успешной обработке формы
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// JsonResponse отправляет JSON-ответ с заданным статусом.
func JsonResponse(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Fail короткая форма для {success:false, message}
func Fail(w http.ResponseWriter, message string, status int) {
	JsonResponse(w, ErrorResponse{Success: false, Message: message}, status)
}

// PlainText отправляет текстовый ответ
func PlainText(w http.ResponseWriter, text string, status int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}
