package dto

// ErrorResponse cuerpo de error HTTP.
// Field e Index se llenan en errores de validación y de lotes.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Index   *int   `json:"index,omitempty"`
}
