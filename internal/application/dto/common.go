package dto

// ErrorResponse cuerpo de error HTTP. Details identifica la línea o el artículo rechazado
// para que el cliente corrija sin reenviar toda la orden.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
