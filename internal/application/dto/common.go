package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Index   *int   `json:"index,omitempty"` // entrada fallida de un lote
	Sheet   string `json:"sheet,omitempty"` // fila mal formada al abrir un libro
	Row     int    `json:"row,omitempty"`
	Field   string `json:"field,omitempty"`
}

// PathRequest body con una ruta de libro (open, save).
type PathRequest struct {
	Path string `json:"path"`
}
