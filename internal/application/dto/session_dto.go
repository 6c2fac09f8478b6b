package dto

// ExportRequest body para POST /api/session/export.
type ExportRequest struct {
	Format string `json:"format"` // pdf (defecto) o xlsx
	View   string `json:"view"`   // all (defecto), search, lowstock
	Query  string `json:"query"`
	Title  string `json:"title"`
	Path   string `json:"path"`
}

// ExportResponse ruta del archivo exportado.
type ExportResponse struct {
	Path string `json:"path"`
}
