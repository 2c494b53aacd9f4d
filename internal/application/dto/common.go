package dto

// DefaultPageLimit tamaño de página si el cliente no envía limit.
const DefaultPageLimit = 50

// PageRequest paginación por desplazamiento para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero o negativos.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// Window rango [start, end) de la página dentro de total elementos y sus metadatos.
func (p PageRequest) Window(total int) (start, end int, page PageResponse) {
	start = min(p.Offset, total)
	end = min(start+p.Limit, total)
	return start, end, PageResponse{Limit: p.Limit, Offset: p.Offset, Total: total, HasMore: end < total}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// ErrorResponse cuerpo de error HTTP. Details lleva datos estructurados
// (campo inválido, cantidades pedidas y disponibles).
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// MovementListResponse historial paginado de un material.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
