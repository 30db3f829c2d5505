package pagination

// The storefront paginates by page number, mirroring the links the front end
// renders under product grids.

const (
	// DefaultPerPage is the catalog grid size.
	DefaultPerPage = 9
	// MaxPerPage caps how many rows any listing can request.
	MaxPerPage = 50
)

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page    int
	PerPage int
}

// Page describes one slice of a listing plus the totals the front end needs
// to render pagination controls.
type Page struct {
	Page    int   `json:"pagina"`
	PerPage int   `json:"por_pagina"`
	Pages   int   `json:"paginas"`
	Total   int64 `json:"total"`
}

// Normalize clamps the params to sane bounds.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the SQL offset for the normalized params.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}

// Build computes the page descriptor for a listing with total rows.
func Build(params Params, total int64) Page {
	n := params.Normalize()
	pages := int((total + int64(n.PerPage) - 1) / int64(n.PerPage))
	if pages < 1 {
		pages = 1
	}
	return Page{
		Page:    n.Page,
		PerPage: n.PerPage,
		Pages:   pages,
		Total:   total,
	}
}
