package domain

// Pricing unit constants
const (
	UnitThousandChars = "thousand" // per 1000 characters
	UnitPage          = "page"
	UnitMinute        = "minute"
	UnitPiece         = "piece"
)

// ServiceOffering represents one row of the price sheet. Immutable once
// loaded; the catalog replaces the whole list on refresh.
type ServiceOffering struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	PriceSimple      *int   `json:"price_simple,omitempty"`
	PriceComplex     *int   `json:"price_complex,omitempty"`
	Unit             string `json:"unit"` // thousand, page, minute, piece
	RequiresMaterial bool   `json:"requires_material"`
	Note             string `json:"note,omitempty"`
}
