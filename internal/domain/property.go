// Package domain holds the pure value objects shared across modules.
package domain

// PropertyType categorizes a residential listing.
type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeMaisonette PropertyType = "maisonette"
	PropertyTypeDetached   PropertyType = "detached"
	PropertyTypeStudio     PropertyType = "studio"
	PropertyTypeLoft       PropertyType = "loft"
	PropertyTypePenthouse  PropertyType = "penthouse"
)

// Property describes a candidate investment at the simulation boundary.
// Only the fields that drive rental-yield adjustments are modeled; listing
// metadata (URL, description, photos) belongs to the ingestion layer.
type Property struct {
	ID           string
	Price        float64 // asking price in EUR
	SizeSqm      float64 // floor area in square meters
	Type         PropertyType
	EnergyClass  string // A+, A, B+, B, C, D, E, F, G
	Neighborhood string // e.g. "Kolonaki", "Exarchia", "Koukaki"
}

// Valid reports whether the property carries enough data to simulate.
func (p Property) Valid() bool {
	return p.ID != "" && p.Price > 0
}
