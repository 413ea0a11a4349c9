package models

const (
	EstimatePriceRange = "$2,500 - $3,000"
	SampleImageURL     = "https://images.unsplash.com/photo-1488590528505-98d2b5aba04b"
)

// Estimate is the result shown after submit. It does not depend on the
// submitted values.
type Estimate struct {
	PriceRange     string `json:"priceRange"`
	SampleImageURL string `json:"sampleImageUrl"`
	Sample         bool   `json:"sample"`
}

func FixedEstimate() Estimate {
	return Estimate{
		PriceRange:     EstimatePriceRange,
		SampleImageURL: SampleImageURL,
		Sample:         true,
	}
}
