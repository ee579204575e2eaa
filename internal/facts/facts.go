// Package facts extracts structured financial data from document text via
// an LLM and validates what comes back before anything touches a deal.
package facts

// Facts are the financial fields a document can contribute. Monetary values
// are in millions of dollars. Nil means the document did not state the value.
type Facts struct {
	Valuation     *float64 `json:"valuation"`
	Revenue       *float64 `json:"revenue"`
	EBITDA        *float64 `json:"ebitda"`
	TargetCompany *string  `json:"targetCompany"`
	Geography     *string  `json:"geography"`
}

func (f Facts) IsZero() bool {
	return f.Valuation == nil && f.Revenue == nil && f.EBITDA == nil &&
		f.TargetCompany == nil && f.Geography == nil
}

// DealSnapshot is the current state of a deal, quoted back to the model so
// it only reports new or more recent data.
type DealSnapshot struct {
	TargetCompany *string
	Geography     *string
	Valuation     *float64
	Revenue       *float64
	EBITDA        *float64
}

// DealProfile is the richer extraction used when a whole deal is created
// from a single document.
type DealProfile struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Facts
}
