package domain

// Retailer identifies one of the tracked companies, or the overflow bucket.
type Retailer string

const (
	RetailerWalmart Retailer = "walmart"
	RetailerAmazon  Retailer = "amazon"
	RetailerCostco  Retailer = "costco"
	RetailerTarget  Retailer = "target"

	// RetailerOther holds financial-category earnings markets that mention a
	// large-cap ticker but matched none of the four tracked companies.
	RetailerOther Retailer = "other"
)

// RetailerOrder is the fixed evaluation order used by the classifier and the
// canonical ordering for API responses. The order itself is arbitrary; it only
// needs to be deterministic so that a text matching two companies always
// resolves the same way.
var RetailerOrder = []Retailer{
	RetailerWalmart,
	RetailerAmazon,
	RetailerCostco,
	RetailerTarget,
}

// IsTracked reports whether r is one of the four tracked companies (not the
// overflow bucket).
func (r Retailer) IsTracked() bool {
	switch r {
	case RetailerWalmart, RetailerAmazon, RetailerCostco, RetailerTarget:
		return true
	default:
		return false
	}
}

// ParseRetailer maps a string to a Retailer, accepting the overflow bucket.
// The boolean is false for unknown names.
func ParseRetailer(s string) (Retailer, bool) {
	switch Retailer(s) {
	case RetailerWalmart, RetailerAmazon, RetailerCostco, RetailerTarget, RetailerOther:
		return Retailer(s), true
	default:
		return "", false
	}
}
