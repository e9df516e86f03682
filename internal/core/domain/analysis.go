package domain

// Intent is the coarse purpose of a user query. It is a retrieval hint only.
type Intent string

// Known intents.
const (
	IntentIntegration     Intent = "integration"
	IntentConfiguration   Intent = "configuration"
	IntentTroubleshooting Intent = "troubleshooting"
	IntentMigration       Intent = "migration"
	IntentProductInfo     Intent = "product_info"
	IntentGeneral         Intent = "general"
)

// IsValid returns true if the intent is recognised.
func (i Intent) IsValid() bool {
	switch i {
	case IntentIntegration, IntentConfiguration, IntentTroubleshooting,
		IntentMigration, IntentProductInfo, IntentGeneral:
		return true
	default:
		return false
	}
}

// QueryAnalysis is derived per request and never persisted.
type QueryAnalysis struct {
	SourceVendor  string `json:"source,omitempty"`
	TargetVendor  string `json:"target,omitempty"`
	SourceProduct string `json:"source_product,omitempty"`
	TargetProduct string `json:"target_product,omitempty"`
	Intent        Intent `json:"intent"`
	OriginalQuery string `json:"original_query"`
}

// Vendors returns the identified vendors, source first.
func (a QueryAnalysis) Vendors() []string {
	var out []string
	if a.SourceVendor != "" {
		out = append(out, a.SourceVendor)
	}
	if a.TargetVendor != "" && a.TargetVendor != a.SourceVendor {
		out = append(out, a.TargetVendor)
	}
	return out
}

// Products returns the identified products, source first.
func (a QueryAnalysis) Products() []string {
	var out []string
	if a.SourceProduct != "" {
		out = append(out, a.SourceProduct)
	}
	if a.TargetProduct != "" {
		out = append(out, a.TargetProduct)
	}
	return out
}
