package entities

// FeatureVector holds the per-customer behavioral aggregates computed by the
// feature extractor. Created once per pipeline run and never mutated.
type FeatureVector struct {
	CustomerID             string  `json:"customer_id" db:"customer_id"`
	RecencyDays            float64 `json:"recency_days" db:"recency_days"`
	Frequency              float64 `json:"frequency" db:"frequency"`
	TotalSpend             float64 `json:"total_spend" db:"total_spend"`
	AvgTransactionValue    float64 `json:"avg_transaction_value" db:"avg_transaction_value"`
	UniqueProducts         float64 `json:"unique_products" db:"unique_products"`
	MaxPurchase            float64 `json:"max_purchase" db:"max_purchase"`
	MinPurchase            float64 `json:"min_purchase" db:"min_purchase"`
	InteractionCount       float64 `json:"interaction_count" db:"interaction_count"`
	AvgInteractionDuration float64 `json:"avg_interaction_duration" db:"avg_interaction_duration"`
	InteractionKinds       float64 `json:"interaction_kinds" db:"interaction_kinds"`
	EmailOpens             float64 `json:"email_opens" db:"email_opens"`
	SiteVisits             float64 `json:"site_visits" db:"site_visits"`
	TenureDays             float64 `json:"tenure_days" db:"tenure_days"`
}

// FeatureNames lists the feature columns in the order Values returns them
var FeatureNames = []string{
	"recency_days",
	"frequency",
	"total_spend",
	"avg_transaction_value",
	"unique_products",
	"max_purchase",
	"min_purchase",
	"interaction_count",
	"avg_interaction_duration",
	"interaction_kinds",
	"email_opens",
	"site_visits",
	"tenure_days",
}

// Values returns the feature columns in FeatureNames order
func (f *FeatureVector) Values() []float64 {
	return []float64{
		f.RecencyDays,
		f.Frequency,
		f.TotalSpend,
		f.AvgTransactionValue,
		f.UniqueProducts,
		f.MaxPurchase,
		f.MinPurchase,
		f.InteractionCount,
		f.AvgInteractionDuration,
		f.InteractionKinds,
		f.EmailOpens,
		f.SiteVisits,
		f.TenureDays,
	}
}
