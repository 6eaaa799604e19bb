package entities

import (
	"time"
)

// SegmentSummary holds per-cluster aggregate statistics over the unscaled
// feature vectors. It is the sole input to the labeler and one of the two
// published output tables.
type SegmentSummary struct {
	Cluster              int     `json:"cluster" db:"cluster"`
	MemberCount          int     `json:"member_count" db:"member_count"`
	MeanRecencyDays      float64 `json:"mean_recency_days" db:"mean_recency_days"`
	MeanFrequency        float64 `json:"mean_frequency" db:"mean_frequency"`
	MeanSpend            float64 `json:"mean_spend" db:"mean_spend"`
	MeanTransactionValue float64 `json:"mean_transaction_value" db:"mean_transaction_value"`
	RevenueShare         float64 `json:"revenue_share" db:"revenue_share"`
	Label                string  `json:"label" db:"label"`
}

// CustomerSegmentRow is one row of the per-customer output table: the original
// feature vector, the assigned cluster, the inherited segment label and the
// projection coordinates used by the dashboard scatter plot.
type CustomerSegmentRow struct {
	FeatureVector
	Cluster    int       `json:"cluster" db:"cluster"`
	Label      string    `json:"label" db:"label"`
	Coord1     float64   `json:"coord_1" db:"coord_1"`
	Coord2     float64   `json:"coord_2" db:"coord_2"`
	Coord3     float64   `json:"coord_3" db:"coord_3"`
	ComputedAt time.Time `json:"computed_at" db:"computed_at"`
}
