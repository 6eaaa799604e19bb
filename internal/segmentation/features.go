package segmentation

import (
	"fmt"
	"sort"
	"time"

	"github.com/cohortiq/customer-segmentation/internal/domain/entities"
	apperrors "github.com/cohortiq/customer-segmentation/pkg/errors"
)

// DefaultRecencySentinelDays is the recency assigned to customers with no
// transaction history. A large fixed value keeps them clearly separated from
// recent buyers without leaving the feature undefined.
const DefaultRecencySentinelDays = 365

// ExtractorConfig holds the knobs of the feature extraction stage
type ExtractorConfig struct {
	// ObservedAt anchors recency and tenure so a run is reproducible
	ObservedAt time.Time

	// RecencySentinelDays is used for customers with zero transactions
	RecencySentinelDays float64
}

// ExtractFeatures aggregates raw records into one feature vector per customer,
// ordered by customer ID. Every customer in the population appears exactly
// once; customers with no transactions or interactions get sentinel/zero
// values rather than being dropped. Transactions or interactions referencing
// an unknown customer fail the whole run with a DATA_INTEGRITY error before
// any aggregation happens.
func ExtractFeatures(
	customers []*entities.Customer,
	transactions []*entities.Transaction,
	interactions []*entities.Interaction,
	cfg ExtractorConfig,
) ([]*entities.FeatureVector, error) {
	if cfg.RecencySentinelDays <= 0 {
		cfg.RecencySentinelDays = DefaultRecencySentinelDays
	}

	known := make(map[string]struct{}, len(customers))
	for _, c := range customers {
		known[c.ID] = struct{}{}
	}
	for _, t := range transactions {
		if _, ok := known[t.CustomerID]; !ok {
			return nil, apperrors.NewDataIntegrityError(
				fmt.Sprintf("transaction %s references unknown customer %s", t.ID, t.CustomerID))
		}
	}
	for _, i := range interactions {
		if _, ok := known[i.CustomerID]; !ok {
			return nil, apperrors.NewDataIntegrityError(
				fmt.Sprintf("interaction %s references unknown customer %s", i.ID, i.CustomerID))
		}
	}

	txByCustomer := make(map[string][]*entities.Transaction, len(customers))
	for _, t := range transactions {
		txByCustomer[t.CustomerID] = append(txByCustomer[t.CustomerID], t)
	}
	interByCustomer := make(map[string][]*entities.Interaction, len(customers))
	for _, i := range interactions {
		interByCustomer[i.CustomerID] = append(interByCustomer[i.CustomerID], i)
	}

	vectors := make([]*entities.FeatureVector, 0, len(customers))
	for _, c := range customers {
		fv := &entities.FeatureVector{CustomerID: c.ID}

		aggregateTransactions(fv, txByCustomer[c.ID], cfg)
		aggregateInteractions(fv, interByCustomer[c.ID])

		fv.TenureDays = daysBetween(c.SignupDate, cfg.ObservedAt)
		vectors = append(vectors, fv)
	}

	sort.Slice(vectors, func(i, j int) bool {
		return vectors[i].CustomerID < vectors[j].CustomerID
	})

	return vectors, nil
}

func aggregateTransactions(fv *entities.FeatureVector, txs []*entities.Transaction, cfg ExtractorConfig) {
	if len(txs) == 0 {
		fv.RecencyDays = cfg.RecencySentinelDays
		return
	}

	var total float64
	mostRecent := txs[0].Date
	maxAmount := txs[0].Amount
	minAmount := txs[0].Amount
	products := make(map[string]struct{}, len(txs))

	for _, t := range txs {
		total += t.Amount
		if t.Date.After(mostRecent) {
			mostRecent = t.Date
		}
		if t.Amount > maxAmount {
			maxAmount = t.Amount
		}
		if t.Amount < minAmount {
			minAmount = t.Amount
		}
		products[t.ProductID] = struct{}{}
	}

	fv.RecencyDays = daysBetween(mostRecent, cfg.ObservedAt)
	fv.Frequency = float64(len(txs))
	fv.TotalSpend = total
	fv.AvgTransactionValue = total / float64(len(txs))
	fv.UniqueProducts = float64(len(products))
	fv.MaxPurchase = maxAmount
	fv.MinPurchase = minAmount
}

func aggregateInteractions(fv *entities.FeatureVector, inters []*entities.Interaction) {
	if len(inters) == 0 {
		return
	}

	var totalDuration float64
	kinds := make(map[entities.InteractionKind]struct{}, 4)

	for _, i := range inters {
		totalDuration += i.DurationSeconds
		kinds[i.Kind] = struct{}{}
		switch i.Kind {
		case entities.InteractionEmailOpen:
			fv.EmailOpens++
		case entities.InteractionSiteVisit:
			fv.SiteVisits++
		}
	}

	fv.InteractionCount = float64(len(inters))
	fv.AvgInteractionDuration = totalDuration / float64(len(inters))
	fv.InteractionKinds = float64(len(kinds))
}

// daysBetween returns the elapsed days from earlier to later, floored at zero
// so clock skew in source timestamps cannot produce negative recency or tenure.
func daysBetween(earlier, later time.Time) float64 {
	d := later.Sub(earlier).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}
