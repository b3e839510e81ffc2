package unify

import (
	"context"
	"fmt"

	"github.com/username/scrapdash/backend/src/logger"
	"github.com/username/scrapdash/backend/src/models"
	"github.com/username/scrapdash/backend/src/sources"
)

// Neutral defaults substituted for missing optional fields. Mapping never
// fails on optional data; only a missing identity field rejects a record.
const (
	DefaultWalkInName   = "Walk-in Customer"
	DefaultBuyerName    = "Unknown Customer"
	DefaultQualityGrade = "Ungraded"
	DefaultPayment      = "cash"
)

// Adapter maps the two heterogeneous raw record shapes into the unified
// transaction model. The counterparty directory is injected so tests can
// substitute a double.
type Adapter struct {
	directory sources.CounterpartyDirectory
}

func NewAdapter(directory sources.CounterpartyDirectory) *Adapter {
	return &Adapter{directory: directory}
}

// UnifyPurchase maps one raw purchase record. The counterparty is the
// registered supplier's display name unless the purchase was a walk-in, in
// which case the recorded walk-in name (or its default) is used. The
// grouping key falls back to the resolved name when no supplier id exists.
func (a *Adapter) UnifyPurchase(ctx context.Context, rec models.PurchaseRecord) (models.UnifiedTransaction, error) {
	if err := checkIdentity(rec.ID, !rec.TransactionDate.IsZero()); err != nil {
		return models.UnifiedTransaction{}, err
	}

	name := DefaultWalkInName
	key := ""
	if rec.IsWalkIn {
		if rec.WalkinName != "" {
			name = rec.WalkinName
		}
	} else if rec.SupplierID != "" {
		resolved, err := a.directory.LookupName(ctx, rec.SupplierID)
		if err != nil {
			logger.L.Warn("Supplier lookup failed, falling back to walk-in name",
				"supplierID", rec.SupplierID, "purchaseID", rec.ID, "error", err)
			if rec.WalkinName != "" {
				name = rec.WalkinName
			}
		} else {
			name = resolved
			key = rec.SupplierID
		}
	} else if rec.WalkinName != "" {
		name = rec.WalkinName
	}
	if key == "" {
		key = name
	}

	tx := models.UnifiedTransaction{
		ID:               rec.ID,
		Kind:             models.KindPurchase,
		CounterpartyName: name,
		CounterpartyKey:  key,
		MaterialName:     rec.MaterialType,
		TransactionDate:  rec.TransactionDate,
		CreatedAt:        rec.CreatedAt,
		TotalAmount:      rec.TotalAmount,
		WeightKg:         rec.WeightKg,
		PricePerKg:       rec.UnitPrice,
		PaymentMethod:    orDefault(rec.PaymentMethod, DefaultPayment),
		PaymentStatus:    rec.PaymentStatus,
		QualityGrade:     orDefault(rec.QualityGrade, DefaultQualityGrade),
		Notes:            rec.Notes,
		Reference:        rec.Reference,
	}
	normalize(&tx)
	return tx, nil
}

// UnifySale maps one raw sale record. The counterparty is the recorded buyer
// name, defaulting when absent; the grouping key prefers the buyer id.
func (a *Adapter) UnifySale(ctx context.Context, rec models.SaleRecord) (models.UnifiedTransaction, error) {
	if err := checkIdentity(rec.ID, !rec.TransactionDate.IsZero()); err != nil {
		return models.UnifiedTransaction{}, err
	}

	name := orDefault(rec.CounterpartyName, DefaultBuyerName)
	key := rec.CounterpartyID
	if key == "" {
		key = name
	}

	tx := models.UnifiedTransaction{
		ID:               rec.ID,
		Kind:             models.KindSale,
		CounterpartyName: name,
		CounterpartyKey:  key,
		MaterialName:     rec.MaterialName,
		TransactionDate:  rec.TransactionDate,
		CreatedAt:        rec.CreatedAt,
		TotalAmount:      rec.TotalAmount,
		WeightKg:         rec.WeightKg,
		PricePerKg:       rec.PricePerKg,
		PaymentMethod:    orDefault(rec.PaymentMethod, DefaultPayment),
		PaymentStatus:    rec.PaymentStatus,
		QualityGrade:     DefaultQualityGrade,
		Notes:            rec.Notes,
		Reference:        rec.TransactionID,
	}
	normalize(&tx)
	return tx, nil
}

func checkIdentity(id string, hasDate bool) error {
	if id == "" {
		return fmt.Errorf("%w: missing id", models.ErrMalformedRecord)
	}
	if !hasDate {
		return fmt.Errorf("%w: missing transaction date (id %s)", models.ErrMalformedRecord, id)
	}
	return nil
}

// normalize clamps negative numeric fields to zero and backfills the stored
// price from the authoritative total when no price was recorded.
func normalize(tx *models.UnifiedTransaction) {
	if tx.TotalAmount < 0 {
		tx.TotalAmount = 0
	}
	if tx.WeightKg < 0 {
		tx.WeightKg = 0
	}
	if tx.PricePerKg <= 0 {
		tx.PricePerKg = tx.EffectivePricePerKg()
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
