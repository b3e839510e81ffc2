package models

import "time"

// TransactionKind is the closed set of transaction variants. It is immutable
// after a UnifiedTransaction is created.
type TransactionKind string

const (
	KindPurchase TransactionKind = "purchase"
	KindSale     TransactionKind = "sale"
)

// UnifiedTransaction is the normalized representation of either a purchase
// (material bought from a supplier or walk-in) or a sale (material sold to a
// buyer). Both raw source shapes are mapped into this one schema, so all
// grouping and reporting logic downstream works on a single model.
type UnifiedTransaction struct {
	ID               string          `json:"id"`
	Kind             TransactionKind `json:"kind"`
	CounterpartyName string          `json:"counterparty_name"`
	CounterpartyKey  string          `json:"counterparty_key"`
	MaterialName     string          `json:"material_name"`
	TransactionDate  time.Time       `json:"transaction_date"`
	CreatedAt        time.Time       `json:"created_at"`
	TotalAmount      float64         `json:"total_amount"`
	WeightKg         float64         `json:"weight_kg"`
	PricePerKg       float64         `json:"price_per_kg"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentStatus    string          `json:"payment_status"`
	QualityGrade     string          `json:"quality_grade,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	Reference        string          `json:"reference,omitempty"`
}

// EffectivePricePerKg derives price-per-kg from the authoritative total
// amount. TotalAmount and WeightKg*PricePerKg are not guaranteed consistent
// (stored prices can be overridden), so this never trusts the stored price.
func (t UnifiedTransaction) EffectivePricePerKg() float64 {
	if t.WeightKg > 0 {
		return t.TotalAmount / t.WeightKg
	}
	return 0
}

// PurchaseRecord is the raw record shape delivered by the purchase source.
// Optional numeric fields arrive as zero values; optional strings as "".
type PurchaseRecord struct {
	ID              string    `json:"id"`
	SupplierID      string    `json:"supplier_id,omitempty"`
	IsWalkIn        bool      `json:"is_walkin"`
	WalkinName      string    `json:"walkin_name,omitempty"`
	MaterialType    string    `json:"material_type"`
	TransactionDate time.Time `json:"transaction_date"`
	TotalAmount     float64   `json:"total_amount"`
	WeightKg        float64   `json:"weight_kg,omitempty"`
	UnitPrice       float64   `json:"unit_price,omitempty"`
	PaymentMethod   string    `json:"payment_method,omitempty"`
	PaymentStatus   string    `json:"payment_status,omitempty"`
	QualityGrade    string    `json:"quality_grade,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Reference       string    `json:"reference,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SaleRecord is the raw record shape delivered by the sale source.
type SaleRecord struct {
	ID               string    `json:"id"`
	TransactionID    string    `json:"transaction_id"`
	CounterpartyID   string    `json:"counterparty_id,omitempty"`
	CounterpartyName string    `json:"counterparty_name,omitempty"`
	MaterialName     string    `json:"material_name"`
	TransactionDate  time.Time `json:"transaction_date"`
	TotalAmount      float64   `json:"total_amount"`
	WeightKg         float64   `json:"weight_kg"`
	PricePerKg       float64   `json:"price_per_kg"`
	PaymentMethod    string    `json:"payment_method,omitempty"`
	PaymentStatus    string    `json:"payment_status,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// GroupBy selects the partitioning dimension for aggregation.
type GroupBy string

const (
	GroupByDay          GroupBy = "day"
	GroupByWeek         GroupBy = "week"
	GroupByMonth        GroupBy = "month"
	GroupByMaterial     GroupBy = "material"
	GroupByCounterparty GroupBy = "counterparty"
)

// IsTimeBucketed reports whether the grouping partitions by calendar bucket
// rather than by a categorical dimension.
func (g GroupBy) IsTimeBucketed() bool {
	return g == GroupByDay || g == GroupByWeek || g == GroupByMonth
}

// FilterCriteria narrows the working transaction set before aggregation.
// Empty filter sets mean "all". The end date is normalized to end-of-day
// before comparison, so both bounds are inclusive.
type FilterCriteria struct {
	StartDate        time.Time         `json:"start_date"`
	EndDate          time.Time         `json:"end_date"`
	Materials        []string          `json:"materials,omitempty"`
	Counterparties   []string          `json:"counterparties,omitempty"`
	TransactionTypes []TransactionKind `json:"transaction_types,omitempty"`
	GroupBy          GroupBy           `json:"group_by"`
}

// GroupedAggregate holds the statistics computed for one group key under a
// chosen GroupBy. The distinct sets are kept internally during accumulation
// and surfaced as counts.
type GroupedAggregate struct {
	Key                    string  `json:"key"`
	PurchaseCount          int     `json:"purchase_count"`
	SaleCount              int     `json:"sale_count"`
	PurchaseRevenue        float64 `json:"purchase_revenue"`
	SalesRevenue           float64 `json:"sales_revenue"`
	NetProfit              float64 `json:"net_profit"`
	Weight                 float64 `json:"weight"`
	DistinctMaterials      int     `json:"distinct_materials"`
	DistinctCounterparties int     `json:"distinct_counterparties"`
	MinPricePerKg          float64 `json:"min_price_per_kg"`
	MaxPricePerKg          float64 `json:"max_price_per_kg"`
	AvgPricePerKg          float64 `json:"avg_price_per_kg"`
	MarginPercent          float64 `json:"margin_percent"`

	Materials      map[string]struct{} `json:"-"`
	Counterparties map[string]struct{} `json:"-"`
}
