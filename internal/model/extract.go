package model

// ExtractKind names one scalar pulled out of a simulated path.
// Keep these values stable; they are part of the output column names.
type ExtractKind string

const (
	ExtractStockGrant  ExtractKind = "month_st"
	ExtractOptionGrant ExtractKind = "month_opt"
	ExtractYearEnd     ExtractKind = "year"
)

// ExtractKinds returns the per-iteration extract order.
func ExtractKinds() []ExtractKind {
	return []ExtractKind{ExtractStockGrant, ExtractOptionGrant, ExtractYearEnd}
}

// ValuationKind names one implied-count column family.
type ValuationKind string

const (
	ValuationOption ValuationKind = "opt_pred"
	ValuationStock  ValuationKind = "st_pred"
)

// ValuationKinds returns the family order in the output table.
func ValuationKinds() []ValuationKind {
	return []ValuationKind{ValuationOption, ValuationStock}
}
