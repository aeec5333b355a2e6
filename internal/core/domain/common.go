package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
}

// MinorUnitDigits is the number of decimal places of the ledger currency.
const MinorUnitDigits = 2

// RoundMoney quantises an amount to minor currency units, rounding half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MinorUnitDigits)
}

// IsMinorUnitExact reports whether d has no precision beyond minor currency units.
func IsMinorUnitExact(d decimal.Decimal) bool {
	return d.Equal(d.Round(MinorUnitDigits))
}
