package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case Asset, Liability, Equity, Income, Expense:
		return true
	}
	return false
}

// Side is the debit or credit side of a ledger posting.
type Side string

const (
	Debit  Side = "DEBIT"
	Credit Side = "CREDIT"
)

// NormalBalanceFor returns the side on which an account of type t increases.
func NormalBalanceFor(t AccountType) Side {
	switch t {
	case Asset, Expense:
		return Debit
	default:
		return Credit
	}
}

// Account represents a chart-of-accounts bucket.
// Code, type and normal balance never change after seeding; only Name and IsActive do.
type Account struct {
	AccountID     string      `json:"accountID"`
	Code          string      `json:"code"` // unique, sortable
	Name          string      `json:"name"`
	AccountType   AccountType `json:"accountType"`
	NormalBalance Side        `json:"normalBalance"`
	IsActive      bool        `json:"isActive"`
	AuditFields
}

// Chart is a point-in-time snapshot of the chart of accounts keyed by account code.
type Chart map[string]Account

// NewChart builds a Chart from a slice of accounts.
func NewChart(accounts []Account) Chart {
	chart := make(Chart, len(accounts))
	for _, acc := range accounts {
		chart[acc.Code] = acc
	}
	return chart
}

// Active returns the account for code if it exists and is active.
func (c Chart) Active(code string) (Account, bool) {
	acc, ok := c[code]
	if !ok || !acc.IsActive {
		return Account{}, false
	}
	return acc, true
}
