package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// EntrySide indicates whether an amount contributes to the debit or credit
// side of an entry, and doubles as an account's normal balance side.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// MaxAccountDepth bounds the chart-of-accounts tree.
const MaxAccountDepth = 8

// NormalSideFor returns the conventional normal balance side for an account type.
// Assets and expenses grow with debits; liabilities, equity and income grow
// with credits.
func NormalSideFor(t AccountType) EntrySide {
	switch t {
	case Asset, Expense:
		return Debit
	default:
		return Credit
	}
}

// Account represents one node in a tenant's chart of accounts.
// Balance is a cached aggregate; only the balance maintainer mutates it.
type Account struct {
	AccountID       string          `json:"accountID"`      // Primary Key (e.g., UUID)
	TenantID        string          `json:"tenantID"`       // FK -> tenants.tenant_id (NOT NULL)
	Code            string          `json:"code"`           // Unique per tenant (e.g., "1110")
	Name            string          `json:"name"`           // User-defined name
	AccountType     AccountType     `json:"accountType"`    // ASSET, LIABILITY, etc.
	NormalSide      EntrySide       `json:"normalSide"`     // DEBIT or CREDIT
	CurrencyCode    string          `json:"currencyCode"`   // ISO 4217
	ParentAccountID string          `json:"parentAccountID"` // Nullable FK -> accounts.account_id (self-referencing, tree)
	IsControl       bool            `json:"isControl"`      // Control account with declared subledger linkage
	SubledgerType   string          `json:"subledgerType"`  // e.g. "vendor", "employee"; set when IsControl
	Description     string          `json:"description"`
	IsActive        bool            `json:"isActive"`
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
	Balance         decimal.Decimal `json:"balance"` // Cached current balance
	AuditFields
}
