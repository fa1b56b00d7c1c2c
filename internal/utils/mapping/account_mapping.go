package mapping

import (
	"github.com/karobooks/ledger_engine/internal/core/domain"
	"github.com/karobooks/ledger_engine/internal/models"
)

// ToModelAccount converts a domain Account to a model Account.
func ToModelAccount(d domain.Account) models.Account {
	m := models.Account{
		AccountID:      d.AccountID,
		TenantID:       d.TenantID,
		Code:           d.Code,
		Name:           d.Name,
		AccountType:    models.AccountType(d.AccountType),
		NormalSide:     models.EntrySide(d.NormalSide),
		CurrencyCode:   d.CurrencyCode,
		IsControl:      d.IsControl,
		Description:    d.Description,
		IsActive:       d.IsActive,
		OpeningBalance: d.OpeningBalance,
		Balance:        d.Balance,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
	if d.ParentAccountID != "" {
		m.ParentAccountID = &d.ParentAccountID
	}
	if d.SubledgerType != "" {
		m.SubledgerType = &d.SubledgerType
	}
	return m
}

// ToDomainAccount converts a model Account to a domain Account.
func ToDomainAccount(m models.Account) domain.Account {
	d := domain.Account{
		AccountID:      m.AccountID,
		TenantID:       m.TenantID,
		Code:           m.Code,
		Name:           m.Name,
		AccountType:    domain.AccountType(m.AccountType),
		NormalSide:     domain.EntrySide(m.NormalSide),
		CurrencyCode:   m.CurrencyCode,
		IsControl:      m.IsControl,
		Description:    m.Description,
		IsActive:       m.IsActive,
		OpeningBalance: m.OpeningBalance,
		Balance:        m.Balance,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
	if m.ParentAccountID != nil {
		d.ParentAccountID = *m.ParentAccountID
	}
	if m.SubledgerType != nil {
		d.SubledgerType = *m.SubledgerType
	}
	return d
}
