package accounts

import (
	"github.com/google/uuid"

	"github.com/finbook-dev/finbook/internal/model"
)

// DefaultChart returns the seed chart of accounts for a new company.
func DefaultChart(companyID string) []model.Account {
	mk := func(code, name string, t model.AccountType) model.Account {
		return model.Account{
			ID:        uuid.NewString(),
			CompanyID: companyID,
			Code:      code,
			Name:      name,
			Type:      t,
			IsActive:  true,
		}
	}
	return []model.Account{
		mk("1010", "Cash", model.AccountTypeAsset),
		mk("1020", "Bank", model.AccountTypeAsset),
		mk("1200", "Accounts Receivable", model.AccountTypeAsset),
		mk("1500", "Fixed Assets", model.AccountTypeAsset),
		mk("2010", "Accounts Payable", model.AccountTypeLiability),
		mk("2100", "Taxes Payable", model.AccountTypeLiability),
		mk("2200", "Salaries Payable", model.AccountTypeLiability),
		mk("3010", "Share Capital", model.AccountTypeEquity),
		mk("3900", "Retained Earnings", model.AccountTypeEquity),
		mk("4010", "Sales Revenue", model.AccountTypeIncome),
		mk("4020", "Service Revenue", model.AccountTypeIncome),
		mk("5010", "Salaries Expense", model.AccountTypeExpense),
		mk("5020", "Rent Expense", model.AccountTypeExpense),
		mk("5030", "Office Expense", model.AccountTypeExpense),
		mk("5040", "Professional Services", model.AccountTypeExpense),
	}
}
