package reporting

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbook-dev/finbook/internal/model"
)

// SectionDef assigns accounts of one type to a named balance-sheet section by
// account-code prefix. Empty prefixes catch every account of the type not
// claimed by an earlier section.
type SectionDef struct {
	Name         string
	Type         model.AccountType
	CodePrefixes []string
}

// Taxonomy is the caller-defined section layout of a balance sheet.
type Taxonomy []SectionDef

// DefaultTaxonomy is one catch-all section per balance-sheet account type.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		{Name: "Assets", Type: model.AccountTypeAsset},
		{Name: "Liabilities", Type: model.AccountTypeLiability},
		{Name: "Equity", Type: model.AccountTypeEquity},
	}
}

// BalanceSheetRow is one account's balance within a section.
type BalanceSheetRow struct {
	AccountID   string
	AccountCode string
	AccountName string
	Balance     decimal.Decimal
}

// BalanceSheetSection groups account balances under a section name.
type BalanceSheetSection struct {
	Name  string
	Type  model.AccountType
	Rows  []BalanceSheetRow
	Total decimal.Decimal
}

// BalanceSheet is the full statement as of a date. IsBalanced is data, not an
// error: a false value signals an upstream posting bug and must reach the
// caller rather than fail the read.
type BalanceSheet struct {
	CompanyID        string
	AsOfDate         time.Time
	Sections         []BalanceSheetSection
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	TotalEquity      decimal.Decimal
	IsBalanced       bool
}

// GetBalanceSheet computes every active asset, liability and equity account's
// full-history balance as of asOf, grouped by taxonomy, and checks
// Assets == Liabilities + Equity exactly. A nil taxonomy uses the default.
func (s *Service) GetBalanceSheet(ctx context.Context, companyID string, asOf time.Time, taxonomy Taxonomy) (BalanceSheet, error) {
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}

	all, err := s.accounts.All(ctx, companyID)
	if err != nil {
		return BalanceSheet{}, err
	}

	sheet := BalanceSheet{
		CompanyID:        companyID,
		AsOfDate:         asOf,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}

	sections := make([]BalanceSheetSection, len(taxonomy))
	for i, def := range taxonomy {
		sections[i] = BalanceSheetSection{Name: def.Name, Type: def.Type, Total: decimal.Zero}
	}

	for _, a := range all {
		if !a.IsActive {
			continue
		}
		switch a.Type {
		case model.AccountTypeAsset, model.AccountTypeLiability, model.AccountTypeEquity:
		default:
			continue
		}

		idx := sectionIndex(taxonomy, a)
		if idx < 0 {
			continue
		}

		position, err := s.AccountLedger(ctx, a.ID, time.Time{}, asOf)
		if err != nil {
			return BalanceSheet{}, err
		}
		balance := position.ClosingBalance

		sections[idx].Rows = append(sections[idx].Rows, BalanceSheetRow{
			AccountID:   a.ID,
			AccountCode: a.Code,
			AccountName: a.Name,
			Balance:     balance,
		})
		sections[idx].Total = sections[idx].Total.Add(balance)

		switch a.Type {
		case model.AccountTypeAsset:
			sheet.TotalAssets = sheet.TotalAssets.Add(balance)
		case model.AccountTypeLiability:
			sheet.TotalLiabilities = sheet.TotalLiabilities.Add(balance)
		case model.AccountTypeEquity:
			sheet.TotalEquity = sheet.TotalEquity.Add(balance)
		}
	}

	sheet.Sections = sections
	sheet.IsBalanced = sheet.TotalAssets.Equal(sheet.TotalLiabilities.Add(sheet.TotalEquity))
	return sheet, nil
}

// sectionIndex finds the first section matching an account's type and code.
func sectionIndex(taxonomy Taxonomy, a model.Account) int {
	catchAll := -1
	for i, def := range taxonomy {
		if def.Type != a.Type {
			continue
		}
		if len(def.CodePrefixes) == 0 {
			if catchAll < 0 {
				catchAll = i
			}
			continue
		}
		for _, prefix := range def.CodePrefixes {
			if strings.HasPrefix(a.Code, prefix) {
				return i
			}
		}
	}
	return catchAll
}
