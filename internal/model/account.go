package model

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// Side identifies which side of an entry increases an account's balance.
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

// NormalSide returns the side that increases balances for this account type.
// Asset and expense accounts are debit-normal; liability, equity and income
// accounts are credit-normal.
func (t AccountType) NormalSide() Side {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return SideDebit
	default:
		return SideCredit
	}
}

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// Account represents a row in the chart of accounts. Accounts are immutable
// once a posted journal line references them.
type Account struct {
	ID        string
	CompanyID string
	Code      string // unique per company
	Name      string
	Type      AccountType
	IsActive  bool
}
