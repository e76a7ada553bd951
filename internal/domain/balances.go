// Package domain defines the core entities of the daily balances ledger:
// distributors, their per-channel sales, the opening credit of the day and
// the transaction history. Types here carry no persistence or transport
// concerns; amounts are decimals so sums never drift.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used on transactions.
const DateLayout = "2006-01-02"

// ============================================================
// Employees
// ============================================================

// Employee is a distributor whose sales are tracked.
type Employee struct {
	ID   string
	Name string
}

// ============================================================
// Balances
// ============================================================

// OpeningBalance is the credit available on each credit line at the start
// of the day. Cash has no ceiling.
type OpeningBalance struct {
	ChannelA decimal.Decimal
	ChannelB decimal.Decimal
}

// Ceiling returns the opening balance of a credit channel. ok is false for
// channels without a ceiling.
func (b OpeningBalance) Ceiling(c Channel) (amount decimal.Decimal, ok bool) {
	switch c {
	case ChannelA:
		return b.ChannelA, true
	case ChannelB:
		return b.ChannelB, true
	case ChannelC:
		return decimal.Zero, false
	}
	return decimal.Zero, false
}

// Equal compares both channels by value.
func (b OpeningBalance) Equal(o OpeningBalance) bool {
	return b.ChannelA.Equal(o.ChannelA) && b.ChannelB.Equal(o.ChannelB)
}

// SalesEntry is the cumulative sales of one employee for the current day.
type SalesEntry struct {
	EmployeeID string
	ChannelA   decimal.Decimal
	ChannelB   decimal.Decimal
	ChannelC   decimal.Decimal
}

// NewSalesEntry returns a zero-valued entry for employeeID.
func NewSalesEntry(employeeID string) SalesEntry {
	return SalesEntry{
		EmployeeID: employeeID,
		ChannelA:   decimal.Zero,
		ChannelB:   decimal.Zero,
		ChannelC:   decimal.Zero,
	}
}

// Amount returns the value recorded on channel c.
func (e SalesEntry) Amount(c Channel) decimal.Decimal {
	switch c {
	case ChannelA:
		return e.ChannelA
	case ChannelB:
		return e.ChannelB
	case ChannelC:
		return e.ChannelC
	}
	return decimal.Zero
}

// WithAmount returns a copy of e with channel c set to v.
func (e SalesEntry) WithAmount(c Channel, v decimal.Decimal) SalesEntry {
	switch c {
	case ChannelA:
		e.ChannelA = v
	case ChannelB:
		e.ChannelB = v
	case ChannelC:
		e.ChannelC = v
	}
	return e
}

// Equal compares the entry field by field.
func (e SalesEntry) Equal(o SalesEntry) bool {
	return e.EmployeeID == o.EmployeeID &&
		e.ChannelA.Equal(o.ChannelA) &&
		e.ChannelB.Equal(o.ChannelB) &&
		e.ChannelC.Equal(o.ChannelC)
}

// SalesByType is the per-channel sum of all sales entries.
type SalesByType struct {
	ChannelA decimal.Decimal
	ChannelB decimal.Decimal
	ChannelC decimal.Decimal
}

// Amount returns the total on channel c.
func (s SalesByType) Amount(c Channel) decimal.Decimal {
	switch c {
	case ChannelA:
		return s.ChannelA
	case ChannelB:
		return s.ChannelB
	case ChannelC:
		return s.ChannelC
	}
	return decimal.Zero
}

// RemainingBalance is opening minus sales on each credit channel.
type RemainingBalance struct {
	ChannelA decimal.Decimal
	ChannelB decimal.Decimal
}

// Totals groups the derived values of the ledger.
type Totals struct {
	SalesByType       SalesByType
	RemainingBalances RemainingBalance
}

// Equal compares every derived amount by value.
func (t Totals) Equal(o Totals) bool {
	return t.SalesByType.ChannelA.Equal(o.SalesByType.ChannelA) &&
		t.SalesByType.ChannelB.Equal(o.SalesByType.ChannelB) &&
		t.SalesByType.ChannelC.Equal(o.SalesByType.ChannelC) &&
		t.RemainingBalances.ChannelA.Equal(o.RemainingBalances.ChannelA) &&
		t.RemainingBalances.ChannelB.Equal(o.RemainingBalances.ChannelB)
}

// CalculateTotals recomputes the derived values from scratch. It never
// adjusts incrementally, so repeated calls always agree.
func CalculateTotals(opening OpeningBalance, entries []SalesEntry) Totals {
	sales := SalesByType{ChannelA: decimal.Zero, ChannelB: decimal.Zero, ChannelC: decimal.Zero}
	for _, e := range entries {
		sales.ChannelA = sales.ChannelA.Add(e.ChannelA)
		sales.ChannelB = sales.ChannelB.Add(e.ChannelB)
		sales.ChannelC = sales.ChannelC.Add(e.ChannelC)
	}
	return Totals{
		SalesByType: sales,
		RemainingBalances: RemainingBalance{
			ChannelA: opening.ChannelA.Sub(sales.ChannelA),
			ChannelB: opening.ChannelB.Sub(sales.ChannelB),
		},
	}
}

// ============================================================
// Transactions
// ============================================================

// EmployeeTransaction is an immutable ledger record.
type EmployeeTransaction struct {
	ID          string
	EmployeeID  string
	Type        Channel
	Amount      decimal.Decimal
	Date        string // YYYY-MM-DD
	Description string
}

// Equal compares the record field by field.
func (t EmployeeTransaction) Equal(o EmployeeTransaction) bool {
	return t.ID == o.ID &&
		t.EmployeeID == o.EmployeeID &&
		t.Type == o.Type &&
		t.Amount.Equal(o.Amount) &&
		t.Date == o.Date &&
		t.Description == o.Description
}

// TransactionFilter narrows the transaction history. Zero values match all.
type TransactionFilter struct {
	EmployeeID string
	Date       string
	Types      []Channel
}

// Matches reports whether tx passes every set criterion.
func (f TransactionFilter) Matches(tx EmployeeTransaction) bool {
	if f.EmployeeID != "" && tx.EmployeeID != f.EmployeeID {
		return false
	}
	if f.Date != "" && !sameDay(tx.Date, f.Date) {
		return false
	}
	if len(f.Types) > 0 {
		for _, c := range f.Types {
			if tx.Type == c {
				return true
			}
		}
		return false
	}
	return true
}

func sameDay(a, b string) bool {
	ta, errA := time.Parse(DateLayout, a)
	tb, errB := time.Parse(DateLayout, b)
	if errA != nil || errB != nil {
		return a == b
	}
	return ta.Equal(tb)
}

// ============================================================
// Whole ledger state
// ============================================================

// State is the full persisted ledger. Derived totals are not part of it;
// they are always recomputed from OpeningBalance and SalesEntries.
type State struct {
	OpeningBalance OpeningBalance
	SalesEntries   []SalesEntry
	Employees      []Employee
	Transactions   []EmployeeTransaction // newest first
}

// Totals derives SalesByType and RemainingBalance for s.
func (s State) Totals() Totals {
	return CalculateTotals(s.OpeningBalance, s.SalesEntries)
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	return State{
		OpeningBalance: s.OpeningBalance,
		SalesEntries:   append([]SalesEntry(nil), s.SalesEntries...),
		Employees:      append([]Employee(nil), s.Employees...),
		Transactions:   append([]EmployeeTransaction(nil), s.Transactions...),
	}
}

// Equal compares two states by value, preserving collection order.
func (s State) Equal(o State) bool {
	if !s.OpeningBalance.Equal(o.OpeningBalance) ||
		len(s.SalesEntries) != len(o.SalesEntries) ||
		len(s.Employees) != len(o.Employees) ||
		len(s.Transactions) != len(o.Transactions) {
		return false
	}
	for i := range s.SalesEntries {
		if !s.SalesEntries[i].Equal(o.SalesEntries[i]) {
			return false
		}
	}
	for i := range s.Employees {
		if s.Employees[i] != o.Employees[i] {
			return false
		}
	}
	for i := range s.Transactions {
		if !s.Transactions[i].Equal(o.Transactions[i]) {
			return false
		}
	}
	return true
}

// ============================================================
// Read models
// ============================================================

// AccountDetails is the per-distributor view: the entry of the day and the
// transaction history split by channel.
type AccountDetails struct {
	Employee     Employee
	SalesEntry   SalesEntry
	Transactions map[Channel][]EmployeeTransaction
	Totals       map[Channel]decimal.Decimal
}

// DailySummary is the dashboard view of the current day.
type DailySummary struct {
	OpeningBalance    OpeningBalance
	SalesByType       SalesByType
	RemainingBalances RemainingBalance
	EmployeeCount     int
	TransactionCount  int
	OverdrawnChannels []Channel
}
