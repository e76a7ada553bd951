// Package interchange converts the ledger to and from its wire forms: the
// JSON record kept in the durable slot (also used for snapshot export and
// import) and tabular CSV/XLSX exports.
package interchange

import (
	"github.com/boddenberg/daily-balances-go/internal/domain"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as bare JSON numbers, written from the exact decimal.
	decimal.MarshalJSONWithoutQuotes = true
}

// Record is the persisted and exported JSON shape of the ledger. Numeric
// fields are pointers so a missing field can be told apart from zero.
type Record struct {
	OpeningBalance    *OpeningBalanceRecord   `json:"openingBalance" validate:"required"`
	SalesEntries      []SalesEntryRecord      `json:"salesEntries" validate:"required,dive"`
	SalesByType       *SalesByTypeRecord      `json:"salesByType,omitempty"`
	RemainingBalances *RemainingBalanceRecord `json:"remainingBalances" validate:"required"`
	Employees         []EmployeeRecord        `json:"employees" validate:"required,dive"`
	Transactions      []TransactionRecord     `json:"transactions" validate:"required,dive"`
}

type OpeningBalanceRecord struct {
	ChannelA *decimal.Decimal `json:"channelA" validate:"required"`
	ChannelB *decimal.Decimal `json:"channelB" validate:"required"`
}

type RemainingBalanceRecord struct {
	ChannelA *decimal.Decimal `json:"channelA" validate:"required"`
	ChannelB *decimal.Decimal `json:"channelB" validate:"required"`
}

type SalesByTypeRecord struct {
	ChannelA *decimal.Decimal `json:"channelA" validate:"required"`
	ChannelB *decimal.Decimal `json:"channelB" validate:"required"`
	ChannelC *decimal.Decimal `json:"channelC" validate:"required"`
}

type SalesEntryRecord struct {
	EmployeeID string           `json:"employeeId" validate:"required"`
	ChannelA   *decimal.Decimal `json:"channelA" validate:"required"`
	ChannelB   *decimal.Decimal `json:"channelB" validate:"required"`
	ChannelC   *decimal.Decimal `json:"channelC" validate:"required"`
}

type EmployeeRecord struct {
	ID   string `json:"id" validate:"required,notblank"`
	Name string `json:"name" validate:"required,notblank"`
}

type TransactionRecord struct {
	ID          string           `json:"id" validate:"required"`
	EmployeeID  string           `json:"employeeId" validate:"required"`
	Type        string           `json:"type" validate:"required,oneof=channelA channelB channelC"`
	Amount      *decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Date        string           `json:"date" validate:"required,datetime=2006-01-02"`
	Description string           `json:"description"`
}

// Num returns a pointer to a copy of d for the record's optional fields.
func Num(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func dec(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// ============================================================
// Domain -> wire
// ============================================================

func FromOpeningBalance(b domain.OpeningBalance) *OpeningBalanceRecord {
	return &OpeningBalanceRecord{ChannelA: Num(b.ChannelA), ChannelB: Num(b.ChannelB)}
}

func FromRemainingBalance(b domain.RemainingBalance) *RemainingBalanceRecord {
	return &RemainingBalanceRecord{ChannelA: Num(b.ChannelA), ChannelB: Num(b.ChannelB)}
}

func FromSalesByType(s domain.SalesByType) *SalesByTypeRecord {
	return &SalesByTypeRecord{ChannelA: Num(s.ChannelA), ChannelB: Num(s.ChannelB), ChannelC: Num(s.ChannelC)}
}

func FromSalesEntry(e domain.SalesEntry) SalesEntryRecord {
	return SalesEntryRecord{
		EmployeeID: e.EmployeeID,
		ChannelA:   Num(e.ChannelA),
		ChannelB:   Num(e.ChannelB),
		ChannelC:   Num(e.ChannelC),
	}
}

func FromEmployee(e domain.Employee) EmployeeRecord {
	return EmployeeRecord{ID: e.ID, Name: e.Name}
}

func FromTransaction(tx domain.EmployeeTransaction) TransactionRecord {
	return TransactionRecord{
		ID:          tx.ID,
		EmployeeID:  tx.EmployeeID,
		Type:        string(tx.Type),
		Amount:      Num(tx.Amount),
		Date:        tx.Date,
		Description: tx.Description,
	}
}

// FromState builds the full record, including the derived totals as a
// non-authoritative cache.
func FromState(st domain.State) Record {
	totals := st.Totals()
	rec := Record{
		OpeningBalance:    FromOpeningBalance(st.OpeningBalance),
		SalesEntries:      make([]SalesEntryRecord, 0, len(st.SalesEntries)),
		SalesByType:       FromSalesByType(totals.SalesByType),
		RemainingBalances: FromRemainingBalance(totals.RemainingBalances),
		Employees:         make([]EmployeeRecord, 0, len(st.Employees)),
		Transactions:      make([]TransactionRecord, 0, len(st.Transactions)),
	}
	for _, e := range st.SalesEntries {
		rec.SalesEntries = append(rec.SalesEntries, FromSalesEntry(e))
	}
	for _, e := range st.Employees {
		rec.Employees = append(rec.Employees, FromEmployee(e))
	}
	for _, tx := range st.Transactions {
		rec.Transactions = append(rec.Transactions, FromTransaction(tx))
	}
	return rec
}

// ============================================================
// Wire -> domain
// ============================================================

func (r *OpeningBalanceRecord) toDomain() domain.OpeningBalance {
	return domain.OpeningBalance{ChannelA: dec(r.ChannelA), ChannelB: dec(r.ChannelB)}
}

func (r SalesEntryRecord) toDomain() domain.SalesEntry {
	return domain.SalesEntry{
		EmployeeID: r.EmployeeID,
		ChannelA:   dec(r.ChannelA),
		ChannelB:   dec(r.ChannelB),
		ChannelC:   dec(r.ChannelC),
	}
}

func (r TransactionRecord) toDomain() domain.EmployeeTransaction {
	return domain.EmployeeTransaction{
		ID:          r.ID,
		EmployeeID:  r.EmployeeID,
		Type:        domain.Channel(r.Type),
		Amount:      dec(r.Amount),
		Date:        r.Date,
		Description: r.Description,
	}
}
