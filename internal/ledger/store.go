// Package ledger holds the canonical in-memory state of the day: employees,
// the opening balance, one sales entry per employee and the transaction
// history. It performs no validation; the service layer owns every rule and
// serialises access, so Store itself is not safe for concurrent use.
package ledger

import (
	"github.com/boddenberg/daily-balances-go/internal/domain"

	"github.com/google/uuid"
)

// IDGenerator returns a fresh opaque identifier.
type IDGenerator func() string

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) { s.newID = gen }
}

// Store is the Ledger Store.
type Store struct {
	opening      domain.OpeningBalance
	employees    []domain.Employee
	entries      []domain.SalesEntry
	transactions []domain.EmployeeTransaction

	totals domain.Totals
	stale  bool

	newID IDGenerator
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		newID: func() string { return uuid.New().String() },
		stale: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ============================================================
// Opening balance
// ============================================================

func (s *Store) OpeningBalance() domain.OpeningBalance {
	return s.opening
}

func (s *Store) SetOpeningBalance(b domain.OpeningBalance) {
	s.opening = b
	s.stale = true
}

// ============================================================
// Employees
// ============================================================

// Employees returns a copy of the employee list in insertion order.
func (s *Store) Employees() []domain.Employee {
	return append([]domain.Employee(nil), s.employees...)
}

// Employee looks up a single employee.
func (s *Store) Employee(id string) (domain.Employee, bool) {
	for _, e := range s.employees {
		if e.ID == id {
			return e, true
		}
	}
	return domain.Employee{}, false
}

// AddEmployee appends an employee under a fresh ID together with its
// zero-valued sales entry.
func (s *Store) AddEmployee(name string) domain.Employee {
	emp := domain.Employee{ID: s.freshID(s.employeeIDTaken), Name: name}
	s.employees = append(s.employees, emp)
	s.entries = append(s.entries, domain.NewSalesEntry(emp.ID))
	s.stale = true
	return emp
}

func (s *Store) employeeIDTaken(id string) bool {
	_, ok := s.Employee(id)
	return ok
}

// ============================================================
// Sales entries
// ============================================================

// SalesEntries returns a copy of all entries.
func (s *Store) SalesEntries() []domain.SalesEntry {
	return append([]domain.SalesEntry(nil), s.entries...)
}

// SalesEntry returns the entry of one employee.
func (s *Store) SalesEntry(employeeID string) (domain.SalesEntry, bool) {
	for _, e := range s.entries {
		if e.EmployeeID == employeeID {
			return e, true
		}
	}
	return domain.SalesEntry{}, false
}

// PutSalesEntry replaces the entry with the same EmployeeID. It reports
// false when no such entry exists.
func (s *Store) PutSalesEntry(entry domain.SalesEntry) bool {
	for i, e := range s.entries {
		if e.EmployeeID == entry.EmployeeID {
			s.entries[i] = entry
			s.stale = true
			return true
		}
	}
	return false
}

// ReplaceSalesEntries swaps the whole collection.
func (s *Store) ReplaceSalesEntries(entries []domain.SalesEntry) {
	s.entries = append([]domain.SalesEntry(nil), entries...)
	s.stale = true
}

// ============================================================
// Transactions
// ============================================================

// Transactions returns a copy of the history, newest first.
func (s *Store) Transactions() []domain.EmployeeTransaction {
	return append([]domain.EmployeeTransaction(nil), s.transactions...)
}

// PrependTransaction stores tx as the newest record.
func (s *Store) PrependTransaction(tx domain.EmployeeTransaction) {
	s.transactions = append([]domain.EmployeeTransaction{tx}, s.transactions...)
}

// NewTransactionID returns an ID not used by any stored transaction.
func (s *Store) NewTransactionID() string {
	return s.freshID(func(id string) bool {
		for _, tx := range s.transactions {
			if tx.ID == id {
				return true
			}
		}
		return false
	})
}

// ============================================================
// Derived totals
// ============================================================

// Totals returns the cached derived values, recomputing them if any input
// changed since the last call.
func (s *Store) Totals() domain.Totals {
	if s.stale {
		s.Recalculate()
	}
	return s.totals
}

// Recalculate rebuilds the cache from the full entry collection.
func (s *Store) Recalculate() domain.Totals {
	s.totals = domain.CalculateTotals(s.opening, s.entries)
	s.stale = false
	return s.totals
}

// ============================================================
// Whole state
// ============================================================

// Snapshot returns a deep copy of the persisted state.
func (s *Store) Snapshot() domain.State {
	return domain.State{
		OpeningBalance: s.opening,
		SalesEntries:   s.SalesEntries(),
		Employees:      s.Employees(),
		Transactions:   s.Transactions(),
	}
}

// Restore replaces everything with st.
func (s *Store) Restore(st domain.State) {
	c := st.Clone()
	s.opening = c.OpeningBalance
	s.employees = c.Employees
	s.entries = c.SalesEntries
	s.transactions = c.Transactions
	s.Recalculate()
}

func (s *Store) freshID(taken func(string) bool) string {
	for {
		id := s.newID()
		if id != "" && !taken(id) {
			return id
		}
	}
}
