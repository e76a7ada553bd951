package service_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/daily-balances-go/internal/domain"
	"github.com/boddenberg/daily-balances-go/internal/infra/cache"
	"github.com/boddenberg/daily-balances-go/internal/infra/observability"
	"github.com/boddenberg/daily-balances-go/internal/interchange"
	"github.com/boddenberg/daily-balances-go/internal/ledger"
	"github.com/boddenberg/daily-balances-go/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// --- Fakes ---

// flakySlot is an in-memory slot whose writes can be made to fail.
type flakySlot struct {
	mu         sync.Mutex
	data       []byte
	writes     int
	failWrites bool
	readErr    error
}

func (f *flakySlot) Read(_ context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	if f.data == nil {
		return nil, domain.ErrNoState
	}
	return append([]byte(nil), f.data...), nil
}

func (f *flakySlot) Write(_ context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.failWrites {
		return errors.New("disk full")
	}
	f.data = append([]byte(nil), data...)
	return nil
}

func (f *flakySlot) setFailWrites(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = v
}

func (f *flakySlot) saved(t *testing.T) domain.State {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := interchange.Decode(f.data)
	if err != nil {
		t.Fatalf("slot holds an undecodable record: %v", err)
	}
	return st
}

// --- Helpers ---

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func sequentialIDs() ledger.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

var fixedNow = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }

type fixture struct {
	svc     *service.BalancesService
	slot    *flakySlot
	metrics *observability.Metrics
}

func newFixture(t *testing.T, opts ...service.Option) *fixture {
	t.Helper()
	fs := &flakySlot{}
	metrics := observability.NewMetrics()
	opts = append([]service.Option{service.WithClock(fixedNow)}, opts...)
	svc := service.NewBalancesService(ledger.New(ledger.WithIDGenerator(sequentialIDs())), fs, metrics, zap.NewNop(), opts...)
	if err := svc.Load(context.Background(), false); err != nil {
		t.Fatalf("load: %v", err)
	}
	return &fixture{svc: svc, slot: fs, metrics: metrics}
}

func (f *fixture) opening(t *testing.T, a, b string) {
	t.Helper()
	if _, err := f.svc.SetOpeningBalance(context.Background(), domain.OpeningBalance{ChannelA: d(a), ChannelB: d(b)}); err != nil {
		t.Fatalf("set opening: %v", err)
	}
}

func (f *fixture) employee(t *testing.T, name string) domain.Employee {
	t.Helper()
	emp, err := f.svc.AddEmployee(context.Background(), name)
	if err != nil {
		t.Fatalf("add employee: %v", err)
	}
	return emp
}

func (f *fixture) sales(t *testing.T, id string, c domain.Channel, v string) {
	t.Helper()
	if _, err := f.svc.UpdateSalesEntry(context.Background(), id, c, d(v)); err != nil {
		t.Fatalf("update %s/%s=%s: %v", id, c, v, err)
	}
}

// checkInvariants asserts the ledger relations that must hold after every
// completed mutation.
func checkInvariants(t *testing.T, st domain.State) {
	t.Helper()
	totals := st.Totals()

	if len(st.SalesEntries) != len(st.Employees) {
		t.Fatalf("expected one entry per employee, got %d entries for %d employees", len(st.SalesEntries), len(st.Employees))
	}
	for _, c := range domain.Channels {
		sum := decimal.Zero
		for _, e := range st.SalesEntries {
			sum = sum.Add(e.Amount(c))
		}
		if !totals.SalesByType.Amount(c).Equal(sum) {
			t.Errorf("%s: salesByType %s != sum of entries %s", c, totals.SalesByType.Amount(c), sum)
		}
	}
	if !totals.RemainingBalances.ChannelA.Equal(st.OpeningBalance.ChannelA.Sub(totals.SalesByType.ChannelA)) {
		t.Errorf("channelA remaining %s is not opening minus sales", totals.RemainingBalances.ChannelA)
	}
	if !totals.RemainingBalances.ChannelB.Equal(st.OpeningBalance.ChannelB.Sub(totals.SalesByType.ChannelB)) {
		t.Errorf("channelB remaining %s is not opening minus sales", totals.RemainingBalances.ChannelB)
	}
}

// --- Accounting ---

func TestUpdateSalesEntry_KeepsTotalsConsistent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.opening(t, "1000", "500")
	a := f.employee(t, "Ana")
	b := f.employee(t, "Bruno")

	steps := []struct {
		id    string
		c     domain.Channel
		value string
	}{
		{a.ID, domain.ChannelA, "400"},
		{b.ID, domain.ChannelA, "600"},
		{b.ID, domain.ChannelA, "700"}, // rejected: 1100 > 1000
		{a.ID, domain.ChannelA, "100"},
		{b.ID, domain.ChannelA, "900"},
		{a.ID, domain.ChannelB, "500"},
		{b.ID, domain.ChannelB, "0.01"}, // rejected
		{a.ID, domain.ChannelC, "123456789"},
		{b.ID, domain.ChannelC, "0.5"},
	}
	for _, s := range steps {
		_, err := f.svc.UpdateSalesEntry(ctx, s.id, s.c, d(s.value))
		var overdraft *domain.ErrOverdraft
		if err != nil && !errors.As(err, &overdraft) {
			t.Fatalf("unexpected error: %v", err)
		}

		st := f.svc.State()
		checkInvariants(t, st)
		totals := st.Totals()
		if totals.SalesByType.ChannelA.GreaterThan(st.OpeningBalance.ChannelA) ||
			totals.SalesByType.ChannelB.GreaterThan(st.OpeningBalance.ChannelB) {
			t.Fatalf("credit ceiling exceeded after accepted update: %+v", totals.SalesByType)
		}
	}

	totals := f.svc.Balances(ctx).Totals
	if !totals.SalesByType.ChannelA.Equal(d("1000")) {
		t.Errorf("expected channelA sales 1000, got %s", totals.SalesByType.ChannelA)
	}
	if !totals.RemainingBalances.ChannelB.Equal(d("0")) {
		t.Errorf("expected channelB remaining 0, got %s", totals.RemainingBalances.ChannelB)
	}
}

func TestUpdateSalesEntry_OverdraftLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	f.opening(t, "1000", "1000")
	a := f.employee(t, "Ana")
	x := f.employee(t, "Xavier")
	f.sales(t, a.ID, domain.ChannelA, "900")

	before := f.svc.State()
	writes := f.slot.writes

	_, err := f.svc.UpdateSalesEntry(context.Background(), x.ID, domain.ChannelA, d("200"))

	var overdraft *domain.ErrOverdraft
	if !errors.As(err, &overdraft) {
		t.Fatalf("expected ErrOverdraft, got %v", err)
	}
	if overdraft.Channel != domain.ChannelA || !overdraft.Requested.Equal(d("1100")) || !overdraft.Opening.Equal(d("1000")) {
		t.Errorf("unexpected overdraft detail: %+v", overdraft)
	}
	after := f.svc.State()
	if !before.Equal(after) {
		t.Error("rejected update changed the ledger")
	}
	if got := after.Totals().SalesByType.ChannelA; !got.Equal(d("900")) {
		t.Errorf("expected channelA sales to stay 900, got %s", got)
	}
	if f.slot.writes != writes {
		t.Error("rejected update should not be saved")
	}
	if got := f.metrics.Rejections("overdraft", domain.ChannelA); got != 1 {
		t.Errorf("expected 1 overdraft rejection, got %v", got)
	}
}

func TestUpdateSalesEntry_ReplacesOwnContribution(t *testing.T) {
	f := newFixture(t)
	f.opening(t, "1000", "0")
	a := f.employee(t, "Ana")
	f.sales(t, a.ID, domain.ChannelA, "900")

	// 900 is replaced, not added to.
	entry, err := f.svc.UpdateSalesEntry(context.Background(), a.ID, domain.ChannelA, d("1000"))
	if err != nil {
		t.Fatalf("expected update within ceiling to pass, got %v", err)
	}
	if !entry.ChannelA.Equal(d("1000")) {
		t.Errorf("expected 1000, got %s", entry.ChannelA)
	}
}

func TestUpdateSalesEntry_Validation(t *testing.T) {
	f := newFixture(t)
	f.opening(t, "100", "100")
	a := f.employee(t, "Ana")
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		channel domain.Channel
		value   string
		check   func(error) bool
	}{
		{"negative cash", a.ID, domain.ChannelC, "-1", isValidation},
		{"negative credit", a.ID, domain.ChannelA, "-5", isValidation},
		{"unknown channel", a.ID, domain.Channel("channelD"), "1", isValidation},
		{"unknown employee", "ghost", domain.ChannelA, "1", isNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.svc.State()
			_, err := f.svc.UpdateSalesEntry(ctx, tt.id, tt.channel, d(tt.value))
			if !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			if !before.Equal(f.svc.State()) {
				t.Error("rejected update changed the ledger")
			}
		})
	}
}

func TestUpdateSalesEntry_CashHasNoCeiling(t *testing.T) {
	f := newFixture(t)
	a := f.employee(t, "Ana")

	f.sales(t, a.ID, domain.ChannelC, "99999999")

	if got := f.svc.Balances(context.Background()).Totals.SalesByType.ChannelC; !got.Equal(d("99999999")) {
		t.Errorf("expected cash total 99999999, got %s", got)
	}
}

func TestSetOpeningBalance_BelowSalesSurfacesNegativeRemaining(t *testing.T) {
	f := newFixture(t)
	f.opening(t, "1000", "1000")
	a := f.employee(t, "Ana")
	f.sales(t, a.ID, domain.ChannelA, "800")

	got, err := f.svc.SetOpeningBalance(context.Background(), domain.OpeningBalance{ChannelA: d("500"), ChannelB: d("1000")})
	if err != nil {
		t.Fatalf("expected lower ceiling to be accepted, got %v", err)
	}
	if !got.Totals.RemainingBalances.ChannelA.Equal(d("-300")) {
		t.Errorf("expected remaining -300, got %s", got.Totals.RemainingBalances.ChannelA)
	}
	if !got.Totals.SalesByType.ChannelA.Equal(d("800")) {
		t.Errorf("sales must not change, got %s", got.Totals.SalesByType.ChannelA)
	}

	summary := f.svc.Summary(context.Background())
	if len(summary.OverdrawnChannels) != 1 || summary.OverdrawnChannels[0] != domain.ChannelA {
		t.Errorf("expected channelA overdrawn, got %v", summary.OverdrawnChannels)
	}
}

func TestSetOpeningBalance_RejectsNegative(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SetOpeningBalance(context.Background(), domain.OpeningBalance{ChannelA: d("10"), ChannelB: d("-1")})
	if !isValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSetNextDayOpeningBalance(t *testing.T) {
	f := newFixture(t)
	f.opening(t, "100000", "100000")
	a := f.employee(t, "Ana")
	b := f.employee(t, "Bruno")
	f.sales(t, a.ID, domain.ChannelA, "30000")
	f.sales(t, b.ID, domain.ChannelB, "20000")
	f.sales(t, b.ID, domain.ChannelC, "777")

	got, err := f.svc.SetNextDayOpeningBalance(context.Background(), false)
	if err != nil {
		t.Fatalf("rollover: %v", err)
	}

	if !got.OpeningBalance.ChannelA.Equal(d("70000")) || !got.OpeningBalance.ChannelB.Equal(d("80000")) {
		t.Errorf("expected opening 70000/80000, got %s/%s", got.OpeningBalance.ChannelA, got.OpeningBalance.ChannelB)
	}
	// Entries are kept, so the remaining balance is computed against them again.
	st := f.svc.State()
	if !st.SalesEntries[0].ChannelA.Equal(d("30000")) {
		t.Errorf("sales entries should be kept, got %s", st.SalesEntries[0].ChannelA)
	}
	if !got.Totals.RemainingBalances.ChannelA.Equal(d("40000")) {
		t.Errorf("expected remaining 40000, got %s", got.Totals.RemainingBalances.ChannelA)
	}
	checkInvariants(t, st)
	if !f.slot.saved(t).OpeningBalance.Equal(got.OpeningBalance) {
		t.Error("rollover should be saved")
	}
}

func TestSetNextDayOpeningBalance_ResetSales(t *testing.T) {
	f := newFixture(t)
	f.opening(t, "100000", "100000")
	a := f.employee(t, "Ana")
	f.sales(t, a.ID, domain.ChannelA, "30000")
	f.sales(t, a.ID, domain.ChannelC, "5")

	got, err := f.svc.SetNextDayOpeningBalance(context.Background(), true)
	if err != nil {
		t.Fatalf("rollover: %v", err)
	}

	if !got.OpeningBalance.ChannelA.Equal(d("70000")) {
		t.Errorf("expected opening 70000, got %s", got.OpeningBalance.ChannelA)
	}
	if !got.Totals.RemainingBalances.ChannelA.Equal(d("70000")) {
		t.Errorf("expected remaining to equal new opening, got %s", got.Totals.RemainingBalances.ChannelA)
	}
	if !f.svc.State().SalesEntries[0].Equal(domain.NewSalesEntry(a.ID)) {
		t.Error("expected entries to be zeroed")
	}
}

func TestCalculateTotals_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.opening(t, "500", "500")
	a := f.employee(t, "Ana")
	f.sales(t, a.ID, domain.ChannelB, "123.45")

	first := f.svc.CalculateTotals(context.Background())
	second := f.svc.CalculateTotals(context.Background())
	if !first.Equal(second) {
		t.Errorf("totals differ between calls: %+v vs %+v", first, second)
	}
}

// --- Transactions ---

func TestRecordTransaction_UpdatesSalesEntry(t *testing.T) {
	f := newFixture(t)
	f.opening(t, "1000", "1000")
	a := f.employee(t, "Ana")
	f.sales(t, a.ID, domain.ChannelC, "10")
	ctx := context.Background()

	tx, replayed, err := f.svc.RecordTransaction(ctx, service.RecordTransactionInput{
		EmployeeID:  a.ID,
		Type:        domain.ChannelA,
		Amount:      d("500"),
		Description: "  morning top-up ",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if replayed {
		t.Error("first submission must not be a replay")
	}
	if tx.ID == "" || tx.Date != "2024-03-15" || tx.Description != "morning top-up" {
		t.Errorf("unexpected transaction: %+v", tx)
	}

	st := f.svc.State()
	if !st.SalesEntries[0].ChannelA.Equal(d("500")) {
		t.Errorf("expected channelA entry 500, got %s", st.SalesEntries[0].ChannelA)
	}
	if len(st.Transactions) != 1 || !st.Transactions[0].Equal(tx) {
		t.Fatalf("expected exactly the new transaction, got %+v", st.Transactions)
	}

	// Cash adds to the existing value.
	if _, _, err := f.svc.RecordTransaction(ctx, service.RecordTransactionInput{EmployeeID: a.ID, Type: domain.ChannelC, Amount: d("15")}); err != nil {
		t.Fatalf("record cash: %v", err)
	}
	st = f.svc.State()
	if !st.SalesEntries[0].ChannelC.Equal(d("25")) {
		t.Errorf("expected cash 25, got %s", st.SalesEntries[0].ChannelC)
	}
	if st.Transactions[0].Type != domain.ChannelC {
		t.Error("newest transaction must come first")
	}
	checkInvariants(t, st)
}

func TestRecordTransaction_OverdraftIsAtomic(t *testing.T) {
	f := newFixture(t)
	f.opening(t, "1000", "1000")
	a := f.employee(t, "Ana")
	f.sales(t, a.ID, domain.ChannelA, "600")

	before := f.svc.State()
	_, _, err := f.svc.RecordTransaction(context.Background(), service.RecordTransactionInput{
		EmployeeID: a.ID, Type: domain.ChannelA, Amount: d("500"),
	})

	var overdraft *domain.ErrOverdraft
	if !errors.As(err, &overdraft) {
		t.Fatalf("expected ErrOverdraft, got %v", err)
	}
	if !before.Equal(f.svc.State()) {
		t.Error("rejected transaction changed the ledger")
	}
}

func TestRecordTransaction_Validation(t *testing.T) {
	f := newFixture(t)
	a := f.employee(t, "Ana")

	tests := []struct {
		name string
		in   service.RecordTransactionInput
	}{
		{"zero amount", service.RecordTransactionInput{EmployeeID: a.ID, Type: domain.ChannelC, Amount: d("0")}},
		{"negative amount", service.RecordTransactionInput{EmployeeID: a.ID, Type: domain.ChannelC, Amount: d("-3")}},
		{"unknown employee", service.RecordTransactionInput{EmployeeID: "ghost", Type: domain.ChannelC, Amount: d("3")}},
		{"missing employee", service.RecordTransactionInput{Type: domain.ChannelC, Amount: d("3")}},
		{"bad channel", service.RecordTransactionInput{EmployeeID: a.ID, Type: "wire", Amount: d("3")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.svc.RecordTransaction(context.Background(), tt.in)
			if !isValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if n := len(f.svc.State().Transactions); n != 0 {
				t.Errorf("expected no transactions, got %d", n)
			}
		})
	}
}

func TestRecordTransaction_IdempotencyKeyReplays(t *testing.T) {
	idem := cache.New[domain.EmployeeTransaction](time.Minute)
	defer idem.Close()
	f := newFixture(t, service.WithIdempotencyCache(idem))
	a := f.employee(t, "Ana")
	in := service.RecordTransactionInput{EmployeeID: a.ID, Type: domain.ChannelC, Amount: d("40"), IdempotencyKey: "key-1"}

	first, _, err := f.svc.RecordTransaction(context.Background(), in)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	second, replayed, err := f.svc.RecordTransaction(context.Background(), in)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}

	if !replayed || second.ID != first.ID {
		t.Errorf("expected replay of %s, got %s (replayed=%v)", first.ID, second.ID, replayed)
	}
	st := f.svc.State()
	if len(st.Transactions) != 1 || !st.SalesEntries[0].ChannelC.Equal(d("40")) {
		t.Errorf("replay must not apply twice: %d transactions, cash %s", len(st.Transactions), st.SalesEntries[0].ChannelC)
	}
}

func TestRecordTransaction_ConcurrentSubmissionsRespectCeiling(t *testing.T) {
	f := newFixture(t)
	f.opening(t, "1000", "0")
	a := f.employee(t, "Ana")
	b := f.employee(t, "Bruno")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := a.ID
			if i%2 == 0 {
				id = b.ID
			}
			f.svc.RecordTransaction(context.Background(), service.RecordTransactionInput{EmployeeID: id, Type: domain.ChannelA, Amount: d("30")})
		}(i)
	}
	wg.Wait()

	st := f.svc.State()
	checkInvariants(t, st)
	// 33 * 30 = 990 fits, a 34th would not.
	if len(st.Transactions) != 33 {
		t.Errorf("expected 33 accepted transactions, got %d", len(st.Transactions))
	}
	if got := st.Totals().SalesByType.ChannelA; !got.Equal(d("990")) {
		t.Errorf("expected channelA sales 990, got %s", got)
	}
}

func TestListTransactions_FilterAndPaginate(t *testing.T) {
	f := newFixture(t)
	a := f.employee(t, "Ana")
	b := f.employee(t, "Bruno")
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		f.svc.RecordTransaction(ctx, service.RecordTransactionInput{EmployeeID: a.ID, Type: domain.ChannelC, Amount: d("1")})
	}
	f.svc.RecordTransaction(ctx, service.RecordTransactionInput{EmployeeID: b.ID, Type: domain.ChannelC, Amount: d("2")})

	page, total := f.svc.ListTransactions(ctx, domain.TransactionFilter{EmployeeID: a.ID}, 2, 2)
	if total != 5 || len(page) != 2 {
		t.Fatalf("expected 2 of 5, got %d of %d", len(page), total)
	}

	page, total = f.svc.ListTransactions(ctx, domain.TransactionFilter{}, 4, 2)
	if total != 6 || len(page) != 0 {
		t.Errorf("expected empty page past the end, got %d of %d", len(page), total)
	}

	page, _ = f.svc.ListTransactions(ctx, domain.TransactionFilter{Date: "2024-03-15", Types: []domain.Channel{domain.ChannelC}}, 1, 20)
	if len(page) != 6 || page[0].EmployeeID != b.ID {
		t.Errorf("expected all 6 newest first, got %d", len(page))
	}

	page, total = f.svc.ListTransactions(ctx, domain.TransactionFilter{Types: []domain.Channel{domain.ChannelA}}, 1, 20)
	if total != 0 || len(page) != 0 {
		t.Errorf("expected no channelA transactions, got %d", total)
	}
}

func TestListTransactions_HugePageIsEmpty(t *testing.T) {
	f := newFixture(t)
	a := f.employee(t, "Ana")
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		f.svc.RecordTransaction(ctx, service.RecordTransactionInput{EmployeeID: a.ID, Type: domain.ChannelC, Amount: d("1")})
	}

	page, total := f.svc.ListTransactions(ctx, domain.TransactionFilter{}, math.MaxInt, 20)
	if total != 3 || len(page) != 0 {
		t.Errorf("expected empty page of 3, got %d of %d", len(page), total)
	}

	page, total = f.svc.ListTransactions(ctx, domain.TransactionFilter{}, 1, math.MaxInt)
	if total != 3 || len(page) != 3 {
		t.Errorf("expected all 3 on a huge page size, got %d of %d", len(page), total)
	}

	page, _ = f.svc.ListTransactions(ctx, domain.TransactionFilter{}, 2, 2)
	if len(page) != 1 {
		t.Errorf("expected 1 on the last partial page, got %d", len(page))
	}
}

// --- Employees ---

func TestAddEmployee(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"", "   ", "\t\n"} {
		if _, err := f.svc.AddEmployee(context.Background(), name); !isValidation(err) {
			t.Errorf("AddEmployee(%q): expected validation error, got %v", name, err)
		}
	}

	emp, err := f.svc.AddEmployee(context.Background(), "  Name ")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if emp.ID == "" || emp.Name != "Name" {
		t.Errorf("unexpected employee %+v", emp)
	}
	other := f.employee(t, "Other")
	if other.ID == emp.ID {
		t.Error("employee ids must be unique")
	}

	st := f.svc.State()
	if !st.SalesEntries[0].Equal(domain.NewSalesEntry(emp.ID)) {
		t.Errorf("expected zero entry, got %+v", st.SalesEntries[0])
	}
	checkInvariants(t, st)
}

func TestAccountDetails(t *testing.T) {
	f := newFixture(t)
	f.opening(t, "1000", "1000")
	a := f.employee(t, "Ana")
	b := f.employee(t, "Bruno")
	ctx := context.Background()
	f.svc.RecordTransaction(ctx, service.RecordTransactionInput{EmployeeID: a.ID, Type: domain.ChannelA, Amount: d("10")})
	f.svc.RecordTransaction(ctx, service.RecordTransactionInput{EmployeeID: a.ID, Type: domain.ChannelA, Amount: d("15")})
	f.svc.RecordTransaction(ctx, service.RecordTransactionInput{EmployeeID: a.ID, Type: domain.ChannelC, Amount: d("7")})
	f.svc.RecordTransaction(ctx, service.RecordTransactionInput{EmployeeID: b.ID, Type: domain.ChannelB, Amount: d("99")})

	details, err := f.svc.AccountDetails(ctx, a.ID)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if len(details.Transactions[domain.ChannelA]) != 2 || len(details.Transactions[domain.ChannelB]) != 0 {
		t.Errorf("unexpected grouping: %+v", details.Transactions)
	}
	if !details.Totals[domain.ChannelA].Equal(d("25")) || !details.Totals[domain.ChannelC].Equal(d("7")) {
		t.Errorf("unexpected totals: %+v", details.Totals)
	}
	if !details.SalesEntry.ChannelA.Equal(d("25")) {
		t.Errorf("expected entry 25, got %s", details.SalesEntry.ChannelA)
	}

	if _, err := f.svc.AccountDetails(ctx, "ghost"); !isNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	f.opening(t, "100", "100")
	a := f.employee(t, "Ana")
	f.sales(t, a.ID, domain.ChannelC, "50")
	f.svc.RecordTransaction(context.Background(), service.RecordTransactionInput{EmployeeID: a.ID, Type: domain.ChannelB, Amount: d("40")})

	s := f.svc.Summary(context.Background())
	if s.EmployeeCount != 1 || s.TransactionCount != 1 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if !s.SalesByType.ChannelC.Equal(d("50")) || !s.RemainingBalances.ChannelB.Equal(d("60")) {
		t.Errorf("unexpected totals: %+v", s)
	}
	if len(s.OverdrawnChannels) != 0 {
		t.Errorf("expected nothing overdrawn, got %v", s.OverdrawnChannels)
	}
}

func isValidation(err error) bool {
	var v *domain.ErrValidation
	return errors.As(err, &v)
}

func isNotFound(err error) bool {
	var nf *domain.ErrNotFound
	return errors.As(err, &nf)
}
