package domain_test

import (
	"testing"

	"github.com/boddenberg/daily-balances-go/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestParseChannel(t *testing.T) {
	for _, c := range domain.Channels {
		got, err := domain.ParseChannel(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := domain.ParseChannel("bitcoin")
	var verr *domain.ErrValidation
	assert.ErrorAs(t, err, &verr)
}

func TestChannel_IsCredit(t *testing.T) {
	assert.True(t, domain.ChannelA.IsCredit())
	assert.True(t, domain.ChannelB.IsCredit())
	assert.False(t, domain.ChannelC.IsCredit())
	assert.False(t, domain.Channel("x").Valid())
}

func TestCalculateTotals(t *testing.T) {
	opening := domain.OpeningBalance{ChannelA: d(100000), ChannelB: d(100000)}
	entries := []domain.SalesEntry{
		{EmployeeID: "1", ChannelA: d(10000), ChannelB: d(5000), ChannelC: d(700)},
		{EmployeeID: "2", ChannelA: d(20000), ChannelB: d(15000), ChannelC: d(300)},
	}

	totals := domain.CalculateTotals(opening, entries)

	assert.True(t, totals.SalesByType.ChannelA.Equal(d(30000)))
	assert.True(t, totals.SalesByType.ChannelB.Equal(d(20000)))
	assert.True(t, totals.SalesByType.ChannelC.Equal(d(1000)))
	assert.True(t, totals.RemainingBalances.ChannelA.Equal(d(70000)))
	assert.True(t, totals.RemainingBalances.ChannelB.Equal(d(80000)))

	t.Run("idempotent", func(t *testing.T) {
		assert.True(t, totals.Equal(domain.CalculateTotals(opening, entries)))
	})

	t.Run("no entries", func(t *testing.T) {
		empty := domain.CalculateTotals(opening, nil)
		assert.True(t, empty.SalesByType.ChannelC.IsZero())
		assert.True(t, empty.RemainingBalances.ChannelA.Equal(d(100000)))
	})
}

func TestSalesEntry_WithAmount(t *testing.T) {
	e := domain.NewSalesEntry("emp")
	e2 := e.WithAmount(domain.ChannelB, d(42))

	assert.True(t, e.ChannelB.IsZero(), "original entry must not change")
	assert.True(t, e2.Amount(domain.ChannelB).Equal(d(42)))
	assert.True(t, e2.Amount(domain.ChannelA).IsZero())
}

func TestTransactionFilter_Matches(t *testing.T) {
	tx := domain.EmployeeTransaction{ID: "t1", EmployeeID: "1", Type: domain.ChannelA, Amount: d(5), Date: "2023-05-01"}

	tests := []struct {
		name   string
		filter domain.TransactionFilter
		want   bool
	}{
		{"empty filter", domain.TransactionFilter{}, true},
		{"same employee", domain.TransactionFilter{EmployeeID: "1"}, true},
		{"other employee", domain.TransactionFilter{EmployeeID: "2"}, false},
		{"same date", domain.TransactionFilter{Date: "2023-05-01"}, true},
		{"other date", domain.TransactionFilter{Date: "2023-05-02"}, false},
		{"type in set", domain.TransactionFilter{Types: []domain.Channel{domain.ChannelC, domain.ChannelA}}, true},
		{"type not in set", domain.TransactionFilter{Types: []domain.Channel{domain.ChannelB}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tx))
		})
	}
}

func TestState_CloneIsIndependent(t *testing.T) {
	s := domain.State{
		Employees:    []domain.Employee{{ID: "1", Name: "A"}},
		SalesEntries: []domain.SalesEntry{domain.NewSalesEntry("1")},
	}
	c := s.Clone()
	c.Employees[0].Name = "B"
	c.SalesEntries[0] = c.SalesEntries[0].WithAmount(domain.ChannelA, d(1))

	assert.Equal(t, "A", s.Employees[0].Name)
	assert.True(t, s.SalesEntries[0].ChannelA.IsZero())
	assert.False(t, s.Equal(c))
}
