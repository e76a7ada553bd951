package service

import (
	"github.com/boddenberg/daily-balances-go/internal/domain"

	"github.com/shopspring/decimal"
)

// EmptyState is the ledger used when nothing usable was saved.
func EmptyState() domain.State {
	return domain.State{
		OpeningBalance: domain.OpeningBalance{ChannelA: decimal.Zero, ChannelB: decimal.Zero},
		SalesEntries:   []domain.SalesEntry{},
		Employees:      []domain.Employee{},
		Transactions:   []domain.EmployeeTransaction{},
	}
}

// SeedState is the demo ledger: four distributors, 100000 on each credit
// line and a short history. Sales entries start at zero, so the seeded
// transactions are history only.
func SeedState() domain.State {
	employees := []domain.Employee{
		{ID: "1", Name: "Ahmad Abdullah"},
		{ID: "2", Name: "Sara Khaled"},
		{ID: "3", Name: "Mohammad Ali"},
		{ID: "4", Name: "Layla Omar"},
	}
	entries := make([]domain.SalesEntry, 0, len(employees))
	for _, e := range employees {
		entries = append(entries, domain.NewSalesEntry(e.ID))
	}

	return domain.State{
		OpeningBalance: domain.OpeningBalance{
			ChannelA: decimal.NewFromInt(100000),
			ChannelB: decimal.NewFromInt(100000),
		},
		Employees:    employees,
		SalesEntries: entries,
		Transactions: []domain.EmployeeTransaction{
			{ID: "5", EmployeeID: "3", Type: domain.ChannelB, Amount: decimal.NewFromInt(6000), Date: "2023-05-02", Description: "channelB credit request"},
			{ID: "4", EmployeeID: "2", Type: domain.ChannelA, Amount: decimal.NewFromInt(4000), Date: "2023-05-02", Description: "channelA credit request"},
			{ID: "3", EmployeeID: "1", Type: domain.ChannelC, Amount: decimal.NewFromInt(8000), Date: "2023-05-01", Description: "cash payment"},
			{ID: "2", EmployeeID: "1", Type: domain.ChannelB, Amount: decimal.NewFromInt(3000), Date: "2023-05-01", Description: "channelB credit request"},
			{ID: "1", EmployeeID: "1", Type: domain.ChannelA, Amount: decimal.NewFromInt(5000), Date: "2023-05-01", Description: "channelA credit request"},
		},
	}
}
