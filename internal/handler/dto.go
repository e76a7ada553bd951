package handler

import (
	"encoding/json"

	"github.com/boddenberg/daily-balances-go/internal/domain"
	"github.com/boddenberg/daily-balances-go/internal/interchange"
	"github.com/boddenberg/daily-balances-go/internal/service"

	"github.com/shopspring/decimal"
)

// ============================================================
// Requests
// ============================================================

type openingBalanceRequest struct {
	ChannelA *decimal.Decimal `json:"channelA" validate:"required"`
	ChannelB *decimal.Decimal `json:"channelB" validate:"required"`
}

type rolloverRequest struct {
	ResetSales bool `json:"resetSales"`
}

type addEmployeeRequest struct {
	Name string `json:"name" validate:"required"`
}

// salesEntryRequest accepts a number or a numeric string.
type salesEntryRequest struct {
	Value json.RawMessage `json:"value"`
}

type recordTransactionRequest struct {
	EmployeeID  string           `json:"employeeId" validate:"required"`
	Type        string           `json:"type" validate:"required"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Description string           `json:"description"`
}

// ============================================================
// Responses
// ============================================================

type balancesResponse struct {
	OpeningBalance    *interchange.OpeningBalanceRecord   `json:"openingBalance"`
	SalesByType       *interchange.SalesByTypeRecord      `json:"salesByType"`
	RemainingBalances *interchange.RemainingBalanceRecord `json:"remainingBalances"`
}

func toBalancesResponse(b service.Balances) balancesResponse {
	return balancesResponse{
		OpeningBalance:    interchange.FromOpeningBalance(b.OpeningBalance),
		SalesByType:       interchange.FromSalesByType(b.Totals.SalesByType),
		RemainingBalances: interchange.FromRemainingBalance(b.Totals.RemainingBalances),
	}
}

type summaryResponse struct {
	balancesResponse
	CashTotal         *decimal.Decimal `json:"cashTotal"`
	EmployeeCount     int              `json:"employeeCount"`
	TransactionCount  int              `json:"transactionCount"`
	OverdrawnChannels []domain.Channel `json:"overdrawnChannels"`
}

func toSummaryResponse(s domain.DailySummary) summaryResponse {
	return summaryResponse{
		balancesResponse: balancesResponse{
			OpeningBalance:    interchange.FromOpeningBalance(s.OpeningBalance),
			SalesByType:       interchange.FromSalesByType(s.SalesByType),
			RemainingBalances: interchange.FromRemainingBalance(s.RemainingBalances),
		},
		CashTotal:         interchange.Num(s.SalesByType.ChannelC),
		EmployeeCount:     s.EmployeeCount,
		TransactionCount:  s.TransactionCount,
		OverdrawnChannels: s.OverdrawnChannels,
	}
}

type accountResponse struct {
	Employee     interchange.EmployeeRecord                         `json:"employee"`
	SalesEntry   interchange.SalesEntryRecord                       `json:"salesEntry"`
	Transactions map[domain.Channel][]interchange.TransactionRecord `json:"transactions"`
	Totals       map[domain.Channel]*decimal.Decimal                `json:"totals"`
}

func toAccountResponse(a domain.AccountDetails) accountResponse {
	resp := accountResponse{
		Employee:     interchange.FromEmployee(a.Employee),
		SalesEntry:   interchange.FromSalesEntry(a.SalesEntry),
		Transactions: make(map[domain.Channel][]interchange.TransactionRecord, len(a.Transactions)),
		Totals:       make(map[domain.Channel]*decimal.Decimal, len(a.Totals)),
	}
	for c, txs := range a.Transactions {
		resp.Transactions[c] = toTransactionRecords(txs)
	}
	for c, total := range a.Totals {
		resp.Totals[c] = interchange.Num(total)
	}
	return resp
}

type importResponse struct {
	Message      string `json:"message"`
	Employees    int    `json:"employees"`
	Transactions int    `json:"transactions"`
}

func toTransactionRecords(txs []domain.EmployeeTransaction) []interchange.TransactionRecord {
	out := make([]interchange.TransactionRecord, 0, len(txs))
	for _, tx := range txs {
		out = append(out, interchange.FromTransaction(tx))
	}
	return out
}

func toSalesEntryRecords(entries []domain.SalesEntry) []interchange.SalesEntryRecord {
	out := make([]interchange.SalesEntryRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, interchange.FromSalesEntry(e))
	}
	return out
}

func toEmployeeRecords(emps []domain.Employee) []interchange.EmployeeRecord {
	out := make([]interchange.EmployeeRecord, 0, len(emps))
	for _, e := range emps {
		out = append(out, interchange.FromEmployee(e))
	}
	return out
}
