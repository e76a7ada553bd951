package service

import (
	"context"
	"strings"
	"time"

	"github.com/boddenberg/daily-balances-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Employees
// ============================================================

// AddEmployee registers a distributor under a fresh ID with an all-zero
// sales entry. The name is trimmed and must not be empty.
func (s *BalancesService) AddEmployee(ctx context.Context, name string) (domain.Employee, error) {
	ctx, span := tracer.Start(ctx, "BalancesService.AddEmployee")
	defer span.End()
	defer s.observe("add_employee", time.Now())

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Employee{}, &domain.ErrValidation{Field: "name", Message: "name is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	emp := s.store.AddEmployee(name)
	s.commitLocked(ctx, "add_employee")

	span.SetAttributes(attribute.String("employee.id", emp.ID))
	s.logger.Info("employee added", zap.String("employee_id", emp.ID), zap.String("name", emp.Name))
	return emp, nil
}

// Employees lists every distributor in insertion order.
func (s *BalancesService) Employees(ctx context.Context) []domain.Employee {
	_, span := tracer.Start(ctx, "BalancesService.Employees")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Employees()
}

// AccountDetails gathers one distributor's entry and history, with the
// history split per channel and summed.
func (s *BalancesService) AccountDetails(ctx context.Context, employeeID string) (domain.AccountDetails, error) {
	_, span := tracer.Start(ctx, "BalancesService.AccountDetails")
	defer span.End()
	span.SetAttributes(attribute.String("employee.id", employeeID))

	s.mu.Lock()
	defer s.mu.Unlock()

	emp, ok := s.store.Employee(employeeID)
	if !ok {
		return domain.AccountDetails{}, &domain.ErrNotFound{Resource: "employee", ID: employeeID}
	}
	entry, _ := s.store.SalesEntry(employeeID)

	details := domain.AccountDetails{
		Employee:     emp,
		SalesEntry:   entry,
		Transactions: make(map[domain.Channel][]domain.EmployeeTransaction, len(domain.Channels)),
		Totals:       make(map[domain.Channel]decimal.Decimal, len(domain.Channels)),
	}
	for _, c := range domain.Channels {
		details.Transactions[c] = []domain.EmployeeTransaction{}
		details.Totals[c] = decimal.Zero
	}
	for _, tx := range s.store.Transactions() {
		if tx.EmployeeID != employeeID {
			continue
		}
		details.Transactions[tx.Type] = append(details.Transactions[tx.Type], tx)
		details.Totals[tx.Type] = details.Totals[tx.Type].Add(tx.Amount)
	}
	return details, nil
}
