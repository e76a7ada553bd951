package interchange

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/boddenberg/daily-balances-go/internal/domain"

	"github.com/xuri/excelize/v2"
)

// Tabular export media types.
const (
	CSVContentType  = "text/csv; charset=utf-8"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ErrNoData is returned when a tabular export has no rows.
var ErrNoData = errors.New("no data to export")

// Format selects the tabular encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" (the default when empty) or "xlsx".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", &domain.ErrValidation{Field: "format", Message: fmt.Sprintf("unsupported export format %q", s)}
	}
}

// ContentType returns the media type served for f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return XLSXContentType
	}
	return CSVContentType
}

// ExportTabular encodes rows in format f.
func ExportTabular(rows []Row, columns []Column, f Format) ([]byte, error) {
	if f == FormatXLSX {
		return ExportXLSX(rows, columns)
	}
	return ExportCSV(rows, columns)
}

// Column maps a row key to its header title.
type Column struct {
	Key   string
	Title string
}

// Row is one tabular record keyed by Column.Key.
type Row map[string]any

// ExportCSV writes a header row of titles followed by one line per row,
// quoting cells that contain separators, quotes, or line breaks.
func ExportCSV(rows []Row, columns []Column) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Title
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, c := range columns {
			record[i] = cellText(row[c.Key])
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportXLSX writes the same table as a single-sheet workbook. Numbers stay
// numeric cells.
func ExportXLSX(rows []Row, columns []Column) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"

	for i, c := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, c.Title); err != nil {
			return nil, fmt.Errorf("set header %s: %w", cell, err)
		}
	}

	for r, row := range rows {
		for i, c := range columns {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, cellValue(row[c.Key])); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case interface{ String() string }:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case interface{ InexactFloat64() float64 }:
		return x.InexactFloat64()
	case domain.Channel:
		return string(x)
	default:
		return x
	}
}

// ============================================================
// Ledger tables
// ============================================================

// TransactionColumns is the column layout of the transaction export.
var TransactionColumns = []Column{
	{Key: "id", Title: "ID"},
	{Key: "employeeId", Title: "Employee ID"},
	{Key: "employeeName", Title: "Employee"},
	{Key: "type", Title: "Type"},
	{Key: "amount", Title: "Amount"},
	{Key: "date", Title: "Date"},
	{Key: "description", Title: "Description"},
}

// SalesEntryColumns is the column layout of the sales entry export.
var SalesEntryColumns = []Column{
	{Key: "employeeId", Title: "Employee ID"},
	{Key: "employeeName", Title: "Employee"},
	{Key: "channelA", Title: "Channel A"},
	{Key: "channelB", Title: "Channel B"},
	{Key: "channelC", Title: "Channel C"},
}

// TransactionRows flattens transactions, resolving employee names from st.
func TransactionRows(st domain.State, txs []domain.EmployeeTransaction) []Row {
	names := employeeNames(st.Employees)
	rows := make([]Row, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, Row{
			"id":           tx.ID,
			"employeeId":   tx.EmployeeID,
			"employeeName": names[tx.EmployeeID],
			"type":         tx.Type,
			"amount":       tx.Amount,
			"date":         tx.Date,
			"description":  tx.Description,
		})
	}
	return rows
}

// SalesEntryRows flattens the sales entries of st in employee order.
func SalesEntryRows(st domain.State) []Row {
	names := employeeNames(st.Employees)
	rows := make([]Row, 0, len(st.SalesEntries))
	for _, e := range st.SalesEntries {
		rows = append(rows, Row{
			"employeeId":   e.EmployeeID,
			"employeeName": names[e.EmployeeID],
			"channelA":     e.ChannelA,
			"channelB":     e.ChannelB,
			"channelC":     e.ChannelC,
		})
	}
	return rows
}

func employeeNames(emps []domain.Employee) map[string]string {
	names := make(map[string]string, len(emps))
	for _, e := range emps {
		names[e.ID] = e.Name
	}
	return names
}
