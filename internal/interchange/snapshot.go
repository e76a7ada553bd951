package interchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/boddenberg/daily-balances-go/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

// JSONContentType is the media type of snapshot files.
const JSONContentType = "application/json"

var validate = NewValidator()

// NewValidator returns a validator that reports JSON field names, checks
// decimal amounts by sign (so gt=0 means positive) and knows notblank.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.Sign()
		}
		return nil
	}, decimal.Decimal{})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Encode serializes st compactly for the durable slot.
func Encode(st domain.State) ([]byte, error) {
	return json.Marshal(FromState(st))
}

// ExportSnapshot serializes st as a pretty-printed interchange file.
func ExportSnapshot(st domain.State) ([]byte, error) {
	data, err := json.MarshalIndent(FromState(st), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// ImportSnapshot decodes and fully validates an interchange file. Any
// failure is an *domain.ErrImport; nothing is returned partially.
func ImportSnapshot(data []byte) (domain.State, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return domain.State{}, &domain.ErrImport{Reason: "file is empty"}
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		var typeErr *json.UnmarshalTypeError
		var syntaxErr *json.SyntaxError
		switch {
		case errors.As(err, &typeErr):
			return domain.State{}, &domain.ErrImport{
				Reason: fmt.Sprintf("field %q has wrong type: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value),
			}
		case errors.As(err, &syntaxErr):
			return domain.State{}, &domain.ErrImport{Reason: "malformed JSON", Err: err}
		default:
			// Only amount fields decode through a custom unmarshaler.
			return domain.State{}, &domain.ErrImport{Reason: "an amount has wrong type: expected number", Err: err}
		}
	}

	if err := validate.Struct(rec); err != nil {
		return domain.State{}, &domain.ErrImport{Reason: describeValidation(err)}
	}

	st, err := rec.toState()
	if err != nil {
		return domain.State{}, err
	}
	return st, nil
}

// Decode is ImportSnapshot under the name used by the slot loader.
func Decode(data []byte) (domain.State, error) {
	return ImportSnapshot(data)
}

func (r Record) toState() (domain.State, error) {
	st := domain.State{
		OpeningBalance: r.OpeningBalance.toDomain(),
		Employees:      make([]domain.Employee, 0, len(r.Employees)),
		SalesEntries:   make([]domain.SalesEntry, 0, len(r.Employees)),
		Transactions:   make([]domain.EmployeeTransaction, 0, len(r.Transactions)),
	}

	known := make(map[string]bool, len(r.Employees))
	for _, e := range r.Employees {
		if known[e.ID] {
			return domain.State{}, &domain.ErrImport{Reason: fmt.Sprintf("duplicate employee id %q", e.ID)}
		}
		known[e.ID] = true
		st.Employees = append(st.Employees, domain.Employee{ID: e.ID, Name: strings.TrimSpace(e.Name)})
	}

	hasEntry := make(map[string]bool, len(r.SalesEntries))
	for _, e := range r.SalesEntries {
		if !known[e.EmployeeID] {
			return domain.State{}, &domain.ErrImport{Reason: fmt.Sprintf("sales entry references unknown employee %q", e.EmployeeID)}
		}
		if hasEntry[e.EmployeeID] {
			return domain.State{}, &domain.ErrImport{Reason: fmt.Sprintf("duplicate sales entry for employee %q", e.EmployeeID)}
		}
		hasEntry[e.EmployeeID] = true
		st.SalesEntries = append(st.SalesEntries, e.toDomain())
	}
	// Employees saved before their first edit may lack an entry.
	for _, e := range st.Employees {
		if !hasEntry[e.ID] {
			st.SalesEntries = append(st.SalesEntries, domain.NewSalesEntry(e.ID))
		}
	}

	seenTx := make(map[string]bool, len(r.Transactions))
	for _, tx := range r.Transactions {
		if seenTx[tx.ID] {
			return domain.State{}, &domain.ErrImport{Reason: fmt.Sprintf("duplicate transaction id %q", tx.ID)}
		}
		seenTx[tx.ID] = true
		if !known[tx.EmployeeID] {
			return domain.State{}, &domain.ErrImport{Reason: fmt.Sprintf("transaction %q references unknown employee %q", tx.ID, tx.EmployeeID)}
		}
		st.Transactions = append(st.Transactions, tx.toDomain())
	}

	return st, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Record.")
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s must be a date in %s format", field, fe.Param()))
		case "notblank":
			msgs = append(msgs, field+" must not be blank")
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return "invalid snapshot: " + strings.Join(msgs, "; ")
}

// CheckImportFile accepts a JSON content type or a .json file name and
// rejects anything else before parsing.
func CheckImportFile(contentType, filename string) error {
	if contentType != "" {
		if media, _, err := mime.ParseMediaType(contentType); err == nil && media == JSONContentType {
			return nil
		}
	}
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		return nil
	}
	return &domain.ErrUnsupportedMedia{ContentType: contentType, Filename: filename}
}

// FileName builds "<basename>.<ext>" from a caller supplied base name,
// dropping any directory part and characters unsafe in a header.
func FileName(basename, fallback, ext string) string {
	base := filepath.Base(strings.TrimSpace(basename))
	base = strings.Map(func(r rune) rune {
		switch r {
		case '"', '\\', '/', '\r', '\n':
			return -1
		}
		return r
	}, base)
	base = strings.TrimSuffix(base, "."+ext)
	if base == "" || base == "." {
		base = fallback
	}
	return base + "." + ext
}
