package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/boddenberg/daily-balances-go/internal/domain"
	"github.com/boddenberg/daily-balances-go/internal/interchange"
	"github.com/boddenberg/daily-balances-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Import / export files
// ============================================================

func defaultBasename(prefix string) string {
	return prefix + "-" + time.Now().Format(domain.DateLayout)
}

func exportSnapshotHandler(svc *service.BalancesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/export/snapshot")
		defer span.End()

		data, err := svc.ExportSnapshot(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		name := interchange.FileName(r.URL.Query().Get("basename"), defaultBasename("daily-balances"), "json")
		writeFile(w, interchange.JSONContentType, name, data)
	}
}

// importSnapshotHandler accepts either a raw JSON body (file name optional
// via ?filename=) or a multipart form with the file under "file".
func importSnapshotHandler(svc *service.BalancesService, maxBytes int64, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/import/snapshot")
		defer span.End()

		if maxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}

		data, contentType, filename, err := readImportFile(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("filename", filename), attribute.Int("size", len(data)))

		st, err := svc.ImportSnapshot(ctx, data, contentType, filename)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, importResponse{
			Message:      "data imported",
			Employees:    len(st.Employees),
			Transactions: len(st.Transactions),
		})
	}
}

func readImportFile(r *http.Request) (data []byte, contentType, filename string, err error) {
	media, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if media != "multipart/form-data" {
		data, err = io.ReadAll(r.Body)
		if err != nil {
			return nil, "", "", wrapReadError(err)
		}
		return data, r.Header.Get("Content-Type"), r.URL.Query().Get("filename"), nil
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", "", &domain.ErrImport{Reason: `multipart form has no "file" part`}
	}
	if err != nil {
		return nil, "", "", wrapReadError(err)
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		return nil, "", "", wrapReadError(err)
	}
	return data, header.Header.Get("Content-Type"), header.Filename, nil
}

// wrapReadError keeps size-limit errors for the 413 mapping and reports
// anything else as a failed import.
func wrapReadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return &domain.ErrImport{Reason: "could not read file", Err: err}
}

func exportTransactionsHandler(svc *service.BalancesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/export/transactions")
		defer span.End()

		format, err := interchange.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		filter, err := parseFilter(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		data, err := svc.ExportTransactions(ctx, filter, format)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		name := interchange.FileName(r.URL.Query().Get("basename"), defaultBasename("transactions"), string(format))
		writeFile(w, format.ContentType(), name, data)
	}
}

func exportSalesEntriesHandler(svc *service.BalancesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/export/sales-entries")
		defer span.End()

		format, err := interchange.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		data, err := svc.ExportSalesEntries(ctx, format)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		name := interchange.FileName(r.URL.Query().Get("basename"), defaultBasename("sales-entries"), string(format))
		writeFile(w, format.ContentType(), name, data)
	}
}
