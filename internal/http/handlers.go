package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"prodboard/internal/core"
	"prodboard/internal/export"
	"prodboard/internal/log"
	"prodboard/internal/storage"
)

// ReportService is the report API the handlers depend on.
type ReportService interface {
	TestConnection(ctx context.Context, cfg core.ConnectionConfig) error
	Dashboard(ctx context.Context, cfg core.ConnectionConfig, date core.Date) (*core.DashboardReport, error)
	FullReport(ctx context.Context, cfg core.ConnectionConfig, r core.DateRange) ([]core.ProductionRecord, error)
	FilteredReport(ctx context.Context, cfg core.ConnectionConfig, r core.DateRange) (*core.FilteredReport, error)
	LatestActivities(ctx context.Context, cfg core.ConnectionConfig, limit int) ([]core.ProductionRecord, error)
}

type handlers struct {
	svc ReportService
}

func (h *handlers) testConnection(w http.ResponseWriter, r *http.Request) {
	var req connectionParams
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.TestConnection(r.Context(), req.config()); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Payload(map[string]string{"status": "ok"}).Write(w)
}

func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	var req dashboardRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := h.svc.Dashboard(r.Context(), req.config(), date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Payload(report).Write(w)
}

func (h *handlers) fullReport(w http.ResponseWriter, r *http.Request) {
	req, dr, ok := decodeRange(w, r)
	if !ok {
		return
	}
	records, err := h.svc.FullReport(r.Context(), req.config(), dr)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Payload(core.FullReport(records)).Write(w)
}

func (h *handlers) exportFullReport(w http.ResponseWriter, r *http.Request) {
	req, dr, ok := decodeRange(w, r)
	if !ok {
		return
	}
	records, err := h.svc.FullReport(r.Context(), req.config(), dr)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteFullReport(&buf, dr, records); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to render workbook",
			log.FieldOperation, log.OpExport,
			log.FieldError, err.Error())
		InternalServerError(CodeInternal, "failed to render workbook").Write(w)
		return
	}

	NewJSONResponse().
		Header("Content-Disposition", `attachment; filename="`+export.FileName(dr)+`"`).
		Raw(export.ContentTypeXLSX, buf.Bytes()).
		Write(w)
}

func (h *handlers) filteredReport(w http.ResponseWriter, r *http.Request) {
	req, dr, ok := decodeRange(w, r)
	if !ok {
		return
	}
	report, err := h.svc.FilteredReport(r.Context(), req.config(), dr)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Payload(report).Write(w)
}

func (h *handlers) latestActivities(w http.ResponseWriter, r *http.Request) {
	var req latestRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	records, err := h.svc.LatestActivities(r.Context(), req.config(), int(req.Limit))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Payload(records).Write(w)
}

func decodeRange(w http.ResponseWriter, r *http.Request) (rangeRequest, core.DateRange, bool) {
	var req rangeRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, err)
		return req, core.DateRange{}, false
	}
	dr, err := req.dateRange()
	if err != nil {
		writeError(w, r, err)
		return req, core.DateRange{}, false
	}
	return req, dr, true
}

// writeError maps an error to its status: rejected input is 400, an
// unreachable database 502, anything else 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var connErr *storage.ConnectionError
	var queryErr *storage.QueryError

	switch {
	case errors.Is(err, errMalformedBody):
		BadRequestError(err.Error()).Write(w)
	case errors.Is(err, core.ErrValidation):
		ValidationError(err.Error()).Write(w)
	case errors.As(err, &connErr):
		BadGatewayError(connErr.Error()).Write(w)
	case errors.As(err, &queryErr):
		InternalServerError(CodeQuery, queryErr.Error()).Write(w)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Unhandled request error",
			log.FieldPath, r.URL.Path,
			log.FieldError, err.Error())
		InternalServerError(CodeInternal, "internal error").Write(w)
	}
}
