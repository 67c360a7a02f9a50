package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"salesledger/internal/domain"
	"salesledger/internal/ingest"
	"salesledger/internal/service"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type uploadRequest struct {
	Rows       [][]any `json:"rows"`
	UploadedAt string  `json:"uploaded_at"`
}

// Upload accepts either a multipart vendor report file (xlsx, csv, or
// fixed-width text) or a JSON body of pre-parsed raw rows, runs the full
// reconciliation pipeline, and returns the per-vendor upload summary.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	var (
		raws       [][]any
		uploadedAt string
		err        error
	)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		raws, uploadedAt, err = parseUploadFile(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		var req uploadRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		raws = req.Rows
		uploadedAt = req.UploadedAt
	}

	if uploadedAt == "" {
		uploadedAt = time.Now().Format(time.RFC3339)
	}

	summary, err := h.svc.ProcessUpload(r.Context(), raws, uploadedAt)
	if err != nil {
		if errors.Is(err, service.ErrEmptyBatch) {
			writeError(w, http.StatusBadRequest, "upload has no data rows")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func parseUploadFile(r *http.Request) ([][]any, string, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, "", fmt.Errorf("invalid multipart form")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("file field is required")
	}
	defer file.Close()

	format := strings.ToLower(strings.TrimSpace(r.FormValue("format")))
	if format == "" {
		name := strings.ToLower(header.Filename)
		switch {
		case strings.HasSuffix(name, ".csv"):
			format = "csv"
		case strings.HasSuffix(name, ".txt"):
			format = "fixed"
		default:
			format = "xlsx"
		}
	}

	var raws [][]any
	switch format {
	case "xlsx":
		raws, err = ingest.ReadWorkbook(file)
	case "csv":
		raws, err = ingest.ReadCSV(file)
	case "fixed":
		layout, layoutErr := parseLayout(r.FormValue("layout"))
		if layoutErr != nil {
			return nil, "", layoutErr
		}
		raws, err = ingest.ReadFixedWidth(file, layout)
	default:
		return nil, "", fmt.Errorf("unknown format %q (want xlsx, csv, or fixed)", format)
	}
	if err != nil {
		return nil, "", err
	}
	return raws, strings.TrimSpace(r.FormValue("uploaded_at")), nil
}

func parseLayout(raw string) (ingest.Layout, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("layout field is required for fixed-width uploads")
	}
	var spans [][2]int
	if err := json.Unmarshal([]byte(raw), &spans); err != nil {
		return nil, fmt.Errorf("invalid layout: %v", err)
	}
	layout := make(ingest.Layout, 0, len(spans))
	for _, span := range spans {
		layout = append(layout, ingest.Column{Start: span[0], End: span[1]})
	}
	return layout, nil
}

func (h *Handler) ListVendors(w http.ResponseWriter, r *http.Request) {
	infos, err := h.svc.Vendors(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vendors": infos})
}

func (h *Handler) VendorAggregates(w http.ResponseWriter, r *http.Request) {
	agg, err := h.svc.Aggregates(r.Context(), chi.URLParam(r, "vendor"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

func (h *Handler) VendorHierarchy(w http.ResponseWriter, r *http.Request) {
	year, err := parseOptionalInt(r.URL.Query().Get("year"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	nodes, err := h.svc.Hierarchy(r.Context(), chi.URLParam(r, "vendor"), year)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": nodes, "count": len(nodes)})
}

func (h *Handler) VendorAlerts(w http.ResponseWriter, r *http.Request) {
	previous, current, err := parseComparisonRanges(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	alerts, err := h.svc.AttritionAlerts(r.Context(), chi.URLParam(r, "vendor"), previous, current)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts, "count": len(alerts)})
}

func (h *Handler) VendorQuantityChanges(w http.ResponseWriter, r *http.Request) {
	customer := strings.TrimSpace(r.URL.Query().Get("customer"))
	if customer == "" {
		writeError(w, http.StatusBadRequest, "customer query parameter is required")
		return
	}
	previous, current, err := parseComparisonRanges(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	changes, err := h.svc.QuantityChanges(r.Context(), chi.URLParam(r, "vendor"), customer, previous, current)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"changes": changes, "count": len(changes)})
}

type compareRequest struct {
	GroupBy  string            `json:"group_by"`
	RangeA   domain.MonthRange `json:"range_a"`
	RangeB   domain.MonthRange `json:"range_b"`
	Customer string            `json:"customer"`
}

func (h *Handler) VendorCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateRange(req.RangeA); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("range_a: %v", err))
		return
	}
	if err := validateRange(req.RangeB); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("range_b: %v", err))
		return
	}

	vendor := chi.URLParam(r, "vendor")
	var (
		report domain.DeltaReport
		err    error
	)
	if req.Customer != "" {
		report, err = h.svc.CompareCustomer(r.Context(), vendor, req.Customer, req.RangeA, req.RangeB)
	} else {
		report, err = h.svc.CompareRanges(r.Context(), vendor, req.GroupBy, req.RangeA, req.RangeB)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) ClearMonth(w http.ResponseWriter, r *http.Request) {
	year, err := parseID(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := parseID(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid month")
		return
	}

	agg, err := h.svc.ClearMonth(r.Context(), chi.URLParam(r, "vendor"), int(year), int(month))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

func (h *Handler) ClearVendor(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearVendor(r.Context(), chi.URLParam(r, "vendor")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "cleared"})
}

func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearAll(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "cleared"})
}

// parseComparisonRanges reads optional previous/current month ranges from
// the query string. All four bounds must be present together or absent
// together; absent means the service picks the two latest months with data.
func parseComparisonRanges(r *http.Request) (previous, current domain.MonthRange, err error) {
	query := r.URL.Query()
	previous = domain.MonthRange{
		Start: strings.TrimSpace(query.Get("previous_start")),
		End:   strings.TrimSpace(query.Get("previous_end")),
	}
	current = domain.MonthRange{
		Start: strings.TrimSpace(query.Get("current_start")),
		End:   strings.TrimSpace(query.Get("current_end")),
	}
	if previous == (domain.MonthRange{}) && current == (domain.MonthRange{}) {
		return previous, current, nil
	}
	if err := validateRange(previous); err != nil {
		return previous, current, fmt.Errorf("previous range: %w", err)
	}
	if err := validateRange(current); err != nil {
		return previous, current, fmt.Errorf("current range: %w", err)
	}
	return previous, current, nil
}

func validateRange(r domain.MonthRange) error {
	for _, bound := range []string{r.Start, r.End} {
		if len(bound) != 7 || bound[4] != '-' {
			return fmt.Errorf("invalid month key %q (want YYYY-MM)", bound)
		}
		if _, err := strconv.Atoi(bound[:4]); err != nil {
			return fmt.Errorf("invalid month key %q", bound)
		}
		month, err := strconv.Atoi(bound[5:7])
		if err != nil || month < 1 || month > 12 {
			return fmt.Errorf("invalid month key %q", bound)
		}
	}
	return nil
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownVendor):
		writeError(w, http.StatusNotFound, "unknown vendor")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func parseOptionalInt(raw string, defaultValue int) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %s", raw)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("value cannot be negative")
	}
	return parsed, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
