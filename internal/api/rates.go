package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/assettrack/internal/domain"
	"github.com/mtlprog/assettrack/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ratesResponse struct {
	Base      domain.Currency                     `json:"base"`
	Rates     map[domain.Currency]decimal.Decimal `json:"rates"`
	Source    domain.RateSource                   `json:"source,omitempty"`
	UpdatedAt *time.Time                          `json:"updatedAt"`
	Valid     bool                                `json:"valid"`
	Live      bool                                `json:"live"`
}

type statsResponse struct {
	Total    int                      `json:"total"`
	ByKind   map[domain.AssetKind]int `json:"byKind"`
	ByOffice map[domain.Office]int    `json:"byOffice"`
}

func (h *Handler) currentRates() ratesResponse {
	resp := ratesResponse{
		Base:  domain.BaseCurrency,
		Rates: map[domain.Currency]decimal.Decimal{},
		Valid: h.converter.HasValidRates(),
		Live:  h.converter.HasLiveRates(),
	}
	if table, ok := h.converter.Current(); ok {
		resp.Rates = table.Rates()
		resp.Source = table.Source()
		updated := table.UpdatedAt()
		resp.UpdatedAt = &updated
	}
	return resp
}

// GetRates handles GET /api/v1/rates.
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.currentRates())
}

// RefreshRates handles POST /api/v1/rates/refresh.
// A provider failure still answers 200 with the fallback table marked live=false.
func (h *Handler) RefreshRates(w http.ResponseWriter, r *http.Request) {
	if !h.converter.Refresh(r.Context()) {
		slog.Warn("rate refresh fell back to approximate rates")
	}
	writeJSON(w, http.StatusOK, h.currentRates())
}

// GetStats handles GET /api/v1/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	all := h.assets.All(r.Context())
	byKind := make(map[domain.AssetKind]int, len(domain.AssetKinds))
	for _, k := range domain.AssetKinds {
		byKind[k] = h.assets.CountByKind(r.Context(), k)
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Total:    len(all),
		ByKind:   byKind,
		ByOffice: h.assets.CountByOffice(r.Context()),
	})
}

// GetReport handles GET /api/v1/report. ?format=xlsx returns a workbook instead of JSON.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep := h.reports.Build(r.Context())

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, rep)
	case "xlsx":
		writeWorkbook(w, rep)
	default:
		writeError(w, http.StatusBadRequest, "unsupported format, expected json or xlsx")
	}
}

func writeWorkbook(w http.ResponseWriter, rep report.Report) {
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, rep); err != nil {
		slog.Error("failed to render report workbook", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="assets-`+rep.GeneratedAt.Format(time.DateOnly)+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
	}
}
