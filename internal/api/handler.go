package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/assettrack/internal/domain"
	"github.com/mtlprog/assettrack/internal/ledger"
	"github.com/mtlprog/assettrack/internal/rates"
	"github.com/mtlprog/assettrack/internal/report"
)

const maxBodyBytes = 64 << 10

// Handler provides HTTP endpoints for the asset tracker API.
type Handler struct {
	assets    *ledger.Ledger
	converter *rates.Converter
	reports   *report.Builder
	now       func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(assets *ledger.Ledger, converter *rates.Converter, reports *report.Builder) *Handler {
	return &Handler{
		assets:    assets,
		converter: converter,
		reports:   reports,
		now:       time.Now,
	}
}

type priceRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

type assetRequest struct {
	Kind         string       `json:"kind"`
	Brand        string       `json:"brand"`
	Model        string       `json:"model"`
	Office       string       `json:"office"`
	PurchaseDate string       `json:"purchaseDate"`
	Price        priceRequest `json:"price"`
}

// toAsset validates the request at the input boundary.
func (req assetRequest) toAsset(now time.Time) (domain.Asset, error) {
	kind, err := domain.ParseAssetKind(req.Kind)
	if err != nil {
		return domain.Asset{}, err
	}
	office, err := domain.ParseOffice(req.Office)
	if err != nil {
		return domain.Asset{}, err
	}
	purchased, err := time.Parse(time.DateOnly, req.PurchaseDate)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("%w: invalid purchase date %q, expected YYYY-MM-DD", domain.ErrInvalidAsset, req.PurchaseDate)
	}
	currency, err := domain.ParseCurrency(req.Price.Currency)
	if err != nil {
		return domain.Asset{}, err
	}
	price, err := domain.NewMonetaryValue(req.Price.Amount, currency)
	if err != nil {
		return domain.Asset{}, err
	}

	a := domain.Asset{
		Kind:         kind,
		Brand:        strings.TrimSpace(req.Brand),
		Model:        strings.TrimSpace(req.Model),
		Office:       office,
		PurchaseDate: purchased,
		Price:        price,
	}
	if err := a.Validate(now); err != nil {
		return domain.Asset{}, err
	}
	return a, nil
}

func (h *Handler) decodeAsset(w http.ResponseWriter, r *http.Request) (domain.Asset, bool) {
	var req assetRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return domain.Asset{}, false
	}
	a, err := req.toAsset(h.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return domain.Asset{}, false
	}
	return a, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid asset id")
		return 0, false
	}
	return id, true
}

// ListAssets handles GET /api/v1/assets.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.assets.Sorted(r.Context()))
}

// GetAsset handles GET /api/v1/assets/{id}.
func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, found := h.assets.Get(r.Context(), id)
	if !found {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// CreateAsset handles POST /api/v1/assets.
func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	a, ok := h.decodeAsset(w, r)
	if !ok {
		return
	}
	id, created := h.assets.Create(r.Context(), a)
	if !created {
		writeError(w, http.StatusInternalServerError, "failed to create asset")
		return
	}
	a.ID = id
	writeJSON(w, http.StatusCreated, a)
}

// UpdateAsset handles PUT /api/v1/assets/{id}.
func (h *Handler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, ok := h.decodeAsset(w, r)
	if !ok {
		return
	}
	if _, found := h.assets.Get(r.Context(), id); !found {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}
	a.ID = id
	if !h.assets.Update(r.Context(), a) {
		writeError(w, http.StatusInternalServerError, "failed to update asset")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// DeleteAsset handles DELETE /api/v1/assets/{id}.
func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !h.assets.Delete(r.Context(), id) {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
