package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/channelops/commission-review/internal/domain"
	"github.com/channelops/commission-review/internal/export"
	"github.com/channelops/commission-review/internal/fetch"
	"github.com/channelops/commission-review/internal/repository"
	"github.com/channelops/commission-review/internal/review"
	"github.com/channelops/commission-review/internal/view"
)

// Directory is the slice of fetch.Client the enterprise list endpoint
// needs.
type Directory interface {
	EnterpriseDirectory(ctx context.Context, environment string) ([]domain.Enterprise, error)
}

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	svc              *review.Service
	directory        Directory
	runs             *repository.RunRepo
	testEnterpriseID int64
	logger           *logrus.Logger
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// --- Calculate ---

func (h *Handlers) Calculate(w http.ResponseWriter, r *http.Request) {
	var req review.LoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ChannelID <= 0 {
		writeError(w, http.StatusBadRequest, "channel_id is required")
		return
	}
	if req.Environment == "" {
		req.Environment = "test"
	}

	// The load must outlive this request so a slow upstream cannot be
	// killed by the client closing the connection; supersession is
	// handled inside the service.
	snap, err := h.svc.Load(context.Background(), req)
	if err != nil {
		if errors.Is(err, review.ErrSuperseded) {
			writeJSON(w, http.StatusConflict, map[string]string{"status": "superseded"})
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":           snap.RunID,
		"summary":          snap.Summary,
		"api_verification": snap.APIVerified,
		"total_items":      snap.Summary.TotalCount,
	})
}

// --- Records (the paginated view) ---

func (h *Handlers) Records(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if len(q) == 1 && q.Get("page") != "" {
		// Page-only request: re-slice without touching filter or sort.
		res, err := h.svc.ViewPage(parseIntDefault(q.Get("page"), 1))
		if err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, res)
		return
	}

	_, current, err := h.svc.ViewState()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	p := view.Params{
		Search:         q.Get("search"),
		OnlyMismatched: q.Get("only_mismatched") == "true",
		SortField:      view.SortField(q.Get("sort")),
		SortDir:        view.Direction(q.Get("dir")),
		Page:           parseIntDefault(q.Get("page"), 1),
		PageSize:       parseIntDefault(q.Get("page_size"), current.PageSize),
	}

	res, err := h.svc.UpdateView(p)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- Summary ---

func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	summary, verified, err := h.svc.Summary()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":          summary,
		"api_verification": verified,
	})
}

// --- Rollups ---

func (h *Handlers) JurisdictionRollups(w http.ResponseWriter, r *http.Request) {
	rollups, err := h.svc.Jurisdictions()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jurisdictions": rollups})
}

func (h *Handlers) EnterpriseRollups(w http.ResponseWriter, r *http.Request) {
	rollups, err := h.svc.Enterprises()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"enterprises": rollups})
}

// --- Enterprise directory ---

func (h *Handlers) ListEnterprises(w http.ResponseWriter, r *http.Request) {
	env := r.URL.Query().Get("environment")
	if env == "" {
		env = "test"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	enterprises, err := h.directory.EnterpriseDirectory(ctx, env)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"enterprises":       enterprises,
		"default_selection": fetch.DefaultSelection(enterprises, h.testEnterpriseID),
		"total":             len(enterprises),
	})
}

// --- Navigator ---

func (h *Handlers) NavigatorNext(w http.ResponseWriter, r *http.Request) {
	rollup, err := h.svc.NavigatorNext()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"enterprise": rollup})
}

func (h *Handlers) NavigatorPrev(w http.ResponseWriter, r *http.Request) {
	rollup, err := h.svc.NavigatorPrev()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"enterprise": rollup})
}

func (h *Handlers) NavigatorCurrent(w http.ResponseWriter, r *http.Request) {
	rollup, idx, err := h.svc.NavigatorCurrent()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"enterprise": rollup, "index": idx})
}

// --- Export ---

func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.Records()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	columns := export.DefaultColumns
	if raw := r.URL.Query().Get("columns"); raw != "" {
		columns = make([]export.Column, 0)
		for _, key := range strings.Split(raw, ",") {
			col, ok := export.ParseColumn(strings.TrimSpace(key))
			if !ok {
				writeError(w, http.StatusBadRequest, "unknown column: "+key)
				return
			}
			columns = append(columns, col)
		}
	}

	opts := export.Options{
		ThousandsSeparators: r.URL.Query().Get("grouping") == "true",
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="commission-review.csv"`)
	if err := export.Write(w, records, columns, opts); err != nil {
		h.logger.Errorf("[api] export failed: %v", err)
	}
}

// --- Runs ---

func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		writeJSON(w, http.StatusOK, map[string]any{"runs": []repository.Run{}, "total": 0})
		return
	}

	// channel_id narrows the query to that channel's most recent run.
	if raw := r.URL.Query().Get("channel_id"); raw != "" {
		channelID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || channelID <= 0 {
			writeError(w, http.StatusBadRequest, "invalid channel_id")
			return
		}
		latest, err := h.runs.Latest(channelID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"latest": latest})
		return
	}

	runs, err := h.runs.List(parseIntDefault(r.URL.Query().Get("limit"), 50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []repository.Run{}
	}

	total, err := h.runs.Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs, "total": total})
}
