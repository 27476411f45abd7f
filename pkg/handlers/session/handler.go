package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dd-tools/databook/pkg/export"
	"github.com/dd-tools/databook/pkg/models/api"
	"github.com/dd-tools/databook/pkg/services/agent"
	"github.com/dd-tools/databook/pkg/services/engine"
	"github.com/dd-tools/databook/pkg/services/session"
)

const maxUploadBytes = 64 << 20

type Handler struct {
	sessions *session.Service
}

func NewHandler(sessions *session.Service) *Handler {
	return &Handler{sessions: sessions}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, r, status, map[string]string{"error": err.Error()})
}

func (h *Handler) statusFor(err error) int {
	if errors.Is(err, session.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	writeJSON(w, r, http.StatusCreated, map[string]string{
		"session_id": s.ID,
		"created_at": s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	h.sessions.Delete(chi.URLParam(r, "session"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "session"))
	if err != nil {
		writeError(w, r, h.statusFor(err), err)
		return
	}

	response := map[string]any{
		"session_id": s.ID,
		"files":      s.Files,
		"entries":    len(s.Entries),
	}
	if s.Analysis != nil {
		response["years"] = s.Analysis.Years()
	}
	writeJSON(w, r, http.StatusOK, response)
}

// UploadFile ingests one FEC file (multipart field "file") and reprocesses
// the session.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "session")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	result, err := h.sessions.Ingest(ctx, id, header.Filename, file)
	if err != nil {
		writeError(w, r, h.statusFor(err), err)
		return
	}

	errs := make([]string, 0, len(result.Errors))
	for _, pe := range result.Errors {
		errs = append(errs, pe.Error())
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"parsed":       len(result.Entries),
		"rejected":     len(result.Errors),
		"total_rows":   result.TotalRows,
		"success_rate": result.SuccessRate(),
		"errors":       errs,
		"warnings":     result.Warnings,
	})
}

func (h *Handler) analysis(w http.ResponseWriter, r *http.Request) (*engine.Analysis, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "session"))
	if err != nil {
		writeError(w, r, h.statusFor(err), err)
		return nil, false
	}
	if s.Analysis == nil {
		writeError(w, r, http.StatusConflict, errors.New("no files processed yet"))
		return nil, false
	}
	return s.Analysis, true
}

// GetStatements returns the full dashboard payload.
func (h *Handler) GetStatements(w http.ResponseWriter, r *http.Request) {
	analysis, ok := h.analysis(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, export.BuildDashboard(analysis))
}

// GetTrace resolves a statement field back to its journal entries.
func (h *Handler) GetTrace(w http.ResponseWriter, r *http.Request) {
	analysis, ok := h.analysis(w, r)
	if !ok {
		return
	}
	field := chi.URLParam(r, "field")
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))

	trace, err := agent.NewDealAgent(analysis).TraceMetric(field, year)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if trace == nil {
		writeError(w, r, http.StatusNotFound, errors.New("no trace for field "+field))
		return
	}

	writeJSON(w, r, http.StatusOK, api.TraceResponse{
		Field:      trace.Field,
		Year:       trace.Year,
		Value:      trace.Value,
		EntryCount: trace.EntryCount,
		Entries:    api.FromTraceEntries(trace.Entries),
	})
}

// GetBridge builds a waterfall for the requested kind: ebitda, revenue,
// qoe or pl.
func (h *Handler) GetBridge(w http.ResponseWriter, r *http.Request) {
	analysis, ok := h.analysis(w, r)
	if !ok {
		return
	}
	kind := chi.URLParam(r, "kind")
	variance := engine.NewVarianceBuilder()

	switch kind {
	case "ebitda", "revenue", "pl":
		if len(analysis.PL) < 2 {
			writeError(w, r, http.StatusConflict, errors.New("bridge needs at least two processed years"))
			return
		}
		prev, curr := analysis.PL[len(analysis.PL)-2], analysis.PL[len(analysis.PL)-1]
		var steps []api.BridgeStep
		switch kind {
		case "ebitda":
			steps = api.FromBridgeSteps(variance.BuildEBITDABridge(prev, curr))
		case "revenue":
			steps = api.FromBridgeSteps(variance.BuildRevenueBridge(prev, curr))
		default:
			steps = api.FromBridgeSteps(variance.BuildPLVariance(prev, curr))
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"kind": kind, "steps": steps})
	case "qoe":
		if len(analysis.KPIs) == 0 {
			writeError(w, r, http.StatusConflict, errors.New("no KPIs available"))
			return
		}
		steps := variance.BuildQoEBridge(analysis.KPIs[len(analysis.KPIs)-1])
		if steps == nil {
			writeError(w, r, http.StatusNotFound, errors.New("no quality-of-earnings adjustments configured"))
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"kind": kind, "steps": api.FromBridgeSteps(steps)})
	default:
		writeError(w, r, http.StatusBadRequest, errors.New("unknown bridge kind "+kind))
	}
}

// GetCashFlow returns the indirect-method statements.
func (h *Handler) GetCashFlow(w http.ResponseWriter, r *http.Request) {
	analysis, ok := h.analysis(w, r)
	if !ok {
		return
	}
	out := make([]api.CashFlow, 0, len(analysis.CashFlow))
	for _, cf := range analysis.CashFlow {
		out = append(out, api.FromCashFlow(cf))
	}
	writeJSON(w, r, http.StatusOK, out)
}

// GetMonthly returns the monthly revenue, cost and EBITDA series.
func (h *Handler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "session"))
	if err != nil {
		writeError(w, r, h.statusFor(err), err)
		return
	}
	if s.Analysis == nil {
		writeError(w, r, http.StatusConflict, errors.New("no files processed yet"))
		return
	}

	monthly := engine.NewMonthlyBuilder(h.sessions.Mapper())
	writeJSON(w, r, http.StatusOK, map[string]any{
		"revenue":            monthly.BuildMonthlyRevenue(s.Entries),
		"costs":              monthly.BuildMonthlyCosts(s.Entries),
		"ebitda":             monthly.BuildMonthlyEBITDA(s.Entries),
		"quarterly":          monthly.BuildQuarterlySummary(s.Entries),
		"cumulative_revenue": monthly.BuildCumulativeRevenue(s.Entries),
		"seasonality":        monthly.SeasonalityIndex(s.Entries),
	})
}

// GetDetails returns the account-level drill-down for one statement side.
func (h *Handler) GetDetails(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "session"))
	if err != nil {
		writeError(w, r, h.statusFor(err), err)
		return
	}
	if s.Analysis == nil {
		writeError(w, r, http.StatusConflict, errors.New("no files processed yet"))
		return
	}

	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	if year == 0 {
		years := s.Analysis.Years()
		if len(years) == 0 {
			writeError(w, r, http.StatusConflict, errors.New("no processed years"))
			return
		}
		year = years[len(years)-1]
	}

	detail := engine.NewDetailBuilder(h.sessions.Mapper())
	side := r.URL.Query().Get("statement")
	switch side {
	case "", "pl":
		writeJSON(w, r, http.StatusOK, map[string]any{"year": year, "sections": detail.BuildPLDetail(s.Entries, year)})
	case "balance":
		writeJSON(w, r, http.StatusOK, map[string]any{"year": year, "sections": detail.BuildBalanceDetail(s.Entries, year)})
	default:
		writeError(w, r, http.StatusBadRequest, errors.New("unknown statement "+side))
	}
}

// GetAccounts returns account-grain aggregations: the per-year account
// summary by default, top-ranked accounts with view=top, category
// breakdowns with view=categories. Top and category views honor an
// optional year; year=0 spans all years.
func (h *Handler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "session"))
	if err != nil {
		writeError(w, r, h.statusFor(err), err)
		return
	}
	if s.Analysis == nil {
		writeError(w, r, http.StatusConflict, errors.New("no files processed yet"))
		return
	}

	detail := engine.NewDetailBuilder(h.sessions.Mapper())
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))

	switch view := r.URL.Query().Get("view"); view {
	case "", "summary":
		writeJSON(w, r, http.StatusOK, map[string]any{"accounts": detail.BuildAccountSummary(s.Entries)})
	case "top":
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 10
		}
		if year == 0 {
			writeJSON(w, r, http.StatusOK, map[string]any{"top": detail.BuildTopAccountsAllYears(s.Entries, limit)})
			return
		}
		accountType := engine.AccountType(r.URL.Query().Get("type"))
		if accountType == "" {
			accountType = engine.AccountTypeExpense
		}
		writeJSON(w, r, http.StatusOK, map[string]any{
			"year": year,
			"top":  detail.BuildTopAccounts(s.Entries, year, accountType, limit),
		})
	case "categories":
		if year == 0 {
			writeJSON(w, r, http.StatusOK, map[string]any{"categories": detail.BuildCategoryBreakdownAllYears(s.Entries)})
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{
			"year":       year,
			"categories": detail.BuildCategoryBreakdown(s.Entries, year),
		})
	default:
		writeError(w, r, http.StatusBadRequest, errors.New("unknown view "+view))
	}
}

// GetEntries returns a journal extract, filterable by year and account
// prefix, capped by limit.
func (h *Handler) GetEntries(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "session"))
	if err != nil {
		writeError(w, r, h.statusFor(err), err)
		return
	}
	if s.Analysis == nil {
		writeError(w, r, http.StatusConflict, errors.New("no files processed yet"))
		return
	}

	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	if year == 0 {
		years := s.Analysis.Years()
		if len(years) == 0 {
			writeError(w, r, http.StatusConflict, errors.New("no processed years"))
			return
		}
		year = years[len(years)-1]
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 100
	}
	prefix := r.URL.Query().Get("account")

	detail := engine.NewDetailBuilder(h.sessions.Mapper())
	lines := detail.BuildJournalExtract(s.Entries, year, prefix, limit)
	writeJSON(w, r, http.StatusOK, map[string]any{"count": len(lines), "entries": lines})
}

// AskAgent routes a question through the Gemini-backed assistant.
func (h *Handler) AskAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "session")

	var body struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Question == "" {
		writeError(w, r, http.StatusBadRequest, errors.New("body must contain a question"))
		return
	}

	answer, err := h.sessions.Ask(ctx, id, body.Question)
	if err != nil {
		writeError(w, r, h.statusFor(err), err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"answer": answer})
}
