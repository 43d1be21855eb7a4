package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"ai-memories/internal/apperr"
	"ai-memories/internal/diary"
	"ai-memories/internal/history"
	"ai-memories/internal/journal"
	"ai-memories/internal/knowledge"
	"ai-memories/internal/llm"
	"ai-memories/internal/profile"
)

const maxBodyBytes = 1 << 20

type handlers struct {
	svc    *diary.Service
	logger *zap.Logger
}

// POST /api/journal
func (h *handlers) submitEntry(w http.ResponseWriter, r *http.Request) {
	var req diary.SubmitEntryRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.APIKey = apiKey(r, req.APIKey)

	res, err := h.svc.SubmitEntry(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, res)
}

// GET /api/entries[?yearStart=&yearEnd=]
func (h *handlers) listEntries(w http.ResponseWriter, r *http.Request) {
	start, err := yearParam(r, "yearStart")
	if err != nil {
		h.respondError(w, err)
		return
	}
	end, err := yearParam(r, "yearEnd")
	if err != nil {
		h.respondError(w, err)
		return
	}

	entries, err := h.svc.EntriesByEra(r.Context(), journal.NewEra(start, end, ""))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, entries)
}

func (h *handlers) getProfile(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.svc.Profile(r.Context()))
}

// POST /api/profile merges the body into the stored profile.
func (h *handlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if !h.decode(w, r, &fields) {
		return
	}
	p, err := h.svc.UpdateProfile(r.Context(), fields)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, p)
}

// converseBody also accepts the flat era fields older clients send.
type converseBody struct {
	Message      string        `json:"message"`
	History      []llm.Message `json:"history"`
	Mode         history.Mode  `json:"mode"`
	Era          journal.Era   `json:"era"`
	APIKey       string        `json:"apiKey"`
	PastSelf     bool          `json:"modoYoPasado"`
	EraYearStart *int          `json:"eraYearStart"`
	EraYearEnd   *int          `json:"eraYearEnd"`
	EraLabel     string        `json:"eraLabel"`
}

func (b converseBody) mode() history.Mode {
	if b.Mode == "" && b.PastSelf {
		return history.ModePastSelf
	}
	return b.Mode
}

func (b converseBody) era() journal.Era {
	if b.Era.Bounded() || b.Era.Label != "" {
		return b.Era
	}
	return journal.NewEra(b.EraYearStart, b.EraYearEnd, b.EraLabel)
}

// POST /api/converse and the legacy POST /api/chat
func (h *handlers) converse(w http.ResponseWriter, r *http.Request) {
	var body converseBody
	if !h.decode(w, r, &body) {
		return
	}
	res, err := h.svc.Converse(r.Context(), diary.ConverseRequest{
		Message: body.Message,
		History: body.History,
		Mode:    body.mode(),
		Era:     body.era(),
		APIKey:  apiKey(r, body.APIKey),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, res)
}

// POST /api/converse/open
func (h *handlers) open(w http.ResponseWriter, r *http.Request) {
	var body struct {
		converseBody
		Entry string `json:"entry"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	res, err := h.svc.Open(r.Context(), diary.OpenRequest{
		Mode:   body.mode(),
		Era:    body.era(),
		Entry:  body.Entry,
		APIKey: apiKey(r, body.APIKey),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, res)
}

type knowledgeResponse struct {
	NoMemories bool              `json:"noMemories"`
	Summary    string            `json:"summary"`
	Groups     []knowledge.Group `json:"groups"`
}

func (h *handlers) knowledge(w http.ResponseWriter, r *http.Request) {
	s := h.svc.Summary(r.Context())
	h.respondJSON(w, http.StatusOK, knowledgeResponse{
		NoMemories: s.IsNoMemories(),
		Summary:    s.String(),
		Groups:     s.Groups(),
	})
}

func (h *handlers) tags(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.svc.Tags(r.Context()))
}

// GET /api/stats[?date=YYYY-MM-DD], defaulting to today (UTC).
func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	date := time.Now().UTC()
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.respondError(w, apperr.Validation("stats", "date must be YYYY-MM-DD"))
			return
		}
		date = d
	}
	h.respondJSON(w, http.StatusOK, h.svc.DailyStats(r.Context(), date))
}

type onboardingResponse struct {
	Questions []profile.Question `json:"questions"`
	Next      *profile.Question  `json:"next"`
	Complete  bool               `json:"complete"`
}

func (h *handlers) onboarding(w http.ResponseWriter, r *http.Request) {
	p := h.svc.Profile(r.Context())
	resp := onboardingResponse{Questions: profile.OnboardingQuestions(), Complete: p.OnboardingComplete()}
	if q, ok := profile.NextQuestion(p); ok && !resp.Complete {
		resp.Next = &q
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// apiKey picks the credential a request carries: body, then X-API-Key,
// then a bearer token. Empty means "use the configured key".
func apiKey(r *http.Request, fromBody string) string {
	if k := strings.TrimSpace(fromBody); k != "" {
		return k
	}
	if k := strings.TrimSpace(r.Header.Get("X-API-Key")); k != "" {
		return k
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

func yearParam(r *http.Request, name string) (*int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, nil
	}
	year, err := strconv.Atoi(v)
	if err != nil {
		return nil, apperr.Validation("entries", name+" must be a year")
	}
	return &year, nil
}

func (h *handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) {
		err = errors.New("request body is empty")
	}
	h.respondError(w, apperr.Validation("decode request", "invalid request body: "+err.Error()))
	return false
}

func (h *handlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *handlers) respondError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	}
	h.respondJSON(w, status, map[string]any{
		"error": err.Error(),
		"kind":  apperr.KindOf(err),
	})
}
