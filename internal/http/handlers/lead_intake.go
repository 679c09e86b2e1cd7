package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/wolfman30/leadrelay/internal/http/middleware"
	"github.com/wolfman30/leadrelay/internal/leads"
	"github.com/wolfman30/leadrelay/internal/notify"
	"github.com/wolfman30/leadrelay/internal/observability/metrics"
	"github.com/wolfman30/leadrelay/pkg/logging"
)

// Dispatcher fans a validated lead out to the notification channels.
type Dispatcher interface {
	Dispatch(ctx context.Context, lead *leads.Lead) (notify.Results, error)
}

// LeadIntakeHandler serves POST /api/lead.
type LeadIntakeHandler struct {
	dispatcher Dispatcher
	limits     leads.Limits
	metrics    *metrics.LeadMetrics
	logger     *logging.Logger
	now        func() time.Time
}

// NewLeadIntakeHandler creates the public lead intake endpoint.
func NewLeadIntakeHandler(dispatcher Dispatcher, limits leads.Limits, m *metrics.LeadMetrics, logger *logging.Logger) *LeadIntakeHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeadIntakeHandler{
		dispatcher: dispatcher,
		limits:     limits,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// LeadIntakeResponse is returned for every accepted submission.
type LeadIntakeResponse struct {
	OK      bool           `json:"ok"`
	Results notify.Results `json:"results,omitempty"`
}

// Intake outcomes, used as the metrics label.
const (
	outcomeAccepted = "accepted"
	outcomeHoneypot = "honeypot"
	outcomeInvalid  = "invalid"
	outcomeAborted  = "aborted"
	outcomeError    = "error"
)

func (h *LeadIntakeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxBodyBytes())

	sub, err := leads.ParseSubmission(r, h.limits)
	if err != nil {
		h.reject(w, err)
		return
	}

	if sub.IsBot() {
		h.metrics.ObserveIntake(outcomeHoneypot)
		h.logger.Info("lead intake: honeypot triggered", "remote_ip", middleware.RequestIP(r))
		writeJSON(w, http.StatusOK, LeadIntakeResponse{OK: true})
		return
	}

	lead, err := leads.NewLead(sub, middleware.RequestIP(r), h.now())
	if err != nil {
		h.reject(w, err)
		return
	}

	results, err := h.dispatcher.Dispatch(r.Context(), lead)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			h.metrics.ObserveIntake(outcomeAborted)
			h.logger.Warn("lead intake: request aborted before dispatch", "lead_id", lead.ID, "error", err)
			return
		}
		h.metrics.ObserveIntake(outcomeError)
		h.logger.Error("lead intake: dispatch failed", "lead_id", lead.ID, "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	h.metrics.ObserveIntake(outcomeAccepted)
	h.logger.Info("lead intake: lead processed",
		"lead_id", lead.ID,
		"name", lead.Name,
		"company", lead.Company,
		"attachments", len(lead.Attachments),
		"results", results,
	)
	writeJSON(w, http.StatusOK, LeadIntakeResponse{OK: true, Results: results})
}

func (h *LeadIntakeHandler) reject(w http.ResponseWriter, err error) {
	if !leads.IsValidationError(err) {
		h.metrics.ObserveIntake(outcomeError)
		h.logger.Error("lead intake: unexpected error", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	h.metrics.ObserveIntake(outcomeInvalid)
	h.logger.Info("lead intake: rejected", "error", err)
	http.Error(w, validationMessage(err), http.StatusBadRequest)
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, leads.ErrInvalidName):
		return "Missing name"
	case errors.Is(err, leads.ErrMissingContact):
		return "Missing contact (email or phone)"
	case errors.Is(err, leads.ErrTooManyFiles):
		return "Too many files"
	case errors.Is(err, leads.ErrFileTooLarge):
		return "File too large"
	case errors.Is(err, leads.ErrBodyTooLarge):
		return "Request too large"
	default:
		return "Malformed request"
	}
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
