package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/engagehub/internal/incident"
	"github.com/engagehub/internal/onboarding"
	"github.com/engagehub/internal/outreach"
	"github.com/engagehub/pkg/models"
)

// Session handlers

func (g *Gateway) handleScheduleSession(w http.ResponseWriter, r *http.Request) {
	var spec models.SessionSpec
	if err := parseRequestBody(r, &spec); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request body", err.Error())
		return
	}

	session, err := g.catalog.Schedule(r.Context(), spec)
	if err != nil {
		writeDomainError(w, "Failed to schedule session", err)
		return
	}
	writeSuccessResponse(w, http.StatusCreated, session, nil)
}

func (g *Gateway) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := g.catalog.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, "Failed to get session", err)
		return
	}
	writeSuccessResponse(w, http.StatusOK, session, nil)
}

func (g *Gateway) handleUpcomingSessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil {
			limit = l
		}
	}

	sessions, err := g.catalog.Upcoming(r.Context(), g.clock.Now(), limit)
	if err != nil {
		writeDomainError(w, "Failed to list sessions", err)
		return
	}

	meta := &APIMeta{Total: len(sessions), Limit: limit}
	if limit > 0 && len(sessions) == limit {
		meta.HasMore = true
	}
	writeSuccessResponse(w, http.StatusOK, sessions, meta)
}

// Registration handlers

type registerRequest struct {
	CustomerID string         `json:"customer_id"`
	Contact    models.Contact `json:"contact"`
	Questions  []string       `json:"questions,omitempty"`
}

func (g *Gateway) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request body", err.Error())
		return
	}

	reg, err := g.ledger.Register(r.Context(), mux.Vars(r)["id"], req.CustomerID, req.Contact, req.Questions)
	if err != nil {
		writeDomainError(w, "Failed to register", err)
		return
	}
	writeSuccessResponse(w, http.StatusCreated, reg, nil)
}

func (g *Gateway) handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := g.ledger.Registrations(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, "Failed to list registrations", err)
		return
	}
	writeSuccessResponse(w, http.StatusOK, regs, &APIMeta{Total: len(regs)})
}

type attendanceRequest struct {
	Attended bool             `json:"attended"`
	Feedback *models.Feedback `json:"feedback,omitempty"`
}

func (g *Gateway) handleRecordAttendance(w http.ResponseWriter, r *http.Request) {
	var req attendanceRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request body", err.Error())
		return
	}

	vars := mux.Vars(r)
	reg, err := g.ledger.RecordAttendance(r.Context(), vars["id"], vars["customerId"], req.Attended, req.Feedback)
	if err != nil {
		writeDomainError(w, "Failed to record attendance", err)
		return
	}
	writeSuccessResponse(w, http.StatusOK, reg, nil)
}

// Follow-up handlers

func (g *Gateway) handleAddFollowUp(w http.ResponseWriter, r *http.Request) {
	var action models.FollowUpAction
	if err := parseRequestBody(r, &action); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request body", err.Error())
		return
	}
	action.SessionID = mux.Vars(r)["id"]

	created, err := g.ledger.AddFollowUp(r.Context(), action)
	if err != nil {
		writeDomainError(w, "Failed to add follow-up", err)
		return
	}
	writeSuccessResponse(w, http.StatusCreated, created, nil)
}

type followUpUpdateRequest struct {
	Status models.ActionStatus `json:"status"`
	Notes  string              `json:"notes,omitempty"`
}

func (g *Gateway) handleUpdateFollowUp(w http.ResponseWriter, r *http.Request) {
	var req followUpUpdateRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request body", err.Error())
		return
	}

	action, err := g.ledger.UpdateFollowUpStatus(r.Context(), mux.Vars(r)["id"], req.Status, req.Notes)
	if err != nil {
		writeDomainError(w, "Failed to update follow-up", err)
		return
	}
	writeSuccessResponse(w, http.StatusOK, action, nil)
}

// Customer handlers

func (g *Gateway) handleOnboardCustomer(w http.ResponseWriter, r *http.Request) {
	var req onboarding.OnboardRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request body", err.Error())
		return
	}

	customer, err := g.onboarding.Onboard(r.Context(), req)
	if err != nil {
		writeDomainError(w, "Failed to onboard customer", err)
		return
	}
	writeSuccessResponse(w, http.StatusCreated, customer, nil)
}

func (g *Gateway) handleOutreachHistory(w http.ResponseWriter, r *http.Request) {
	history, err := g.outreach.History(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, "Failed to list outreach", err)
		return
	}
	writeSuccessResponse(w, http.StatusOK, history, &APIMeta{Total: len(history)})
}

func (g *Gateway) handlePlaybookHistory(w http.ResponseWriter, r *http.Request) {
	history, err := g.playbooks.History(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, "Failed to list playbooks", err)
		return
	}
	writeSuccessResponse(w, http.StatusOK, history, &APIMeta{Total: len(history)})
}

// Outreach handlers

func (g *Gateway) handleScheduleOutreach(w http.ResponseWriter, r *http.Request) {
	var spec outreach.OutreachSpec
	if err := parseRequestBody(r, &spec); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request body", err.Error())
		return
	}

	o, err := g.outreach.Schedule(r.Context(), spec)
	if err != nil {
		writeDomainError(w, "Failed to schedule outreach", err)
		return
	}
	writeSuccessResponse(w, http.StatusCreated, o, nil)
}

type completeOutreachRequest struct {
	Outcome    string  `json:"outcome"`
	TrustDelta float64 `json:"trust_delta"`
}

func (g *Gateway) handleCompleteOutreach(w http.ResponseWriter, r *http.Request) {
	var req completeOutreachRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request body", err.Error())
		return
	}

	o, err := g.outreach.Complete(r.Context(), mux.Vars(r)["id"], req.Outcome, req.TrustDelta)
	if err != nil {
		writeDomainError(w, "Failed to complete outreach", err)
		return
	}
	writeSuccessResponse(w, http.StatusOK, o, nil)
}

// Incident handlers

func (g *Gateway) handleRecordIncident(w http.ResponseWriter, r *http.Request) {
	var in incident.Incident
	if err := parseRequestBody(r, &in); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request body", err.Error())
		return
	}

	recorded, err := g.incidents.RecordIncident(r.Context(), in)
	if err != nil {
		writeDomainError(w, "Failed to record incident", err)
		return
	}
	writeSuccessResponse(w, http.StatusCreated, recorded, nil)
}

func (g *Gateway) handleGetIncident(w http.ResponseWriter, r *http.Request) {
	in, err := g.incidents.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, "Failed to get incident", err)
		return
	}
	writeSuccessResponse(w, http.StatusOK, in, nil)
}

// Report handler

func (g *Gateway) handleReport(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid start time", err.Error())
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid end time", err.Error())
		return
	}

	report, err := g.reporting.Report(r.Context(), models.TimeRange{Start: start, End: end})
	if err != nil {
		writeDomainError(w, "Failed to generate report", err)
		return
	}
	writeSuccessResponse(w, http.StatusOK, report, nil)
}
