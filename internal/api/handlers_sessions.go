// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/sessiond/internal/domain/session/lifecycle"
	"github.com/ManuGH/sessiond/internal/domain/session/manager"
	"github.com/ManuGH/sessiond/internal/domain/session/model"
	xglog "github.com/ManuGH/sessiond/internal/log"
)

type createSessionRequest struct {
	Phone string `json:"phone"`
}

type createSessionResponse struct {
	Status string `json:"status,omitempty"`
	QRURL  string `json:"qr_url,omitempty"`
}

type statusResponse struct {
	Status string `json:"status"`
	QRURL  string `json:"qr_url,omitempty"`
}

// handleCreateSession implements POST /sessions.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	logger := xglog.WithComponentFromContext(r.Context(), "api")

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Phone == "" {
		writeError(w, r, http.StatusBadRequest, "phone is required")
		return
	}
	id, err := model.ParseSessionID(req.Phone)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid phone identifier")
		return
	}

	res, err := s.sessions.Create(r.Context(), id)
	switch {
	case errors.Is(err, lifecycle.ErrConflict):
		writeError(w, r, http.StatusConflict, "session already exists or is connecting for this phone number")
		return
	case errors.Is(err, lifecycle.ErrShuttingDown):
		writeError(w, r, http.StatusServiceUnavailable, "service is shutting down")
		return
	case err != nil:
		logger.Error().Err(err).Str(xglog.FieldSessionID, id.String()).Msg("session create failed")
		writeError(w, r, http.StatusInternalServerError, "failed to initiate session")
		return
	}

	switch res.Status {
	case manager.CreateQR:
		writeJSON(w, r, http.StatusCreated, createSessionResponse{QRURL: res.CodeURL})
	case manager.CreateAuthenticated:
		writeJSON(w, r, http.StatusOK, createSessionResponse{Status: "authenticated"})
	case manager.CreatePending:
		writeJSON(w, r, http.StatusAccepted, createSessionResponse{Status: "pending"})
	default:
		msg := "session failed before completing pairing"
		if res.Err != nil {
			msg = res.Err.Error()
		}
		logger.Warn().Str(xglog.FieldSessionID, id.String()).Str("detail", msg).Msg("session failed during create")
		writeError(w, r, http.StatusInternalServerError, msg)
	}
}

// handleSessionStatus implements GET /sessions/{phone}/status.
func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseSessionID(chi.URLParam(r, "phone"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid phone identifier")
		return
	}

	snap, ok := s.sessions.Get(id)
	if !ok {
		writeJSON(w, r, http.StatusNotFound, statusResponse{Status: "not_found"})
		return
	}

	switch snap.State {
	case model.StateAuthenticated:
		writeJSON(w, r, http.StatusOK, statusResponse{Status: "authenticated"})
	case model.StateDisconnected, model.StateReconnecting:
		writeJSON(w, r, http.StatusOK, statusResponse{Status: "reconnecting"})
	default:
		resp := statusResponse{Status: "pending_qr"}
		if snap.HasCode {
			resp.QRURL = snap.CodeURL
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

// handleDeleteSession implements DELETE /sessions/{phone}.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	logger := xglog.WithComponentFromContext(r.Context(), "api")

	id, err := model.ParseSessionID(chi.URLParam(r, "phone"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid phone identifier")
		return
	}

	err = s.sessions.Remove(r.Context(), id)
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		writeJSON(w, r, http.StatusNotFound, statusResponse{Status: "not_found"})
	case errors.Is(err, lifecycle.ErrTimeout):
		writeError(w, r, http.StatusGatewayTimeout, "logout did not complete in time")
	case err != nil:
		logger.Error().Err(err).Str(xglog.FieldSessionID, id.String()).Msg("session delete failed")
		writeError(w, r, http.StatusInternalServerError, "failed to log out session")
	default:
		writeJSON(w, r, http.StatusOK, statusResponse{Status: "logged_out"})
	}
}
