// ABOUTME: Profile endpoints: static profile content plus persisted toggles.
// ABOUTME: Setting updates are validated against the known names before they reach the store.

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/2389/lehmate/internal/content"
	"github.com/2389/lehmate/internal/settings"
)

// ProfileResponse is the JSON response for GET /api/profile.
type ProfileResponse struct {
	Profile          content.Profile          `json:"profile"`
	Settings         settings.Settings        `json:"settings"`
	Downloads        []content.Download       `json:"downloads"`
	EmergencyContact content.EmergencyContact `json:"emergency_contact"`
	ModelStatus      content.ModelStatus      `json:"model_status"`
}

// UpdateSettingRequest is the JSON request body for PUT /api/settings/{name}.
type UpdateSettingRequest struct {
	Enabled *bool `json:"enabled"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	current, err := s.settings.Load(r.Context())
	if err != nil {
		s.logger.Error("failed to load settings", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	respondJSON(w, http.StatusOK, ProfileResponse{
		Profile:          s.catalog.Profile,
		Settings:         current,
		Downloads:        s.catalog.Downloads,
		EmergencyContact: s.catalog.EmergencyContact,
		ModelStatus:      s.catalog.ModelStatus,
	})
}

func (s *Server) handleUpdateSetting(w http.ResponseWriter, r *http.Request) {
	name, err := settings.ParseName(chi.URLParam(r, "name"))
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	var req UpdateSettingRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil || req.Enabled == nil {
		respondError(w, http.StatusBadRequest, "body must be {\"enabled\": true|false}")
		return
	}

	if err := s.settings.Set(r.Context(), name, *req.Enabled); err != nil {
		if errors.Is(err, settings.ErrUnknownSetting) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error("failed to save setting", "setting", name, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save setting")
		return
	}

	current, err := s.settings.Load(r.Context())
	if err != nil {
		s.logger.Error("failed to load settings", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	respondJSON(w, http.StatusOK, current)
}

func (s *Server) handleResetSetting(w http.ResponseWriter, r *http.Request) {
	name, err := settings.ParseName(chi.URLParam(r, "name"))
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	if err := s.settings.Reset(r.Context(), name); err != nil {
		s.logger.Error("failed to reset setting", "setting", name, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to reset setting")
		return
	}

	current, err := s.settings.Load(r.Context())
	if err != nil {
		s.logger.Error("failed to load settings", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	respondJSON(w, http.StatusOK, current)
}
