package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gmcavallazzi/opthome/pkg/controller"
	"github.com/gmcavallazzi/opthome/pkg/log"
	"github.com/gmcavallazzi/opthome/pkg/optimizer"
	"github.com/gmcavallazzi/opthome/pkg/types"
)

// exportFilename is the attachment name used by GET /api/export.
const exportFilename = "appliances_data.json"

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sched, err := s.controller.Optimize(ctx)
	if err != nil {
		var upstream *optimizer.UpstreamError
		switch {
		case errors.Is(err, optimizer.ErrRunInFlight):
			writeJSONError(w, "an optimization run is already in progress", http.StatusConflict)
		case errors.As(err, &upstream):
			log.Ctx(ctx).ErrorContext(ctx, "optimizer failed", slog.Any("error", err))
			writeJSONError(w, upstream.Message, http.StatusBadGateway)
		default:
			log.Ctx(ctx).ErrorContext(ctx, "optimization failed", slog.Any("error", err))
			writeJSONError(w, "optimization failed", http.StatusBadGateway)
		}
		return
	}
	writeJSON(w, sched)
}

func (s *Server) handleListAppliances(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.controller.Appliances())
}

func (s *Server) handleAddAppliance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var app types.Appliance
	if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	added, err := s.controller.AddAppliance(ctx, app)
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "rejected appliance", slog.Any("error", err))
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(added); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) handleUpdateApplianceHours(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		ID    int   `json:"id"`
		Hours []int `json:"hours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	app, err := s.controller.UpdateApplianceHours(ctx, req.ID, req.Hours)
	if err != nil {
		if errors.Is(err, controller.ErrApplianceNotFound) {
			writeJSONError(w, "appliance not found", http.StatusNotFound)
			return
		}
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, app)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, s.controller.Dashboard(r.Context()))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snap, err := s.controller.Snapshot()
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to build export", slog.Any("error", err))
		writeJSONError(w, "failed to build export", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	writeJSON(w, snap)
}

// handleImport accepts an optimizer result produced out of band and installs
// it as the active schedule. A body that does not parse leaves the current
// state untouched.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var sched types.OptimizedSchedule
	if err := json.NewDecoder(r.Body).Decode(&sched); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "rejected schedule import", slog.Any("error", err))
		writeJSONError(w, "invalid schedule JSON", http.StatusBadRequest)
		return
	}

	s.controller.ImportSchedule(ctx, sched)
	writeJSON(w, s.controller.Dashboard(ctx))
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, s.controller.Profile())
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		types.EnergyProfile
		SolarEnabled *bool `json:"solar_enabled,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.SolarEnabled != nil {
		s.controller.SetSolarEnabled(ctx, *req.SolarEnabled)
	}
	profile, err := s.controller.UpdateProfile(ctx, req.EnergyProfile)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, profile)
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	sched, err := s.controller.Schedule()
	if err != nil {
		writeJSONError(w, "no optimized schedule available", http.StatusNotFound)
		return
	}
	writeJSON(w, sched)
}

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sites, err := s.storage.ListSites(ctx)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to list sites", slog.Any("error", err))
		writeJSONError(w, "failed to list sites", http.StatusInternalServerError)
		return
	}
	if sites == nil {
		sites = []string{}
	}
	writeJSON(w, sites)
}
