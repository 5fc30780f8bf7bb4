package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dentflow/dentflow/pkg/store"
)

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	appointments, page, err := s.appointments.List(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pagedBody{Results: appointments, PageInfo: page})
}

func (s *Server) handleGetAppointment(w http.ResponseWriter, r *http.Request) {
	appt, err := s.appointments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (s *Server) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	var appt store.Appointment
	if err := decodeJSON(r, &appt); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.appointments.Create(r.Context(), appt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleSetAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.appointments.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := s.appointments.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
