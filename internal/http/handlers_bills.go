package http

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"invoicer/internal/core"
	"invoicer/internal/services"
)

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	var t core.BillType
	if v := strings.TrimSpace(r.URL.Query().Get("type")); v != "" {
		parsed, err := core.ParseBillType(v)
		if err != nil {
			writeError(w, r, badRequest("unknown bill type %q", v))
			return
		}
		t = parsed
	}
	writeJSON(w, http.StatusOK, s.bills.List(t))
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	bill, err := s.bills.Find(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (s *Server) handleCreateCorporate(w http.ResponseWriter, r *http.Request) {
	var form services.CorporateForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	bill, err := s.bills.CreateCorporate(r.Context(), form)
	s.writeCreated(w, r, bill, err)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var form services.EventForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	bill, err := s.bills.CreateEvent(r.Context(), form)
	s.writeCreated(w, r, bill, err)
}

func (s *Server) writeCreated(w http.ResponseWriter, r *http.Request, bill core.Bill, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/bills/"+bill.ID)
	writeJSON(w, http.StatusCreated, bill)
}

func (s *Server) handleUpdateCorporate(w http.ResponseWriter, r *http.Request) {
	var form services.CorporateForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	bill, err := s.bills.UpdateCorporate(r.Context(), mux.Vars(r)["id"], form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var form services.EventForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	bill, err := s.bills.UpdateEvent(r.Context(), mux.Vars(r)["id"], form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.bills.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
