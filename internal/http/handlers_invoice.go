package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func (s *Server) handleInvoiceHTML(w http.ResponseWriter, r *http.Request) {
	bill, err := s.bills.Find(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := s.invoices.HTML(r.Context(), bill)
	if err != nil {
		writeError(w, r, fmt.Errorf("render invoice: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

func (s *Server) handleInvoicePDF(w http.ResponseWriter, r *http.Request) {
	bill, err := s.bills.Find(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	pdf, err := s.invoices.PDF(r.Context(), bill)
	if err != nil {
		writeError(w, r, fmt.Errorf("render invoice: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="invoice-%s.pdf"`, bill.InvoiceNumber()))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
