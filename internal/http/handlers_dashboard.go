package http

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"invoicer/internal/core"
	"invoicer/internal/money"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.bills.Dashboard())
}

func handlePackages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, core.Packages)
}

type formatResponse struct {
	Amount    float64 `json:"amount"`
	Formatted string  `json:"formatted"`
	Words     string  `json:"words"`
}

// handleFormat previews how an amount prints on an invoice.
func handleFormat(w http.ResponseWriter, r *http.Request) {
	raw := strings.ReplaceAll(strings.TrimSpace(r.URL.Query().Get("amount")), ",", "")
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		writeError(w, r, badRequest("amount must be a finite number"))
		return
	}
	writeJSON(w, http.StatusOK, formatResponse{
		Amount:    amount,
		Formatted: money.FormatCurrency(amount),
		Words:     money.AmountToWords(amount),
	})
}
