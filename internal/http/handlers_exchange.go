package http

import (
	"net/http"
	"strconv"
)

func (s *Server) handleExchangeRates(w http.ResponseWriter, r *http.Request) {
	base := r.PathValue("base")
	if base == "" {
		base = "USD"
	}

	rates, err := s.exchange.GetRates(r.Context(), base)
	if err != nil {
		writeExchangeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rates)
}

func (s *Server) handleExchangeConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	amountStr := q.Get("amount")
	if amountStr == "" {
		writeError(w, http.StatusUnprocessableEntity, "Missing amount parameter")
		return
	}
	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid amount parameter")
		return
	}

	from := q.Get("from_currency")
	if from == "" {
		from = "USD"
	}
	to := q.Get("to_currency")
	if to == "" {
		to = "EUR"
	}

	conversion, err := s.exchange.Convert(r.Context(), amount, from, to)
	if err != nil {
		writeExchangeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, conversion)
}
