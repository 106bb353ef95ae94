package http

import "net/http"

// DashboardStats devolve o resumo do quadro para o painel.
func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.requests.Stats(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}
