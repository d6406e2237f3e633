package api

import (
	"net/http"

	"cadre-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

func (h *handler) createListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, r, "invalid json body")
		return
	}

	ownerID, _ := utils.GetUserIDFromContext(r.Context())
	l, err := h.listings.CreateListing(r.Context(), req.toInput(ownerID))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, l)
}

func (h *handler) getListing(w http.ResponseWriter, r *http.Request) {
	l, err := h.listings.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, l)
}

func (h *handler) approveListing(w http.ResponseWriter, r *http.Request) {
	l, err := h.listings.ApproveListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, l)
}
