package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"appliance-recon/internal/inventory"
)

type associateRequest struct {
	ApplianceIDs  []string `json:"applianceIds" validate:"required,min=1"`
	PartReference string   `json:"partReference" validate:"required"`
}

// Associate: неизвестные ID отбрасываются, в ответе число привязанных приборов.
func Associate(svc *inventory.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(logger, r)
		var req associateRequest
		if err := decode(r, &req); err != nil {
			badRequest(w, err)
			return
		}
		n, err := svc.Associate(r.Context(), req.ApplianceIDs, req.PartReference)
		if err != nil {
			fail(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"partReference": strings.TrimSpace(req.PartReference),
			"associated":    n,
		})
	}
}

// RemoveAssociation: DELETE /associations?applianceId=...&partReference=...
func RemoveAssociation(svc *inventory.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		id, ref := q.Get("applianceId"), strings.TrimSpace(q.Get("partReference"))
		if id == "" || ref == "" {
			writeError(w, http.StatusBadRequest, "applianceId and partReference are required")
			return
		}
		if err := svc.RemoveAssociation(r.Context(), id, ref); err != nil {
			fail(w, reqLogger(logger, r), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func Parts(svc *inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]string{"partReferences": svc.Known().PartReferences})
	}
}

func PartAppliances(svc *inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := url.PathUnescape(chi.URLParam(r, "ref"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad part reference")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"partReference": ref,
			"appliances":    svc.AppliancesFor(ref),
		})
	}
}

func Known(svc *inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Known())
	}
}
