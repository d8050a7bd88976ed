package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"appliance-recon/internal/inventory"
	"appliance-recon/internal/inventory/search"
)

type listResponse struct {
	Items []search.Hit `json:"items"`
	Total int          `json:"total"`
}

// ListAppliances: без q отдаёт весь инвентарь, с q ищет (threshold переопределяет порог).
func ListAppliances(svc *inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		hits := svc.Search(q.Get("q"), toFloat(q.Get("threshold"), 0))
		writeJSON(w, http.StatusOK, listResponse{Items: hits, Total: len(hits)})
	}
}

type patchRequest struct {
	IDs           []string `json:"ids" validate:"required,min=1,dive,required"`
	Brand         *string  `json:"brand"`
	Type          *string  `json:"type"`
	CommercialRef *string  `json:"commercialRef"`
}

// UpdateAppliances: массовая правка марки/типа/коммерческой референции.
func UpdateAppliances(svc *inventory.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(logger, r)
		var req patchRequest
		if err := decode(r, &req); err != nil {
			badRequest(w, err)
			return
		}
		if req.Brand == nil && req.Type == nil && req.CommercialRef == nil {
			writeError(w, http.StatusBadRequest, "nothing to update")
			return
		}

		n, err := svc.UpdateAppliances(r.Context(), req.IDs, inventory.Patch{
			Brand:         req.Brand,
			Type:          req.Type,
			CommercialRef: req.CommercialRef,
		})
		if err != nil {
			fail(w, log, err)
			return
		}
		log.Info().Int("requested", len(req.IDs)).Int("updated", n).Msg("bulk update")
		writeJSON(w, http.StatusOK, map[string]int{"updated": n})
	}
}

type deletePreview struct {
	ID              string   `json:"id"`
	PartReferences  []string `json:"partReferences"`
	ConfirmRequired bool     `json:"confirmRequired"`
}

// DeleteAppliance в два шага: без ?confirm=true возвращает связи, которые
// будут удалены вместе с прибором; с подтверждением: удаляет.
func DeleteAppliance(svc *inventory.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(logger, r)
		id := chi.URLParam(r, "id")

		if !toBool(r.URL.Query().Get("confirm"), false) {
			refs, err := svc.PartReferencesFor(id)
			if err != nil {
				fail(w, log, err)
				return
			}
			writeJSON(w, http.StatusOK, deletePreview{ID: id, PartReferences: refs, ConfirmRequired: true})
			return
		}

		if err := svc.DeleteAppliance(r.Context(), id); err != nil {
			fail(w, log, err)
			return
		}
		log.Info().Str("appliance_id", id).Msg("appliance deleted")
		w.WriteHeader(http.StatusNoContent)
	}
}

// ClearAll стирает инвентарь и связи; только с ?confirm=true.
func ClearAll(svc *inventory.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(logger, r)
		if !toBool(r.URL.Query().Get("confirm"), false) {
			writeError(w, http.StatusBadRequest, "confirm=true is required")
			return
		}
		if err := svc.ClearAll(r.Context()); err != nil {
			fail(w, log, err)
			return
		}
		log.Warn().Msg("inventory cleared")
		w.WriteHeader(http.StatusNoContent)
	}
}

func ApplianceParts(svc *inventory.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		refs, err := svc.PartReferencesFor(id)
		if err != nil {
			fail(w, reqLogger(logger, r), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"applianceId": id, "partReferences": refs})
	}
}
