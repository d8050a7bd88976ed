package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"appliance-recon/internal/inventory"
	"appliance-recon/internal/inventory/export"
)

func Duplicates(svc *inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups := svc.DuplicateGroups()
		writeJSON(w, http.StatusOK, map[string]any{"groups": groups, "total": len(groups)})
	}
}

type mergeRequest struct {
	Key    string `json:"key" validate:"required"`
	KeepID string `json:"keepId" validate:"required"`
	Brand  string `json:"brand"`
	Type   string `json:"type"`
}

// MergeDuplicates оставляет keepId, остальные карточки группы удаляются.
func MergeDuplicates(svc *inventory.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(logger, r)
		var req mergeRequest
		if err := decode(r, &req); err != nil {
			badRequest(w, err)
			return
		}
		res, err := svc.MergeDuplicates(r.Context(), req.Key, req.KeepID, req.Brand, req.Type)
		if err != nil {
			fail(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func attachment(w http.ResponseWriter, contentType, ext string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="appliances-%s.%s"`, time.Now().Format("20060102"), ext))
}

// ExportCSV: с ?header=false без строки заголовков.
func ExportCSV(svc *inventory.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows := svc.ExportRows()
		attachment(w, "text/csv; charset=utf-8", "csv")
		if err := export.WriteCSV(w, rows, toBool(r.URL.Query().Get("header"), true)); err != nil {
			log := reqLogger(logger, r)
			log.Error().Err(err).Msg("write csv")
		}
	}
}

func ExportXLSX(svc *inventory.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows := svc.ExportRows()
		attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx")
		if err := export.WriteXLSX(w, rows); err != nil {
			log := reqLogger(logger, r)
			log.Error().Err(err).Msg("write xlsx")
		}
	}
}
