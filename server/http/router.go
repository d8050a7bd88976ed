package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"appliance-recon/internal/config"
	"appliance-recon/internal/inventory"
	invHnd "appliance-recon/internal/inventory/handler"
	"appliance-recon/internal/middleware"
	"appliance-recon/server/http/handlers"
)

func NewRouter(cfg config.Config, svc *inventory.Service, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(cfg.MaxUploadBytes()))

	r.Get("/health", handlers.Health)

	// импорт
	r.Post("/import/parse", invHnd.ParseImport(svc, cfg.MaxUploadBytes(), logger))
	r.Post("/import", invHnd.Import(svc, logger))
	r.Get("/suggest", invHnd.Suggest(svc))

	// инвентарь
	r.Route("/appliances", func(r chi.Router) {
		r.Get("/", invHnd.ListAppliances(svc))
		r.Patch("/", invHnd.UpdateAppliances(svc, logger))
		r.Delete("/", invHnd.ClearAll(svc, logger))
		r.Delete("/{id}", invHnd.DeleteAppliance(svc, logger))
		r.Get("/{id}/parts", invHnd.ApplianceParts(svc, logger))
	})

	// связи с запчастями
	r.Post("/associations", invHnd.Associate(svc, logger))
	r.Delete("/associations", invHnd.RemoveAssociation(svc, logger))
	r.Get("/parts", invHnd.Parts(svc))
	r.Get("/parts/{ref}/appliances", invHnd.PartAppliances(svc))
	r.Get("/known", invHnd.Known(svc))

	// обслуживание
	r.Get("/duplicates", invHnd.Duplicates(svc))
	r.Post("/duplicates/merge", invHnd.MergeDuplicates(svc, logger))
	r.Get("/export.csv", invHnd.ExportCSV(svc, logger))
	r.Get("/export.xlsx", invHnd.ExportXLSX(svc, logger))

	return r
}
