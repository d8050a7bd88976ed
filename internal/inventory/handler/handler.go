// Package handler: HTTP-слой инвентаря. Каждый обработчик возвращается замыканием над
// сервисом и логгером, как r.Post("/import", h.Import(svc, logger)).
package handler

import (
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"appliance-recon/internal/fileio"
	"appliance-recon/internal/inventory"
	"appliance-recon/internal/inventory/model"
	"appliance-recon/internal/inventory/parser"
)

type parseRequest struct {
	Text string `json:"text" validate:"required"`
}

type parseResponse struct {
	parser.Result
	model.Classification
	TwoColumnsFormat bool `json:"twoColumnsFormat"` // UI должен запросить марку/тип
}

// ParseImport: вставка из таблицы (text/plain или {"text": ...}) либо файл
// (multipart, поле "file") -> разбор + классификация по текущему инвентарю.
func ParseImport(svc *inventory.Service, maxUpload int64, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := reqLogger(logger, r)
		defer r.Body.Close()

		var (
			res    parser.Result
			cls    model.Classification
			err    error
			source string
		)
		mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		switch mt {
		case "multipart/form-data":
			if err := r.ParseMultipartForm(maxUpload); err != nil {
				badRequest(w, err)
				return
			}
			file, hdr, err := r.FormFile("file")
			if err != nil {
				writeError(w, http.StatusBadRequest, "missing file: "+err.Error())
				return
			}
			defer file.Close()

			rows, err := fileio.ReadAnyRows(file, hdr.Filename)
			if err != nil {
				writeError(w, http.StatusBadRequest, "failed to read file: "+err.Error())
				return
			}
			source = hdr.Filename
			res, cls, err = svc.ParseRows(rows)
			if err != nil {
				fail(w, log, err)
				return
			}

		case "application/json":
			var req parseRequest
			if err := decode(r, &req); err != nil {
				badRequest(w, err)
				return
			}
			source = "json"
			res, cls, err = svc.Parse(req.Text)

		default:
			raw, rerr := io.ReadAll(r.Body)
			if rerr != nil {
				badRequest(w, rerr)
				return
			}
			if strings.TrimSpace(string(raw)) == "" {
				writeError(w, http.StatusBadRequest, "empty body")
				return
			}
			source = "text"
			res, cls, err = svc.Parse(string(raw))
		}
		if err != nil {
			fail(w, log, err)
			return
		}

		writeJSON(w, http.StatusOK, parseResponse{Result: res, Classification: cls, TwoColumnsFormat: res.TwoColumns()})
		log.Info().
			Str("source", source).
			Str("format", string(res.Format)).
			Int("records", len(res.Records)).
			Int("row_errors", len(res.Errors)).
			Int("to_import", len(cls.ToImport)).
			Int("to_complete", len(cls.ToComplete)).
			Dur("elapsed", time.Since(start)).
			Msg("parse done")
	}
}

type importRecord struct {
	ID            string `json:"id"`
	Reference     string `json:"reference" validate:"required"`
	CommercialRef string `json:"commercialRef"`
	Brand         string `json:"brand"`
	Type          string `json:"type"`
	DateAdded     string `json:"dateAdded" validate:"omitempty,datetime=2006-01-02"`
}

type importRequest struct {
	Records       []importRecord `json:"records" validate:"required,min=1,dive"`
	PartReference string         `json:"partReference"`
}

type importResponse struct {
	model.ImportResult
	Associated int `json:"associated"`
}

// Import сохраняет проверенные записи. Если передан partReference, новые
// приборы сразу привязываются к нему по ID из результата импорта.
func Import(svc *inventory.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(logger, r)
		var req importRequest
		if err := decode(r, &req); err != nil {
			badRequest(w, err)
			return
		}

		records := make([]model.Appliance, 0, len(req.Records))
		for _, rec := range req.Records {
			records = append(records, model.Appliance{
				ID:            rec.ID,
				Reference:     rec.Reference,
				CommercialRef: rec.CommercialRef,
				Brand:         rec.Brand,
				Type:          rec.Type,
				DateAdded:     rec.DateAdded,
			})
		}

		res, n, err := svc.ImportAndAssociate(r.Context(), records, req.PartReference)
		if err != nil {
			fail(w, log, err)
			return
		}

		status := http.StatusOK
		if res.ImportedCount > 0 {
			status = http.StatusCreated
		}
		writeJSON(w, status, importResponse{ImportResult: res, Associated: n})
		log.Info().
			Int("imported", res.ImportedCount).
			Int("skipped", len(res.Skipped)).
			Int("incomplete", len(res.Incomplete)).
			Int("associated", n).
			Msg("import done")
	}
}

// Suggest: GET /suggest?reference=...&brand=...
func Suggest(svc *inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		ref := strings.TrimSpace(q.Get("reference"))
		if ref == "" {
			writeError(w, http.StatusBadRequest, "reference is required")
			return
		}
		writeJSON(w, http.StatusOK, svc.Suggest(ref, q.Get("brand")))
	}
}
