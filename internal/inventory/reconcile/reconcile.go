// Сверка строк импорта с инвентарём: дубли, точные совпадения, подсказки.
package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"appliance-recon/internal/inventory/model"
	"appliance-recon/internal/inventory/suggest"
	"appliance-recon/internal/utils"
)

// ApplianceSaver: часть контракта хранилища, нужная импорту.
type ApplianceSaver interface {
	SaveAppliances(ctx context.Context, items []model.Appliance) error
}

type Engine struct {
	store ApplianceSaver
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

func New(store ApplianceSaver, log zerolog.Logger) *Engine {
	return &Engine{store: store, log: log, now: time.Now, newID: uuid.NewString}
}

// WithClock подменяет часы (для тестов).
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Classify раскладывает кандидатов на готовые к импорту и требующие дозаполнения.
// Точное совпадение референции применяется сразу; частичные подсказки тоже
// подставляются, но помечаются в Suggested и Resolution=suggested.
func (e *Engine) Classify(candidates, existing []model.Appliance) model.Classification {
	out := model.Classification{ToImport: []model.Candidate{}, ToComplete: []model.Candidate{}}
	sug := suggest.New(existing)

	for _, c := range candidates {
		cand := model.Candidate{Appliance: trimmed(c), Resolution: model.ResolvedProvided}
		provided := !cand.Incomplete()

		// (1) та же референция уже есть в инвентаре: это тот же прибор
		if ex, ok := findByRef(existing, cand.Reference, cand.ID); ok {
			cand.ExistingID = ex.ID
			filled := false
			if cand.Brand == "" && strings.TrimSpace(ex.Brand) != "" {
				cand.Brand, filled = strings.TrimSpace(ex.Brand), true
			}
			if cand.Type == "" && strings.TrimSpace(ex.Type) != "" {
				cand.Type, filled = strings.TrimSpace(ex.Type), true
			}
			if cand.CommercialRef == "" {
				cand.CommercialRef = ex.CommercialRef
			}
			if filled {
				cand.Resolution = model.ResolvedExact
			}
		}

		// (2) эвристика по оставшимся пустым полям
		if cand.Brand == "" {
			if s, ok := sug.Brand(cand.Reference); ok {
				cand.Brand = s.Value
				cand.Resolution = mark(&cand, "brand", s)
			}
		}
		if cand.Type == "" {
			if s, ok := sug.Type(cand.Reference, cand.Brand); ok {
				cand.Type = s.Value
				cand.Resolution = mark(&cand, "type", s)
			}
		}

		if cand.Incomplete() {
			cand.Resolution = model.ResolvedMissing
			out.ToComplete = append(out.ToComplete, cand)
			continue
		}
		if provided {
			cand.Resolution = model.ResolvedProvided
		}
		out.ToImport = append(out.ToImport, cand)
	}

	e.log.Debug().
		Int("candidates", len(candidates)).
		Int("to_import", len(out.ToImport)).
		Int("to_complete", len(out.ToComplete)).
		Msg("classify")
	return out
}

// mark фиксирует источник подставленного значения; suggested «липкий».
func mark(c *model.Candidate, field string, s suggest.Suggestion) model.Resolution {
	if !s.Certain() {
		c.Suggested = append(c.Suggested, field)
		return model.ResolvedSuggested
	}
	if c.Resolution == model.ResolvedSuggested {
		return c.Resolution
	}
	return model.ResolvedExact
}

// ImportBatch сохраняет новые уникальные записи и возвращает присвоенные ID.
// Эти ID единственный источник для последующей привязки запчастей,
// перечитывать хранилище после импорта нельзя.
// Возвращает также новое состояние коллекции (existing + добавленные).
func (e *Engine) ImportBatch(ctx context.Context, records, existing []model.Appliance) (model.ImportResult, []model.Appliance, error) {
	res := model.ImportResult{ImportedIDs: []string{}, Skipped: []string{}, Incomplete: []string{}}

	seenRef := make(map[string]struct{}, len(existing)+len(records))
	seenID := make(map[string]struct{}, len(existing)+len(records))
	for _, a := range existing {
		seenRef[utils.NormalizeRef(a.Reference)] = struct{}{}
		seenID[a.ID] = struct{}{}
	}

	today := e.now().Format("2006-01-02")
	added := make([]model.Appliance, 0, len(records))
	for _, r := range records {
		r = trimmed(r)
		key := utils.NormalizeRef(r.Reference)
		if key == "" {
			res.NoReference++
			continue
		}
		if _, dup := seenRef[key]; dup {
			res.Skipped = append(res.Skipped, r.Reference)
			continue
		}
		if r.Incomplete() {
			res.Incomplete = append(res.Incomplete, r.Reference)
			continue
		}
		seenRef[key] = struct{}{}

		if _, taken := seenID[r.ID]; r.ID == "" || taken {
			r.ID = e.newID()
		}
		seenID[r.ID] = struct{}{}
		if r.DateAdded == "" {
			r.DateAdded = today
		}
		added = append(added, r)
		res.ImportedIDs = append(res.ImportedIDs, r.ID)
	}
	res.ImportedCount = len(added)

	if len(added) == 0 {
		return res, existing, nil
	}

	merged := make([]model.Appliance, 0, len(existing)+len(added))
	merged = append(merged, existing...)
	merged = append(merged, added...)
	if err := e.store.SaveAppliances(ctx, merged); err != nil {
		return model.ImportResult{}, existing, fmt.Errorf("save appliances: %w", err)
	}

	e.log.Info().
		Int("imported", res.ImportedCount).
		Int("skipped_duplicates", len(res.Skipped)).
		Int("incomplete", len(res.Incomplete)).
		Int("no_reference", res.NoReference).
		Msg("import batch")
	return res, merged, nil
}

// findByRef: карточка с той же референцией, но не сам кандидат.
func findByRef(items []model.Appliance, ref, selfID string) (model.Appliance, bool) {
	for _, a := range items {
		if a.ID != selfID && utils.SameRef(a.Reference, ref) {
			return a, true
		}
	}
	return model.Appliance{}, false
}

func trimmed(a model.Appliance) model.Appliance {
	a.Reference = strings.TrimSpace(a.Reference)
	a.CommercialRef = strings.TrimSpace(a.CommercialRef)
	a.Brand = strings.TrimSpace(a.Brand)
	a.Type = strings.TrimSpace(a.Type)
	return a
}
