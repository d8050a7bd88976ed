// Package inventory: единственный владелец коллекций приборов и связей.
// Все мутации сериализуются одним мьютексом. Источник истины: снимок в памяти,
// хранилище получает коллекции целиком после каждой мутации.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"appliance-recon/internal/inventory/association"
	"appliance-recon/internal/inventory/duplicates"
	"appliance-recon/internal/inventory/export"
	"appliance-recon/internal/inventory/model"
	"appliance-recon/internal/inventory/parser"
	"appliance-recon/internal/inventory/reconcile"
	"appliance-recon/internal/inventory/search"
	"appliance-recon/internal/inventory/suggest"
	"appliance-recon/internal/store"
	"appliance-recon/internal/utils"
)

var (
	ErrApplianceNotFound = errors.New("appliance not found")
	ErrGroupNotFound     = errors.New("duplicate group not found")
)

const DefaultSearchThreshold = 0.75

// MethodAll: метод попадания для пустого запроса.
const MethodAll = "all"

type Service struct {
	mu    sync.Mutex
	store store.Store
	log   zerolog.Logger
	now   func() time.Time

	parser *parser.Parser
	recon  *reconcile.Engine
	dups   *duplicates.Resolver
	assoc  *association.Manager

	appliances []model.Appliance
	byID       map[string]int

	// производные множества и индекс поиска, ключ: версия коллекций
	version      uint64
	knownVersion uint64
	known        Known
	index        *search.Index
	indexVersion uint64
	threshold    float64
}

// Known: известные значения для автодополнения в UI.
type Known struct {
	Brands         []string `json:"brands"`
	Types          []string `json:"types"`
	PartReferences []string `json:"partReferences"`
}

// Suggestions: подсказки по референции; nil, если подсказать нечего.
type Suggestions struct {
	Brand *suggest.Suggestion `json:"brand"`
	Type  *suggest.Suggestion `json:"type"`
}

// Patch: массовая правка; nil-поля не трогаются.
type Patch struct {
	Brand         *string `json:"brand"`
	Type          *string `json:"type"`
	CommercialRef *string `json:"commercialRef"`
}

func New(st store.Store, log zerolog.Logger) *Service {
	s := &Service{
		store:     st,
		log:       log,
		now:       time.Now,
		parser:    parser.New(),
		recon:     reconcile.New(st, log),
		dups:      duplicates.New(),
		byID:      make(map[string]int),
		threshold: DefaultSearchThreshold,
	}
	s.assoc = association.New(st, s.lookup, log)
	return s
}

// SetSearchThreshold: порог схожести нечёткого поиска (0..1).
func (s *Service) SetSearchThreshold(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v > 0 && v <= 1 {
		s.threshold = v
	}
}

// Load поднимает снимок из хранилища.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	apps, err := s.store.LoadAppliances(ctx)
	if err != nil {
		return fmt.Errorf("load appliances: %w", err)
	}
	assocs, err := s.store.LoadAssociations(ctx)
	if err != nil {
		return fmt.Errorf("load associations: %w", err)
	}
	refs, err := s.store.LoadPartReferences(ctx)
	if err != nil {
		return fmt.Errorf("load part references: %w", err)
	}

	s.setAppliances(apps)
	s.assoc.Load(assocs, refs)
	s.touch()
	s.log.Info().
		Int("appliances", len(apps)).
		Int("associations", len(assocs)).
		Int("part_references", len(refs)).
		Msg("inventory loaded")
	return nil
}

// ---- чтение ----

func (s *Service) Appliances() []model.Appliance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Appliance(nil), s.appliances...)
}

func (s *Service) Appliance(id string) (model.Appliance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(id)
}

func (s *Service) PartReferencesFor(applianceID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lookup(applianceID); !ok {
		return nil, ErrApplianceNotFound
	}
	return s.assoc.PartReferencesFor(applianceID), nil
}

func (s *Service) AppliancesFor(partRef string) []model.Appliance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assoc.AppliancesFor(partRef)
}

func (s *Service) Associations() []model.AppliancePartAssociation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assoc.Associations()
}

// Known возвращает производные множества; пересчитывает, если версия устарела.
func (s *Service) Known() Known {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.knownVersion != s.version {
		s.recompute()
	}
	return Known{
		Brands:         append([]string(nil), s.known.Brands...),
		Types:          append([]string(nil), s.known.Types...),
		PartReferences: append([]string(nil), s.known.PartReferences...),
	}
}

// RecomputeDerivedSets: явный пересчёт известных марок/типов/референций.
func (s *Service) RecomputeDerivedSets() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recompute()
}

func (s *Service) Suggest(reference, brand string) Suggestions {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out Suggestions
	eng := suggest.New(s.appliances)
	if b, ok := eng.Brand(reference); ok {
		out.Brand = &b
		if strings.TrimSpace(brand) == "" {
			brand = b.Value
		}
	}
	if t, ok := eng.Type(reference, brand); ok {
		out.Type = &t
	}
	return out
}

// Search: пустой запрос отдаёт весь инвентарь; при threshold <= 0 берётся порог по умолчанию.
func (s *Service) Search(q string, threshold float64) []search.Hit {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(q) == "" {
		hits := make([]search.Hit, 0, len(s.appliances))
		for _, a := range s.appliances {
			hits = append(hits, search.Hit{Appliance: a, PartRefs: s.assoc.PartReferencesFor(a.ID), Method: MethodAll})
		}
		return hits
	}
	if s.index == nil || s.indexVersion != s.version {
		docs := make([]search.Doc, 0, len(s.appliances))
		for _, a := range s.appliances {
			docs = append(docs, search.Doc{Appliance: a, PartRefs: s.assoc.PartReferencesFor(a.ID)})
		}
		s.index = search.Build(docs)
		s.indexVersion = s.version
	}
	if threshold <= 0 || threshold > 1 {
		threshold = s.threshold
	}
	return s.index.Search(q, threshold)
}

func (s *Service) DuplicateGroups() []model.DuplicateGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dups.FindGroups(s.appliances)
}

func (s *Service) ExportRows() []model.ExportRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return export.Rows(s.appliances, s.assoc.Associations())
}

// ---- импорт ----

// Parse разбирает вставку и сразу классифицирует строки по текущему инвентарю.
func (s *Service) Parse(raw string) (parser.Result, model.Classification, error) {
	res, err := s.parser.Parse(raw)
	if err != nil {
		return res, model.Classification{}, err
	}
	return res, s.Classify(res.Records), nil
}

// ParseRows: то же для строк из загруженного файла.
func (s *Service) ParseRows(rows [][]string) (parser.Result, model.Classification, error) {
	res, err := s.parser.ParseRows(rows)
	if err != nil {
		return res, model.Classification{}, err
	}
	return res, s.Classify(res.Records), nil
}

func (s *Service) Classify(candidates []model.Appliance) model.Classification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recon.Classify(candidates, s.appliances)
}

// ImportBatch сохраняет новые записи; ImportedIDs: авторитетные ID для привязок.
func (s *Service) ImportBatch(ctx context.Context, records []model.Appliance) (model.ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.importBatch(ctx, records)
}

// ImportAndAssociate импортирует и сразу привязывает новые приборы к запчасти,
// используя ID из результата импорта, а не перечитывая хранилище.
func (s *Service) ImportAndAssociate(ctx context.Context, records []model.Appliance, partRef string) (model.ImportResult, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.importBatch(ctx, records)
	if err != nil {
		return res, 0, err
	}
	if strings.TrimSpace(partRef) == "" || len(res.ImportedIDs) == 0 {
		return res, 0, nil
	}
	n, err := s.assoc.Associate(ctx, res.ImportedIDs, partRef)
	if err != nil {
		return res, 0, err
	}
	s.touch()
	return res, n, nil
}

func (s *Service) importBatch(ctx context.Context, records []model.Appliance) (model.ImportResult, error) {
	res, merged, err := s.recon.ImportBatch(ctx, records, s.appliances)
	if err != nil {
		return res, err
	}
	if res.ImportedCount > 0 {
		s.setAppliances(merged)
		s.touch()
	}
	return res, nil
}

// ---- связи ----

func (s *Service) Associate(ctx context.Context, applianceIDs []string, partRef string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.assoc.Associate(ctx, applianceIDs, partRef)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.touch()
	}
	return n, nil
}

func (s *Service) RemoveAssociation(ctx context.Context, applianceID, partRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.assoc.Remove(ctx, applianceID, partRef); err != nil {
		return err
	}
	s.touch()
	return nil
}

// ---- правка и удаление ----

// UpdateAppliances: массовая правка; возвращает число изменённых карточек.
// Неизвестные ID пропускаются.
func (s *Service) UpdateAppliances(ctx context.Context, ids []string, p Patch) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := append([]model.Appliance(nil), s.appliances...)
	ts := s.now()
	changed := 0
	for _, id := range ids {
		i, ok := s.byID[id]
		if !ok {
			continue
		}
		a := next[i]
		before := a
		if p.Brand != nil {
			a.Brand = strings.TrimSpace(*p.Brand)
		}
		if p.Type != nil {
			a.Type = strings.TrimSpace(*p.Type)
		}
		if p.CommercialRef != nil {
			a.CommercialRef = strings.TrimSpace(*p.CommercialRef)
		}
		if a.Brand == before.Brand && a.Type == before.Type && a.CommercialRef == before.CommercialRef {
			continue
		}
		stamp := ts
		a.LastUpdated = &stamp
		next[i] = a
		changed++
	}
	if changed == 0 {
		return 0, nil
	}
	if err := s.store.SaveAppliances(ctx, next); err != nil {
		return 0, fmt.Errorf("save appliances: %w", err)
	}
	s.setAppliances(next)
	s.touch()
	return changed, nil
}

// DeleteAppliance: в две фазы, сначала связи, затем сам прибор.
func (s *Service) DeleteAppliance(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrApplianceNotFound
	}
	if err := s.deleteAppliances(ctx, []string{id}); err != nil {
		return err
	}
	s.touch()
	return nil
}

func (s *Service) deleteAppliances(ctx context.Context, ids []string) error {
	if _, err := s.assoc.RemoveAllFor(ctx, ids...); err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.store.DeleteAppliance(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("delete appliance %s: %w", id, err)
		}
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	next := make([]model.Appliance, 0, len(s.appliances))
	for _, a := range s.appliances {
		if _, ok := drop[a.ID]; !ok {
			next = append(next, a)
		}
	}
	s.setAppliances(next)
	return nil
}

// MergeDuplicates сливает группу с ключом key (нормализованная референция):
// связи удаляемых карточек переносятся на сохраняемую, затем удаляемые
// карточки стираются вместе со своими связями.
func (s *Service) MergeDuplicates(ctx context.Context, key, keepID, brand, typ string) (model.MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key = utils.NormalizeRef(key)
	var group *model.DuplicateGroup
	for _, g := range s.dups.FindGroups(s.appliances) {
		if g.Key == key {
			group = &g
			break
		}
	}
	if group == nil {
		return model.MergeResult{}, ErrGroupNotFound
	}

	res, err := s.dups.Merge(*group, keepID, brand, typ)
	if err != nil {
		return model.MergeResult{}, err
	}

	for _, id := range res.DeleteIDs {
		for _, ref := range s.assoc.PartReferencesFor(id) {
			if _, err := s.assoc.Associate(ctx, []string{keepID}, ref); err != nil {
				return model.MergeResult{}, err
			}
		}
	}
	if err := s.deleteAppliances(ctx, res.DeleteIDs); err != nil {
		return model.MergeResult{}, err
	}

	next := append([]model.Appliance(nil), s.appliances...)
	next[s.byID[keepID]] = res.Updated
	if err := s.store.SaveAppliances(ctx, next); err != nil {
		return model.MergeResult{}, fmt.Errorf("save appliances: %w", err)
	}
	s.setAppliances(next)
	s.touch()

	s.log.Info().Str("key", key).Str("keep", keepID).Int("deleted", len(res.DeleteIDs)).Msg("duplicates merged")
	return res, nil
}

func (s *Service) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	s.setAppliances(nil)
	s.assoc.Load(nil, nil)
	s.touch()
	return nil
}

// ---- внутреннее (под s.mu) ----

func (s *Service) lookup(id string) (model.Appliance, bool) {
	i, ok := s.byID[id]
	if !ok {
		return model.Appliance{}, false
	}
	return s.appliances[i], true
}

func (s *Service) setAppliances(items []model.Appliance) {
	s.appliances = items
	s.byID = make(map[string]int, len(items))
	for i, a := range items {
		s.byID[a.ID] = i
	}
}

// touch вызывается после каждой мутации: новая версия и пересчёт производных множеств.
func (s *Service) touch() {
	s.version++
	s.recompute()
}

func (s *Service) recompute() {
	s.assoc.RecomputeKnown()
	s.known = Known{
		Brands:         distinctSorted(s.appliances, func(a model.Appliance) string { return a.Brand }),
		Types:          distinctSorted(s.appliances, func(a model.Appliance) string { return a.Type }),
		PartReferences: s.assoc.KnownPartReferences(),
	}
	s.knownVersion = s.version
}

func distinctSorted(items []model.Appliance, field func(model.Appliance) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, a := range items {
		v := strings.TrimSpace(field(a))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
