// Связи прибор ↔ референция запчасти (многие-ко-многим).
package association

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"appliance-recon/internal/inventory/model"
)

// Store: часть контракта хранилища, нужная связям.
type Store interface {
	SaveAssociations(ctx context.Context, items []model.AppliancePartAssociation) error
	SavePartReferences(ctx context.Context, refs []string) error
}

// Lookup отвечает, существует ли прибор в текущем снимке инвентаря.
type Lookup func(id string) (model.Appliance, bool)

// Manager хранит коллекцию связей в памяти (она и есть источник истины)
// и сбрасывает её в Store после каждой мутации.
// Не потокобезопасен: вызовы сериализует владелец инвентаря.
type Manager struct {
	store  Store
	lookup Lookup
	log    zerolog.Logger
	now    func() time.Time

	items    []model.AppliancePartAssociation
	keys     map[string]struct{}
	partRefs []string // известные референции запчастей, порядок появления
}

func New(store Store, lookup Lookup, log zerolog.Logger) *Manager {
	return &Manager{
		store:  store,
		lookup: lookup,
		log:    log,
		now:    time.Now,
		keys:   make(map[string]struct{}),
	}
}

// WithClock подменяет часы (для тестов).
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Load заменяет состояние снимком из хранилища.
func (m *Manager) Load(items []model.AppliancePartAssociation, partRefs []string) {
	m.items = make([]model.AppliancePartAssociation, 0, len(items))
	m.keys = make(map[string]struct{}, len(items))
	for _, a := range items {
		if _, dup := m.keys[a.Key()]; dup {
			continue
		}
		m.keys[a.Key()] = struct{}{}
		m.items = append(m.items, a)
	}
	m.partRefs = append([]string(nil), partRefs...)
	m.RecomputeKnown()
}

// Associate связывает приборы с референцией запчасти. Возвращает число приборов,
// которые ПОСЛЕ вызова связаны с ней (включая уже существовавшие связи).
// Пустой ввод и полностью неизвестные ID дают 0 без ошибки; ошибку возвращает только хранилище.
func (m *Manager) Associate(ctx context.Context, applianceIDs []string, partRef string) (int, error) {
	partRef = strings.TrimSpace(partRef)
	if len(applianceIDs) == 0 || partRef == "" {
		m.log.Debug().Int("ids", len(applianceIDs)).Str("part", partRef).Msg("associate: invalid input")
		return 0, nil
	}

	valid := make([]string, 0, len(applianceIDs))
	seen := make(map[string]struct{}, len(applianceIDs))
	for _, id := range applianceIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := m.lookup(id); !ok {
			m.log.Warn().Str("appliance_id", id).Str("part", partRef).Msg("associate: unknown appliance, dropped")
			continue
		}
		valid = append(valid, id)
	}
	if len(valid) == 0 {
		m.log.Warn().Str("part", partRef).Msg("associate: no valid appliances")
		return 0, nil
	}

	ts := m.now()
	items := m.items
	created := make([]model.AppliancePartAssociation, 0, len(valid))
	for i, id := range valid {
		key := model.AssociationKey(id, partRef)
		if _, exists := m.keys[key]; exists {
			continue
		}
		created = append(created, model.AppliancePartAssociation{
			ID:             fmt.Sprintf("%s_%s_%d", id, partRef, ts.UnixNano()+int64(i)),
			ApplianceID:    id,
			PartReference:  partRef,
			DateAssociated: ts,
		})
	}

	// сначала оба сохранения, потом состояние в памяти: при ошибке память не меняется
	refs := m.partRefs
	if !m.known(partRef) {
		refs = append(append([]string(nil), m.partRefs...), partRef)
		if err := m.store.SavePartReferences(ctx, refs); err != nil {
			return 0, fmt.Errorf("save part references: %w", err)
		}
	}
	next := items
	if len(created) > 0 {
		next = make([]model.AppliancePartAssociation, 0, len(items)+len(created))
		next = append(next, items...)
		next = append(next, created...)
		if err := m.store.SaveAssociations(ctx, next); err != nil {
			return 0, fmt.Errorf("save associations: %w", err)
		}
	}

	m.partRefs = refs
	m.items = next
	for _, a := range created {
		m.keys[a.Key()] = struct{}{}
	}

	m.log.Info().Int("associated", len(valid)).Int("created", len(created)).Str("part", partRef).Msg("associate")
	return len(valid), nil
}

// Remove удаляет связь; отсутствующая связь: не ошибка.
func (m *Manager) Remove(ctx context.Context, applianceID, partRef string) error {
	key := model.AssociationKey(applianceID, partRef)
	if _, ok := m.keys[key]; !ok {
		return nil
	}
	next := make([]model.AppliancePartAssociation, 0, len(m.items))
	for _, a := range m.items {
		if a.Key() != key {
			next = append(next, a)
		}
	}
	if err := m.store.SaveAssociations(ctx, next); err != nil {
		return fmt.Errorf("save associations: %w", err)
	}
	m.items = next
	delete(m.keys, key)
	return nil
}

// RemoveAllFor удаляет все связи указанных приборов (перед удалением самих приборов).
func (m *Manager) RemoveAllFor(ctx context.Context, applianceIDs ...string) (int, error) {
	drop := make(map[string]struct{}, len(applianceIDs))
	for _, id := range applianceIDs {
		drop[id] = struct{}{}
	}
	next := make([]model.AppliancePartAssociation, 0, len(m.items))
	for _, a := range m.items {
		if _, ok := drop[a.ApplianceID]; !ok {
			next = append(next, a)
		}
	}
	removed := len(m.items) - len(next)
	if removed == 0 {
		return 0, nil
	}
	if err := m.store.SaveAssociations(ctx, next); err != nil {
		return 0, fmt.Errorf("save associations: %w", err)
	}
	m.items = next
	m.keys = make(map[string]struct{}, len(next))
	for _, a := range next {
		m.keys[a.Key()] = struct{}{}
	}
	return removed, nil
}

// PartReferencesFor: референции запчастей прибора в порядке привязки.
func (m *Manager) PartReferencesFor(applianceID string) []string {
	out := make([]string, 0)
	for _, a := range m.items {
		if a.ApplianceID == applianceID {
			out = append(out, a.PartReference)
		}
	}
	return out
}

// AppliancesFor: приборы, связанные с референцией. Висячие связи пропускаются.
func (m *Manager) AppliancesFor(partRef string) []model.Appliance {
	partRef = strings.TrimSpace(partRef)
	out := make([]model.Appliance, 0)
	for _, a := range m.items {
		if a.PartReference != partRef {
			continue
		}
		if app, ok := m.lookup(a.ApplianceID); ok {
			out = append(out, app)
		}
	}
	return out
}

// Associations: копия коллекции.
func (m *Manager) Associations() []model.AppliancePartAssociation {
	return append([]model.AppliancePartAssociation(nil), m.items...)
}

// KnownPartReferences: копия множества известных референций.
func (m *Manager) KnownPartReferences() []string {
	return append([]string(nil), m.partRefs...)
}

// RecomputeKnown добавляет в известные все референции из связей.
func (m *Manager) RecomputeKnown() {
	set := make(map[string]struct{}, len(m.partRefs))
	refs := make([]string, 0, len(m.partRefs))
	add := func(r string) {
		r = strings.TrimSpace(r)
		if r == "" {
			return
		}
		if _, ok := set[r]; ok {
			return
		}
		set[r] = struct{}{}
		refs = append(refs, r)
	}
	for _, r := range m.partRefs {
		add(r)
	}
	for _, a := range m.items {
		add(a.PartReference)
	}
	m.partRefs = refs
}

func (m *Manager) known(partRef string) bool {
	for _, r := range m.partRefs {
		if r == partRef {
			return true
		}
	}
	return false
}
