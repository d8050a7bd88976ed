// Поиск и слияние дублей по нормализованной референции.
package duplicates

import (
	"errors"
	"strings"
	"time"

	"appliance-recon/internal/inventory/model"
	"appliance-recon/internal/utils"
)

var (
	ErrKeepNotInGroup = errors.New("keep id is not a member of the group")
	ErrGroupTooSmall  = errors.New("duplicate group needs at least 2 members")
)

type Resolver struct {
	now func() time.Time
}

func New() *Resolver {
	return &Resolver{now: time.Now}
}

// WithClock подменяет часы (для тестов).
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// FindGroups группирует по trim+lower референции; группа: от 2 карточек.
// Порядок групп и участников: порядок первого появления во входе.
func (r *Resolver) FindGroups(items []model.Appliance) []model.DuplicateGroup {
	byKey := make(map[string][]model.Appliance)
	order := make([]string, 0)
	for _, a := range items {
		k := utils.NormalizeRef(a.Reference)
		if k == "" {
			continue
		}
		if _, ok := byKey[k]; !ok {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], a)
	}

	groups := make([]model.DuplicateGroup, 0)
	for _, k := range order {
		members := byKey[k]
		if len(members) < 2 {
			continue
		}
		groups = append(groups, model.DuplicateGroup{
			Key:     k,
			Members: members,
			Brands:  distinct(members, func(a model.Appliance) string { return a.Brand }),
			Types:   distinct(members, func(a model.Appliance) string { return a.Type }),
		})
	}
	return groups
}

// Merge оставляет keepID, остальные участники идут в DeleteIDs.
// Марка/тип берутся от вызывающего; пустое значение: первое непустое в группе.
// Удаление карточек и их привязок: забота вызывающего.
func (r *Resolver) Merge(g model.DuplicateGroup, keepID, brand, typ string) (model.MergeResult, error) {
	if len(g.Members) < 2 {
		return model.MergeResult{}, ErrGroupTooSmall
	}

	// сохраняемая карточка первой: её значения приоритетнее при автоподборе
	ordered := make([]model.Appliance, 0, len(g.Members))
	var keep *model.Appliance
	deleteIDs := make([]string, 0, len(g.Members)-1)
	for i := range g.Members {
		if g.Members[i].ID == keepID && keep == nil {
			keep = &g.Members[i]
			continue
		}
		deleteIDs = append(deleteIDs, g.Members[i].ID)
	}
	if keep == nil {
		return model.MergeResult{}, ErrKeepNotInGroup
	}
	ordered = append(ordered, *keep)
	for _, m := range g.Members {
		if m.ID != keepID {
			ordered = append(ordered, m)
		}
	}

	updated := *keep
	updated.Brand = pick(strings.TrimSpace(brand), ordered, func(a model.Appliance) string { return a.Brand })
	updated.Type = pick(strings.TrimSpace(typ), ordered, func(a model.Appliance) string { return a.Type })
	updated.CommercialRef = pick(strings.TrimSpace(updated.CommercialRef), ordered, func(a model.Appliance) string { return a.CommercialRef })
	ts := r.now()
	updated.LastUpdated = &ts

	return model.MergeResult{DeleteIDs: deleteIDs, Updated: updated}, nil
}

func pick(v string, items []model.Appliance, field func(model.Appliance) string) string {
	if v != "" {
		return v
	}
	for _, a := range items {
		if s := strings.TrimSpace(field(a)); s != "" {
			return s
		}
	}
	return ""
}

func distinct(items []model.Appliance, field func(model.Appliance) string) []string {
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
	return out
}
