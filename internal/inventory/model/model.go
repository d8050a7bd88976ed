package model

import (
	"strings"
	"time"
)

// Appliance: карточка бытового прибора.
type Appliance struct {
	ID            string     `json:"id"`
	Reference     string     `json:"reference"`               // техническая референция (натуральный ключ)
	CommercialRef string     `json:"commercialRef,omitempty"` // коммерческая референция
	Brand         string     `json:"brand"`
	Type          string     `json:"type"`
	DateAdded     string     `json:"dateAdded"`             // YYYY-MM-DD
	LastUpdated   *time.Time `json:"lastUpdated,omitempty"` // последняя правка
}

// Incomplete: не хватает марки или типа.
func (a Appliance) Incomplete() bool {
	return strings.TrimSpace(a.Brand) == "" || strings.TrimSpace(a.Type) == ""
}

// AppliancePartAssociation: ребро прибор ↔ референция запчасти.
type AppliancePartAssociation struct {
	ID             string    `json:"id"`
	ApplianceID    string    `json:"applianceId"`
	PartReference  string    `json:"partReference"`
	DateAssociated time.Time `json:"dateAssociated"`
}

// Key: производный ключ пары (applianceId, partReference) для идемпотентности.
func (a AppliancePartAssociation) Key() string {
	return AssociationKey(a.ApplianceID, a.PartReference)
}

func AssociationKey(applianceID, partRef string) string {
	return applianceID + "\x00" + strings.TrimSpace(partRef)
}

// DuplicateGroup: приборы с одинаковой нормализованной референцией. Не хранится.
type DuplicateGroup struct {
	Key     string      `json:"key"`
	Members []Appliance `json:"members"`
	Brands  []string    `json:"brands"` // все встреченные марки (для выбора пользователем)
	Types   []string    `json:"types"`
}

// MergeResult: итог слияния группы дублей.
type MergeResult struct {
	DeleteIDs []string  `json:"deleteIds"`
	Updated   Appliance `json:"updated"`
}

// Format: формат вставки, определяется по числу колонок первой строки.
type Format string

const (
	FormatUnknown      Format = ""
	FormatTwoColumns   Format = "two_columns"   // техн. реф + комм. реф
	FormatThreeColumns Format = "three_columns" // техн. реф + марка + тип
	FormatFourColumns  Format = "four_columns"  // тип + марка + техн. реф + комм. реф
)

// Resolution: откуда взялись марка/тип у кандидата.
type Resolution string

const (
	ResolvedProvided  Resolution = "provided"  // были во входных данных
	ResolvedExact     Resolution = "exact"     // скопированы с существующей карточки
	ResolvedSuggested Resolution = "suggested" // эвристика, требует подтверждения в UI
	ResolvedMissing   Resolution = "missing"   // определить не удалось
)

// Candidate: строка импорта после классификации.
type Candidate struct {
	Appliance
	Resolution Resolution `json:"resolution"`
	Suggested  []string   `json:"suggested,omitempty"` // какие поля подставлены эвристикой: brand, type
	ExistingID string     `json:"existingId,omitempty"` // карточка, совпавшая по референции
}

// Classification: результат classify.
type Classification struct {
	ToImport   []Candidate `json:"toImport"`
	ToComplete []Candidate `json:"toComplete"`
}

// ImportResult: что реально ушло в хранилище.
type ImportResult struct {
	ImportedCount int      `json:"importedCount"`
	ImportedIDs   []string `json:"importedIds"`
	Skipped       []string `json:"skipped"`    // референции, отброшенные как дубли
	Incomplete    []string `json:"incomplete"` // без марки или типа, не сохранены
	// NoReference: записи с пустой технической референцией (отброшены).
	// importedCount + skipped + incomplete + noReference = размер пачки.
	NoReference int `json:"noReference"`
}

// ExportRow: одна строка выгрузки, прибор × референция запчасти.
type ExportRow struct {
	Reference     string
	CommercialRef string
	Brand         string
	Type          string
	PartReference string
}
