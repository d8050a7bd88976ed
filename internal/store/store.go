// Контракт хранилища инвентаря. Ядро держит снимок в памяти как источник
// истины; хранилище может отставать (eventual consistency).
package store

import (
	"context"
	"errors"

	"appliance-recon/internal/inventory/model"
)

var ErrNotFound = errors.New("not found")

type Store interface {
	LoadAppliances(ctx context.Context) ([]model.Appliance, error)
	SaveAppliances(ctx context.Context, items []model.Appliance) error
	DeleteAppliance(ctx context.Context, id string) error
	ClearAll(ctx context.Context) error

	LoadAssociations(ctx context.Context) ([]model.AppliancePartAssociation, error)
	SaveAssociations(ctx context.Context, items []model.AppliancePartAssociation) error

	LoadPartReferences(ctx context.Context) ([]string, error)
	SavePartReferences(ctx context.Context, refs []string) error

	Close() error
}
