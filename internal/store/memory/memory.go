package memory

import (
	"context"
	"sync"

	"appliance-recon/internal/inventory/model"
	"appliance-recon/internal/store"
)

// Store: хранилище в памяти процесса; отдаёт и принимает копии.
type Store struct {
	mu         sync.RWMutex
	appliances []model.Appliance
	assocs     []model.AppliancePartAssociation
	partRefs   []string
}

var _ store.Store = (*Store)(nil)

func New() *Store { return &Store{} }

func (s *Store) LoadAppliances(context.Context) ([]model.Appliance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Appliance(nil), s.appliances...), nil
}

func (s *Store) SaveAppliances(_ context.Context, items []model.Appliance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appliances = append([]model.Appliance(nil), items...)
	return nil
}

func (s *Store) DeleteAppliance(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.appliances {
		if a.ID == id {
			s.appliances = append(s.appliances[:i:i], s.appliances[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ClearAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appliances, s.assocs, s.partRefs = nil, nil, nil
	return nil
}

func (s *Store) LoadAssociations(context.Context) ([]model.AppliancePartAssociation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.AppliancePartAssociation(nil), s.assocs...), nil
}

func (s *Store) SaveAssociations(_ context.Context, items []model.AppliancePartAssociation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assocs = append([]model.AppliancePartAssociation(nil), items...)
	return nil
}

func (s *Store) LoadPartReferences(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.partRefs...), nil
}

func (s *Store) SavePartReferences(_ context.Context, refs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partRefs = append([]string(nil), refs...)
	return nil
}

func (s *Store) Close() error { return nil }
