package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"appliance-recon/internal/inventory/model"
	"appliance-recon/internal/store"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // например "inventory:"
}

const (
	keyAppliances   = "appliances"
	keyAssociations = "associations"
	keyPartRefs     = "part_references"
)

// Store держит каждую коллекцию одним JSON-значением под своим ключом.
type Store struct {
	rdb    *redis.Client
	prefix string
}

var _ store.Store = (*Store)(nil)

func Open(cfg Config) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}
	return &Store{rdb: rdb, prefix: cfg.Prefix}, nil
}

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) key(k string) string { return s.prefix + k }

func (s *Store) LoadAppliances(ctx context.Context) ([]model.Appliance, error) {
	out := make([]model.Appliance, 0)
	if err := s.load(ctx, keyAppliances, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) SaveAppliances(ctx context.Context, items []model.Appliance) error {
	return s.save(ctx, keyAppliances, items)
}

func (s *Store) DeleteAppliance(ctx context.Context, id string) error {
	items, err := s.LoadAppliances(ctx)
	if err != nil {
		return err
	}
	for i, a := range items {
		if a.ID == id {
			return s.SaveAppliances(ctx, append(items[:i:i], items[i+1:]...))
		}
	}
	return store.ErrNotFound
}

func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key(keyAppliances), s.key(keyAssociations), s.key(keyPartRefs)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *Store) LoadAssociations(ctx context.Context) ([]model.AppliancePartAssociation, error) {
	out := make([]model.AppliancePartAssociation, 0)
	if err := s.load(ctx, keyAssociations, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) SaveAssociations(ctx context.Context, items []model.AppliancePartAssociation) error {
	return s.save(ctx, keyAssociations, items)
}

func (s *Store) LoadPartReferences(ctx context.Context) ([]string, error) {
	out := make([]string, 0)
	if err := s.load(ctx, keyPartRefs, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) SavePartReferences(ctx context.Context, refs []string) error {
	return s.save(ctx, keyPartRefs, refs)
}

func (s *Store) load(ctx context.Context, k string, dst any) error {
	raw, err := s.rdb.Get(ctx, s.key(k)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", k, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", k, err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, k string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", k, err)
	}
	if err := s.rdb.Set(ctx, s.key(k), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", k, err)
	}
	return nil
}
