package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
)

// favouriteLockStripes bounds the lock set; visitors sharing a stripe
// simply serialise with each other
const favouriteLockStripes = 64

// FavouritesStore keeps each visitor's saved listing ids. Updates for one
// visitor are serialised so concurrent adds and removes are not lost.
type FavouritesStore struct {
	kv    KVStore
	locks [favouriteLockStripes]sync.Mutex
}

// NewFavouritesStore creates a favourites store on the shared KV surface
func NewFavouritesStore(kv KVStore) *FavouritesStore {
	return &FavouritesStore{kv: kv}
}

func favouritesKey(visitor string) string { return "favourites:" + visitor }

func (s *FavouritesStore) lock(visitor string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(visitor))
	return &s.locks[h.Sum32()%favouriteLockStripes]
}

// List returns the saved ids in the order they were added
func (s *FavouritesStore) List(ctx context.Context, visitor string) ([]string, error) {
	raw, err := s.kv.Get(ctx, favouritesKey(visitor))
	if errors.Is(err, ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load favourites: %w", err)
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		log.Warn().Err(err).Str("visitor_id", visitor).Msg("discarding corrupt favourites")
		return []string{}, nil
	}
	return ids, nil
}

// Add saves a listing id; adding twice is a no-op
func (s *FavouritesStore) Add(ctx context.Context, visitor, listingID string) ([]string, error) {
	mu := s.lock(visitor)
	mu.Lock()
	defer mu.Unlock()

	ids, err := s.List(ctx, visitor)
	if err != nil {
		return nil, err
	}
	if slices.Contains(ids, listingID) {
		return ids, nil
	}
	ids = append(ids, listingID)
	return ids, s.save(ctx, visitor, ids)
}

// Remove drops a listing id
func (s *FavouritesStore) Remove(ctx context.Context, visitor, listingID string) ([]string, error) {
	mu := s.lock(visitor)
	mu.Lock()
	defer mu.Unlock()

	ids, err := s.List(ctx, visitor)
	if err != nil {
		return nil, err
	}
	ids = slices.DeleteFunc(ids, func(id string) bool { return id == listingID })
	return ids, s.save(ctx, visitor, ids)
}

func (s *FavouritesStore) save(ctx context.Context, visitor string, ids []string) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode favourites: %w", err)
	}
	return s.kv.Set(ctx, favouritesKey(visitor), raw)
}
