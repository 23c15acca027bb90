package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"propertychat/internal/model"
	"propertychat/internal/repository"
	"propertychat/internal/utils"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrAreaNotFound    = errors.New("area not found")
	ErrSlotNotFound    = errors.New("viewing slot not found")
	ErrSlotFull        = errors.New("viewing slot is full")
)

// defaultViewingSlots is the slot template every listing starts with
var defaultViewingSlots = []model.ViewingSlot{
	{ID: "1", Date: "2025-01-20", Time: "10:00 AM", SpotsAvailable: 2, TotalSpots: 3},
	{ID: "2", Date: "2025-01-20", Time: "2:00 PM", SpotsAvailable: 1, TotalSpots: 3},
	{ID: "3", Date: "2025-01-21", Time: "11:00 AM", SpotsAvailable: 3, TotalSpots: 3},
	{ID: "4", Date: "2025-01-22", Time: "3:00 PM", SpotsAvailable: 0, TotalSpots: 3},
}

// ListingService serves the browse pages: listings, the area directory,
// viewing slots and favourites
type ListingService struct {
	catalog    *repository.Catalog
	favourites *repository.FavouritesStore

	mu       sync.Mutex
	viewings map[string][]model.ViewingSlot
}

// NewListingService creates a listing service over the catalog
func NewListingService(catalog *repository.Catalog, favourites *repository.FavouritesStore) *ListingService {
	return &ListingService{
		catalog:    catalog,
		favourites: favourites,
		viewings:   make(map[string][]model.ViewingSlot),
	}
}

// List returns the listings passing every filter, in catalog order
func (s *ListingService) List(filters model.ListingFilters) *model.ListingsResponse {
	results := []model.Listing{}
	for _, l := range s.catalog.Listings() {
		if filters.Type != "" && l.Type != filters.Type {
			continue
		}
		if filters.MinBedrooms != nil && l.Bedrooms < *filters.MinBedrooms {
			continue
		}
		if filters.MaxBedrooms != nil && l.Bedrooms > *filters.MaxBedrooms {
			continue
		}
		if filters.MaxPrice != nil && l.Price.Amount > *filters.MaxPrice {
			continue
		}
		if filters.Location != "" && !utils.ContainsFold(l.Location, filters.Location) {
			continue
		}
		if filters.AvailableOnly && !l.Available {
			continue
		}
		results = append(results, l)
	}
	return &model.ListingsResponse{Results: results, Total: len(results)}
}

// Get returns one listing
func (s *ListingService) Get(id string) (*model.Listing, error) {
	l, ok := s.catalog.Listing(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrListingNotFound, id)
	}
	return &l, nil
}

// Areas returns the whole directory
func (s *ListingService) Areas() []model.Area {
	return s.catalog.Areas()
}

// Area returns one directory entry by name, case-insensitively
func (s *ListingService) Area(name string) (*model.Area, error) {
	a, ok := s.catalog.Area(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAreaNotFound, name)
	}
	return &a, nil
}

// SearchAreas returns the areas whose name, description, entertainment,
// shopping or highlights mention the query
func (s *ListingService) SearchAreas(query string) []model.Area {
	query = strings.TrimSpace(query)
	results := []model.Area{}
	for _, a := range s.catalog.Areas() {
		if query == "" || areaMentions(a, query) {
			results = append(results, a)
		}
	}
	return results
}

func areaMentions(a model.Area, query string) bool {
	if utils.ContainsFold(a.Name, query) || utils.ContainsFold(a.Description, query) {
		return true
	}
	for _, group := range [][]string{a.Entertainment, a.Shopping, a.Highlights} {
		for _, item := range group {
			if utils.ContainsFold(item, query) {
				return true
			}
		}
	}
	return false
}

// Viewings returns the viewing slots of a listing
func (s *ListingService) Viewings(listingID string) ([]model.ViewingSlot, error) {
	if _, err := s.Get(listingID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ViewingSlot(nil), s.slotsLocked(listingID)...), nil
}

// BookViewing takes one spot in a slot
func (s *ListingService) BookViewing(listingID, slotID string) (*model.ViewingSlot, error) {
	if _, err := s.Get(listingID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	slots := s.slotsLocked(listingID)
	for i := range slots {
		if slots[i].ID != slotID {
			continue
		}
		if slots[i].SpotsAvailable <= 0 {
			return nil, fmt.Errorf("%w: %s", ErrSlotFull, slotID)
		}
		slots[i].SpotsAvailable--
		booked := slots[i]
		return &booked, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, slotID)
}

func (s *ListingService) slotsLocked(listingID string) []model.ViewingSlot {
	slots, ok := s.viewings[listingID]
	if !ok {
		slots = append([]model.ViewingSlot(nil), defaultViewingSlots...)
		s.viewings[listingID] = slots
	}
	return slots
}

// Favourites returns a visitor's saved listings. Ids no longer in the
// catalog are skipped.
func (s *ListingService) Favourites(ctx context.Context, visitor string) (*model.FavouritesResponse, error) {
	ids, err := s.favourites.List(ctx, visitor)
	if err != nil {
		return nil, err
	}
	return s.favouritesResponse(visitor, ids), nil
}

// AddFavourite saves a listing for a visitor
func (s *ListingService) AddFavourite(ctx context.Context, visitor, listingID string) (*model.FavouritesResponse, error) {
	if _, err := s.Get(listingID); err != nil {
		return nil, err
	}
	ids, err := s.favourites.Add(ctx, visitor, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to save favourite: %w", err)
	}
	return s.favouritesResponse(visitor, ids), nil
}

// RemoveFavourite drops a listing from a visitor's favourites
func (s *ListingService) RemoveFavourite(ctx context.Context, visitor, listingID string) (*model.FavouritesResponse, error) {
	ids, err := s.favourites.Remove(ctx, visitor, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove favourite: %w", err)
	}
	return s.favouritesResponse(visitor, ids), nil
}

func (s *ListingService) favouritesResponse(visitor string, ids []string) *model.FavouritesResponse {
	listings := make([]model.Listing, 0, len(ids))
	for _, id := range ids {
		if l, ok := s.catalog.Listing(id); ok {
			listings = append(listings, l)
		}
	}
	return &model.FavouritesResponse{VisitorID: visitor, Listings: listings}
}
