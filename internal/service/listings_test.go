package service

import (
	"context"
	"sync"
	"testing"

	"propertychat/internal/model"
	"propertychat/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestListings(t *testing.T) *ListingService {
	t.Helper()
	return NewListingService(defaultCatalog(t), repository.NewFavouritesStore(repository.NewMemoryStore()))
}

func listingIDs(listings []model.Listing) []string {
	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestListingService_List(t *testing.T) {
	s := newTestListings(t)

	tests := []struct {
		name    string
		filters model.ListingFilters
		want    []string
	}{
		{"sales with two or more bedrooms", model.ListingFilters{Type: model.TypeSale, MinBedrooms: intPtr(2)}, []string{"16", "17", "19", "20"}},
		{"available only", model.ListingFilters{Type: model.TypeSale, MinBedrooms: intPtr(2), AvailableOnly: true}, []string{"16", "17", "20"}},
		{"location ignores case", model.ListingFilters{Location: "camden"}, []string{"5", "16"}},
		{"price ceiling", model.ListingFilters{Type: model.TypeRent, MaxPrice: float64Ptr(1300)}, []string{"3", "11", "13"}},
		{"bedroom ceiling", model.ListingFilters{MinBedrooms: intPtr(4), MaxBedrooms: intPtr(4)}, []string{"12"}},
		{"nothing matches", model.ListingFilters{Location: "Croydon"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.List(tt.filters)
			assert.Equal(t, tt.want, listingIDs(resp.Results))
			assert.Equal(t, len(tt.want), resp.Total)
		})
	}

	assert.Equal(t, 21, s.List(model.ListingFilters{}).Total)
}

func TestListingService_Get(t *testing.T) {
	s := newTestListings(t)

	l, err := s.Get("16")
	require.NoError(t, err)
	assert.Equal(t, model.TypeSale, l.Type)

	_, err = s.Get("404")
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestListingService_Areas(t *testing.T) {
	s := newTestListings(t)

	assert.Len(t, s.Areas(), 5)

	area, err := s.Area("SHOREDITCH")
	require.NoError(t, err)
	assert.Equal(t, "Shoreditch", area.Name)

	_, err = s.Area("Croydon")
	assert.ErrorIs(t, err, ErrAreaNotFound)
}

func TestListingService_SearchAreas(t *testing.T) {
	s := newTestListings(t)

	names := func(areas []model.Area) []string {
		out := []string{}
		for _, a := range areas {
			out = append(out, a.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Shoreditch"}, names(s.SearchAreas("brick lane")))
	assert.Equal(t, []string{"King's Cross"}, names(s.SearchAreas("kings cross")))
	assert.Len(t, s.SearchAreas("  "), 5)
	assert.Empty(t, s.SearchAreas("ski resort"))
}

func TestListingService_BookViewing(t *testing.T) {
	s := newTestListings(t)

	slots, err := s.Viewings("1")
	require.NoError(t, err)
	require.Len(t, slots, 4)
	assert.Equal(t, 1, slots[1].SpotsAvailable)

	booked, err := s.BookViewing("1", "2")
	require.NoError(t, err)
	assert.Zero(t, booked.SpotsAvailable)

	_, err = s.BookViewing("1", "2")
	assert.ErrorIs(t, err, ErrSlotFull)
	_, err = s.BookViewing("1", "4")
	assert.ErrorIs(t, err, ErrSlotFull)
	_, err = s.BookViewing("1", "9")
	assert.ErrorIs(t, err, ErrSlotNotFound)
	_, err = s.BookViewing("404", "1")
	assert.ErrorIs(t, err, ErrListingNotFound)

	// slots are tracked per listing
	other, err := s.Viewings("2")
	require.NoError(t, err)
	assert.Equal(t, 1, other[1].SpotsAvailable)

	// the returned slice is a copy
	slots[0].SpotsAvailable = 99
	again, err := s.Viewings("1")
	require.NoError(t, err)
	assert.Equal(t, 2, again[0].SpotsAvailable)
}

func TestListingService_BookViewingConcurrent(t *testing.T) {
	s := newTestListings(t)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		booked int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.BookViewing("3", "3"); err == nil {
				mu.Lock()
				booked++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, booked, "a slot never overbooks")
	slots, err := s.Viewings("3")
	require.NoError(t, err)
	assert.Zero(t, slots[2].SpotsAvailable)
}

func TestListingService_Favourites(t *testing.T) {
	ctx := context.Background()
	s := newTestListings(t)

	resp, err := s.AddFavourite(ctx, "v1", "16")
	require.NoError(t, err)
	assert.Equal(t, []string{"16"}, listingIDs(resp.Listings))

	_, err = s.AddFavourite(ctx, "v1", "404")
	assert.ErrorIs(t, err, ErrListingNotFound)

	_, err = s.AddFavourite(ctx, "v1", "3")
	require.NoError(t, err)
	resp, err = s.Favourites(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "v1", resp.VisitorID)
	assert.Equal(t, []string{"16", "3"}, listingIDs(resp.Listings))

	resp, err = s.RemoveFavourite(ctx, "v1", "16")
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, listingIDs(resp.Listings))

	resp, err = s.Favourites(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, resp.Listings)
}
