package service

import (
	"testing"

	"propertychat/internal/model"
	"propertychat/internal/repository"

	"github.com/stretchr/testify/require"
)

func rental(id, location string, bedrooms int, price float64) model.Listing {
	return model.Listing{
		ID:        id,
		Title:     bedroomsPhrase(bedrooms) + " flat in " + location,
		Price:     model.Price{Amount: price, Currency: "GBP", Period: model.PeriodMonth},
		Location:  location,
		Bedrooms:  bedrooms,
		Bathrooms: 1,
		Type:      model.TypeRent,
		Available: true,
	}
}

func sale(id, location string, bedrooms int, price float64) model.Listing {
	return model.Listing{
		ID:        id,
		Title:     bedroomsPhrase(bedrooms) + " home in " + location,
		Price:     model.Price{Amount: price, Currency: "GBP"},
		Location:  location,
		Bedrooms:  bedrooms,
		Bathrooms: 1,
		Type:      model.TypeSale,
		Available: true,
		Tenure:    "leasehold",
	}
}

func defaultCatalog(t *testing.T) *repository.Catalog {
	t.Helper()
	catalog, err := repository.DefaultCatalog()
	require.NoError(t, err)
	return catalog
}

func rentPtr() *model.TransactionType {
	v := model.TypeRent
	return &v
}

func salePtr() *model.TransactionType {
	v := model.TypeSale
	return &v
}

func float64Ptr(v float64) *float64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}

func stringPtr(v string) *string {
	return &v
}
