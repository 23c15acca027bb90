package handler

import (
	"net/http"

	"propertychat/internal/model"
	"propertychat/internal/service"

	"github.com/gin-gonic/gin"
)

// ListingHandler handles listing, area, viewing and favourites requests
type ListingHandler struct {
	listings *service.ListingService
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listings *service.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

// List handles GET /api/v1/listings
func (h *ListingHandler) List(c *gin.Context) {
	var filters model.ListingFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filters: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.listings.List(filters))
}

// GetListing handles GET /api/v1/listings/:id
func (h *ListingHandler) GetListing(c *gin.Context) {
	listing, err := h.listings.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// Viewings handles GET /api/v1/listings/:id/viewings
func (h *ListingHandler) Viewings(c *gin.Context) {
	slots, err := h.listings.Viewings(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing_id": c.Param("id"), "slots": slots})
}

// BookViewing handles POST /api/v1/listings/:id/viewings/:slot
func (h *ListingHandler) BookViewing(c *gin.Context) {
	slot, err := h.listings.BookViewing(c.Param("id"), c.Param("slot"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}

// Areas handles GET /api/v1/areas
func (h *ListingHandler) Areas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"areas": h.listings.Areas()})
}

// Area handles GET /api/v1/areas/:name
func (h *ListingHandler) Area(c *gin.Context) {
	area, err := h.listings.Area(c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, area)
}

// SearchAreas handles GET /api/v1/areas/search?q=
func (h *ListingHandler) SearchAreas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"query": c.Query("q"), "areas": h.listings.SearchAreas(c.Query("q"))})
}

// Favourites handles GET /api/v1/favourites/:visitor
func (h *ListingHandler) Favourites(c *gin.Context) {
	resp, err := h.listings.Favourites(c.Request.Context(), c.Param("visitor"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddFavourite handles PUT /api/v1/favourites/:visitor/:listing
func (h *ListingHandler) AddFavourite(c *gin.Context) {
	resp, err := h.listings.AddFavourite(c.Request.Context(), c.Param("visitor"), c.Param("listing"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveFavourite handles DELETE /api/v1/favourites/:visitor/:listing
func (h *ListingHandler) RemoveFavourite(c *gin.Context) {
	resp, err := h.listings.RemoveFavourite(c.Request.Context(), c.Param("visitor"), c.Param("listing"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
