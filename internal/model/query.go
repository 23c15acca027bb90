package model

// SendMessageRequest represents a user utterance posted to a conversation
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// SendMessageResponse is returned after a user turn is accepted
type SendMessageResponse struct {
	ConversationID string   `json:"conversation_id"`
	UserMessage    Message  `json:"user_message"`
	Reply          *Message `json:"reply,omitempty"` // nil when delivery is deferred
	Stage          Stage    `json:"stage"`
	Deferred       bool     `json:"deferred"`
}

// ConversationResponse wraps a conversation log
type ConversationResponse struct {
	ConversationID string      `json:"conversation_id"`
	Messages       []Message   `json:"messages"`
	Preferences    Preferences `json:"preferences"`
	Stage          Stage       `json:"stage"`
}

// ListingFilters are the browse filters of the property list page
type ListingFilters struct {
	Type          TransactionType `form:"type" binding:"omitempty,oneof=rent sale"`
	MinBedrooms   *int            `form:"min_bedrooms" binding:"omitempty,gte=0"`
	MaxBedrooms   *int            `form:"max_bedrooms" binding:"omitempty,gte=0"`
	MaxPrice      *float64        `form:"max_price" binding:"omitempty,gt=0"`
	Location      string          `form:"location"`
	AvailableOnly bool            `form:"available_only"`
}

// ListingsResponse is a page of listings
type ListingsResponse struct {
	Results []Listing `json:"results"`
	Total   int       `json:"total"`
}

// ViewingSlot is a bookable viewing appointment for a listing
type ViewingSlot struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	SpotsAvailable int    `json:"spots_available"`
	TotalSpots     int    `json:"total_spots"`
}

// FavouritesResponse lists a visitor's saved listings
type FavouritesResponse struct {
	VisitorID string    `json:"visitor_id"`
	Listings  []Listing `json:"listings"`
}

// PreferencesResponse reports the accumulated preferences of a conversation
type PreferencesResponse struct {
	ConversationID string      `json:"conversation_id"`
	Preferences    Preferences `json:"preferences"`
	Stage          Stage       `json:"stage"`
}

// StartersResponse lists the suggested opening questions
type StartersResponse struct {
	Questions []string `json:"questions"`
}
