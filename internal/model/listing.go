package model

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// TransactionType distinguishes rentals from sales
type TransactionType string

const (
	TypeRent TransactionType = "rent"
	TypeSale TransactionType = "sale"
)

// Valid reports whether t is a known transaction type
func (t TransactionType) Valid() bool {
	return t == TypeRent || t == TypeSale
}

// Verb returns the phrasing used in replies ("rent" / "buy")
func (t TransactionType) Verb() string {
	if t == TypeSale {
		return "buy"
	}
	return "rent"
}

// Availability statuses refine the Available flag
const (
	StatusAvailable          = "available"
	StatusUndergoingViewings = "undergoing-viewings"
	StatusTaken              = "taken"
)

// PeriodMonth is the billing period of every rental price
const PeriodMonth = "month"

// Price is an amount with an optional billing period (rent only)
type Price struct {
	Amount   float64 `json:"amount" yaml:"amount" validate:"gt=0"`
	Currency string  `json:"currency,omitempty" yaml:"currency,omitempty" validate:"omitempty,len=3"`
	Period   string  `json:"period,omitempty" yaml:"period,omitempty" validate:"omitempty,oneof=month"`
}

// String renders the price the way cards display it, e.g. "£1,400/month"
func (p Price) String() string {
	s := FormatMoney(p.Amount, p.Currency)
	if p.Period != "" {
		s += "/" + p.Period
	}
	return s
}

// FormatMoney renders an amount with its currency symbol and thousands separators
func FormatMoney(amount float64, currency string) string {
	symbol := "£"
	switch strings.ToUpper(currency) {
	case "", "GBP":
	case "EUR":
		symbol = "€"
	case "USD":
		symbol = "$"
	default:
		symbol = strings.ToUpper(currency) + " "
	}
	if amount == float64(int64(amount)) {
		return symbol + humanize.Comma(int64(amount))
	}
	return symbol + humanize.CommafWithDigits(amount, 2)
}

// Amenities are the boolean facilities shown on the detail page
type Amenities struct {
	Parking   bool `json:"parking" yaml:"parking"`
	Wifi      bool `json:"wifi" yaml:"wifi"`
	Kitchen   bool `json:"kitchen" yaml:"kitchen"`
	Pets      bool `json:"pets" yaml:"pets"`
	Furnished bool `json:"furnished" yaml:"furnished"`
}

// Agent is the letting or estate agent contact for a listing
type Agent struct {
	Name    string `json:"name" yaml:"name" validate:"required"`
	Company string `json:"company" yaml:"company"`
	Phone   string `json:"phone" yaml:"phone"`
	Email   string `json:"email" yaml:"email" validate:"omitempty,email"`
	Photo   string `json:"photo,omitempty" yaml:"photo,omitempty"`
}

// Listing represents a property listing. Listings are immutable once loaded.
type Listing struct {
	ID            string          `json:"id" yaml:"id" validate:"required"`
	Title         string          `json:"title" yaml:"title" validate:"required"`
	Price         Price           `json:"price" yaml:"price"`
	Location      string          `json:"location" yaml:"location" validate:"required"`
	Bedrooms      int             `json:"bedrooms" yaml:"bedrooms" validate:"gte=0"`
	Bathrooms     int             `json:"bathrooms" yaml:"bathrooms" validate:"gte=0"`
	SizeSqft      float64         `json:"size_sqft" yaml:"size_sqft" validate:"gte=0"`
	Type          TransactionType `json:"type" yaml:"type" validate:"required,oneof=rent sale"`
	Available     bool            `json:"available" yaml:"available"`
	Status        string          `json:"status,omitempty" yaml:"status,omitempty" validate:"omitempty,oneof=available undergoing-viewings taken"`
	Images        []string        `json:"images,omitempty" yaml:"images,omitempty"`
	Description   string          `json:"description,omitempty" yaml:"description,omitempty"`
	Features      []string        `json:"features,omitempty" yaml:"features,omitempty"`
	Amenities     *Amenities      `json:"amenities,omitempty" yaml:"amenities,omitempty"`
	AvailableFrom string          `json:"available_from,omitempty" yaml:"available_from,omitempty"`
	Deposit       string          `json:"deposit,omitempty" yaml:"deposit,omitempty"`
	Council       string          `json:"council,omitempty" yaml:"council,omitempty"`
	Transport     string          `json:"transport,omitempty" yaml:"transport,omitempty"`
	Agent         *Agent          `json:"agent,omitempty" yaml:"agent,omitempty"`

	// Sale-only attributes
	Tenure        string   `json:"tenure,omitempty" yaml:"tenure,omitempty" validate:"omitempty,oneof=freehold leasehold share-of-freehold"`
	ServiceCharge *float64 `json:"service_charge,omitempty" yaml:"service_charge,omitempty" validate:"omitempty,gte=0"`
	GroundRent    *float64 `json:"ground_rent,omitempty" yaml:"ground_rent,omitempty" validate:"omitempty,gte=0"`
	LeaseYears    *int     `json:"lease_years,omitempty" yaml:"lease_years,omitempty" validate:"omitempty,gt=0"`
}

// Area returns the part of the location before the first comma
func (l Listing) Area() string {
	area, _, _ := strings.Cut(l.Location, ",")
	return strings.TrimSpace(area)
}

// EffectiveStatus returns the status, defaulting from the Available flag
func (l Listing) EffectiveStatus() string {
	if l.Status != "" {
		return l.Status
	}
	if l.Available {
		return StatusAvailable
	}
	return StatusTaken
}

// CheckInvariants validates the cross-field rules struct tags cannot express
func (l Listing) CheckInvariants() error {
	// without a status the flag alone decides; unavailable reads as taken
	if l.Status != "" && l.Available != (l.Status == StatusAvailable) {
		return fmt.Errorf("listing %s: available=%t contradicts status %q", l.ID, l.Available, l.Status)
	}
	switch l.Type {
	case TypeRent:
		if l.Price.Period != PeriodMonth {
			return fmt.Errorf("listing %s: rent price must be billed per month", l.ID)
		}
		if l.Tenure != "" || l.ServiceCharge != nil || l.GroundRent != nil || l.LeaseYears != nil {
			return fmt.Errorf("listing %s: sale attributes on a rental", l.ID)
		}
	case TypeSale:
		if l.Price.Period != "" {
			return fmt.Errorf("listing %s: sale price cannot have a billing period", l.ID)
		}
	}
	return nil
}

// ScoredListing is a listing paired with its match score
type ScoredListing struct {
	Listing        Listing  `json:"listing"`
	Score          int      `json:"score"`
	MatchedReasons []string `json:"matched_reasons,omitempty"`
}
