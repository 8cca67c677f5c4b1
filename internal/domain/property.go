package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Property is read-only reference data owned by a host.
type Property struct {
	ID            uuid.UUID       `json:"property_id"`
	Host          *User           `json:"host,omitempty"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Location      string          `json:"location"`
	PricePerNight decimal.Decimal `json:"pricepernight"`
	Bedrooms      int             `json:"bedrooms"`
	Bathrooms     int             `json:"bathrooms"`
	MaxGuests     int             `json:"max_guests"`
	IsActive      bool            `json:"is_active"`
	AverageRating *float64        `json:"average_rating,omitempty"`
	CreatedAt     time.Time       `json:"created_at,omitempty"`
}
