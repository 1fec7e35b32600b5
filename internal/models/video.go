package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SortOption controls catalog ordering
type SortOption string

const (
	SortNewest       SortOption = "newest"
	SortPriceAsc     SortOption = "price_asc"
	SortPriceDesc    SortOption = "price_desc"
	SortViewsDesc    SortOption = "views_desc"
	SortDurationDesc SortOption = "duration_desc"
)

// Video represents one catalog entry. ProductLink is the paid content
// and must only be exposed to buyers who completed a purchase.
type Video struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Duration    int             `json:"duration"` // seconds
	VideoFileID string          `json:"video_id,omitempty"`
	ThumbnailID string          `json:"thumbnail_id,omitempty"`
	ProductLink string          `json:"product_link,omitempty"`
	Views       int64           `json:"views"`
	CreatedAt   time.Time       `json:"created_at"`
}

// FormattedDuration renders the duration as MM:SS, or HH:MM:SS for
// videos longer than an hour.
func (v *Video) FormattedDuration() string {
	minutes := v.Duration / 60
	seconds := v.Duration % 60
	if minutes < 60 {
		return fmt.Sprintf("%02d:%02d", minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d:%02d", minutes/60, minutes%60, seconds)
}
