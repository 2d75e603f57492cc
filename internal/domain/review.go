package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review is an append-only text review for a product. There is no edit
// or delete surface and nothing stops an author from reviewing the same
// product more than once.
type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AuthorID  uuid.UUID `json:"author_id" db:"author_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FavouriteProduct marks a product as bookmarked by a user; its
// existence is the membership.
type FavouriteProduct struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
