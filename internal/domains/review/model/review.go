package model

import (
	"time"

	"github.com/google/uuid"
)

// Review is one immutable rating of a book by a user. One per
// (user, book), enforced by a unique constraint; there is no edit or
// delete path.
type Review struct {
	ID        uuid.UUID `json:"id"`
	BookID    uuid.UUID `json:"book_id"`
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewWithUser is a review joined with the reviewer's username for
// public listings.
type ReviewWithUser struct {
	Review
	Username string `json:"username"`
}
