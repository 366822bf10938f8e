package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type SubmitReviewRequest struct {
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

func (req SubmitReviewRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Content, validation.Required, validation.Length(3, 200)),
		validation.Field(&req.Rating, validation.Required, validation.Min(1), validation.Max(5)),
	)
}

// CanAddResponse is the review-eligibility snapshot for one book.
type CanAddResponse struct {
	CanAdd         bool   `json:"can_add"`
	BlockingReason string `json:"blocking_reason,omitempty"`
}
