package domain

import "time"

// ReplyTemplate is a reusable reply snippet shown in the seller UI.
type ReplyTemplate struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTemplateRequest is the request to create a reply template
type CreateTemplateRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// UpdateTemplateRequest is the request to update a reply template
type UpdateTemplateRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// TemplateListResponse is the response for listing reply templates
type TemplateListResponse struct {
	Items []*ReplyTemplate `json:"items"`
}

// Named single-default template kinds. Retention is shown when a buyer is
// about to walk away, review when asking for a rating after a deal.
const (
	TextTemplateRetention = "retention"
	TextTemplateReview    = "review"
)

// TextTemplate is a single-default text snippet (retention or review).
type TextTemplate struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateTextTemplateRequest replaces the default snippet content.
type UpdateTextTemplateRequest struct {
	Content string `json:"content" binding:"required"`
}
