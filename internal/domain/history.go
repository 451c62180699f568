package domain

import "time"

// OneShotAnalysisRequest analyzes a single buyer message outside any session.
type OneShotAnalysisRequest struct {
	Message   string    `json:"message" binding:"required"`
	LLMConfig LLMConfig `json:"llm_config" binding:"required"`
}

// PriceEstimate is the quote block of a one-shot analysis.
type PriceEstimate struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	Basis    string `json:"basis"`
	CanQuote bool   `json:"can_quote"`
}

// OneShotAnalysisResponse is the result of a single-message analysis.
type OneShotAnalysisResponse struct {
	DetectedType   *ServiceOffering `json:"detected_type,omitempty"`
	Confidence     float64          `json:"confidence"`
	ExtractedInfo  *ExtractedInfo   `json:"extracted_info"`
	MissingInfo    []string         `json:"missing_info"`
	SuggestedReply string           `json:"suggested_reply"`
	PriceEstimate  PriceEstimate    `json:"price_estimate"`
}

// HistoryRecord is a persisted one-shot analysis, annotated by the seller
// with article type and deal outcome.
type HistoryRecord struct {
	ID               string         `json:"id"`
	BuyerMessage     string         `json:"buyer_message"`
	DetectedTypeName *string        `json:"detected_type_name,omitempty"`
	Confidence       float64        `json:"confidence"`
	ExtractedInfo    *ExtractedInfo `json:"extracted_info"`
	MissingInfo      []string       `json:"missing_info"`
	SuggestedReply   string         `json:"suggested_reply"`
	PriceMin         int            `json:"price_min"`
	PriceMax         int            `json:"price_max"`
	PriceBasis       string         `json:"price_basis"`
	ArticleType      *string        `json:"article_type,omitempty"`
	DealStatus       string         `json:"deal_status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// CreateHistoryRequest persists a one-shot analysis alongside the message
// that produced it.
type CreateHistoryRequest struct {
	BuyerMessage   string                   `json:"buyer_message" binding:"required"`
	AnalysisResult *OneShotAnalysisResponse `json:"analysis_result" binding:"required"`
}

// UpdateHistoryRequest patches seller-maintained annotations.
type UpdateHistoryRequest struct {
	ArticleType *string `json:"article_type,omitempty"`
	DealStatus  *string `json:"deal_status,omitempty"`
}

// HistoryFilter narrows a history listing.
type HistoryFilter struct {
	Search      string
	ArticleType string
	DealStatus  string
	StartDate   string
	EndDate     string
}

// HistoryListResponse is a paginated history listing.
type HistoryListResponse struct {
	Items      []*HistoryRecord `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}
