package domain

import "time"

// Session status constants
const (
	SessionStatusActive = "active"
	SessionStatusClosed = "closed"
)

// Deal status constants
const (
	DealStatusPending = "pending"
	DealStatusSuccess = "success"
	DealStatusFailed  = "failed"
)

// Message role constants
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

// LLMConfig is the caller-supplied LLM endpoint configuration. It arrives on
// every analysis-triggering request; no credential is stored server-side.
type LLMConfig struct {
	BaseURL string `json:"base_url" binding:"required"`
	APIKey  string `json:"api_key" binding:"required"`
	ModelID string `json:"model_id" binding:"required"`
}

// Session represents one buyer conversation.
type Session struct {
	ID                 string    `json:"id"`
	Status             string    `json:"status"`      // active, closed
	DealStatus         string    `json:"deal_status"` // pending, success, failed
	DealPrice          *int      `json:"deal_price,omitempty"`
	ArticleType        *string   `json:"article_type,omitempty"`
	RequirementSummary *string   `json:"requirement_summary,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Message represents one turn of a conversation. Append-only, owned by its
// session.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // buyer, seller
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ExtractedInfo is the accumulating record of requirement fields pulled out of
// the conversation so far. Each field is independently optional.
type ExtractedInfo struct {
	ArticleType         *string  `json:"articleType,omitempty"`
	Topic               *string  `json:"topic,omitempty"`
	WordCount           *int     `json:"wordCount,omitempty"`
	Deadline            *string  `json:"deadline,omitempty"`
	HasReference        *bool    `json:"hasReference,omitempty"`
	SpecialRequirements []string `json:"specialRequirements,omitempty"`
}

// IsEmpty reports whether no field has been extracted yet.
func (e *ExtractedInfo) IsEmpty() bool {
	if e == nil {
		return true
	}
	return e.ArticleType == nil && e.Topic == nil && e.WordCount == nil &&
		e.Deadline == nil && e.HasReference == nil && len(e.SpecialRequirements) == 0
}

// Merge combines a newly extracted record with the previously accumulated
// one. A newer non-null field wins; otherwise the prior value is kept, so a
// model that forgets a field cannot erase accumulated knowledge.
func (e *ExtractedInfo) Merge(prior *ExtractedInfo) *ExtractedInfo {
	if prior == nil {
		return e
	}
	merged := *e
	if merged.ArticleType == nil {
		merged.ArticleType = prior.ArticleType
	}
	if merged.Topic == nil {
		merged.Topic = prior.Topic
	}
	if merged.WordCount == nil {
		merged.WordCount = prior.WordCount
	}
	if merged.Deadline == nil {
		merged.Deadline = prior.Deadline
	}
	if merged.HasReference == nil {
		merged.HasReference = prior.HasReference
	}
	if len(merged.SpecialRequirements) == 0 {
		merged.SpecialRequirements = prior.SpecialRequirements
	}
	return &merged
}

// AnalysisResult is the outcome of analyzing one buyer turn. Produced by the
// analyzer, persisted by the session service.
type AnalysisResult struct {
	SuggestedReplies []string       `json:"suggested_replies"`
	ExtractedInfo    *ExtractedInfo `json:"extracted_info"`
	MissingInfo      []string       `json:"missing_info"`
	CanQuote         bool           `json:"can_quote"`
	PriceMin         *int           `json:"price_min,omitempty"`
	PriceMax         *int           `json:"price_max,omitempty"`
	PriceBasis       *string        `json:"price_basis,omitempty"`
	QuickTags        []string       `json:"quick_tags"`
}

// AIAnalysis is a persisted AnalysisResult tied to the message that
// triggered it. The most recent analysis per session carries the current
// accumulated knowledge.
type AIAnalysis struct {
	ID               string         `json:"id"`
	SessionID        string         `json:"session_id"`
	MessageID        string         `json:"message_id"`
	SuggestedReplies []string       `json:"suggested_replies"`
	ExtractedInfo    *ExtractedInfo `json:"extracted_info"`
	MissingInfo      []string       `json:"missing_info"`
	CanQuote         bool           `json:"can_quote"`
	PriceMin         *int           `json:"price_min,omitempty"`
	PriceMax         *int           `json:"price_max,omitempty"`
	PriceBasis       *string        `json:"price_basis,omitempty"`
	QuickTags        []string       `json:"quick_tags"`
	CreatedAt        time.Time      `json:"created_at"`
}

// RequirementSummary is the single-shot digest of a whole session.
type RequirementSummary struct {
	ArticleType  string   `json:"articleType"`
	WordCount    *int     `json:"wordCount,omitempty"`
	Deadline     string   `json:"deadline"`
	Topic        string   `json:"topic"`
	Requirements []string `json:"requirements"`
	Notes        string   `json:"notes"`
}

// Request/response shapes

// CreateSessionRequest optionally seeds the session with a first buyer message.
type CreateSessionRequest struct {
	FirstMessage string `json:"first_message,omitempty"`
}

// UpdateSessionRequest patches session fields; nil fields are left untouched.
type UpdateSessionRequest struct {
	Status             *string `json:"status,omitempty"`
	DealStatus         *string `json:"deal_status,omitempty"`
	DealPrice          *int    `json:"deal_price,omitempty"`
	ArticleType        *string `json:"article_type,omitempty"`
	RequirementSummary *string `json:"requirement_summary,omitempty"`
}

// CreateMessageRequest appends a message without triggering analysis.
type CreateMessageRequest struct {
	Role    string `json:"role" binding:"required,oneof=buyer seller"`
	Content string `json:"content" binding:"required"`
}

// AnalyzeMessageRequest appends a buyer message and runs the analyzer.
type AnalyzeMessageRequest struct {
	Content   string    `json:"content" binding:"required"`
	LLMConfig LLMConfig `json:"llm_config" binding:"required"`
}

// SummarizeRequest triggers the requirement summarizer.
type SummarizeRequest struct {
	LLMConfig LLMConfig `json:"llm_config" binding:"required"`
}

// SendMessageResponse reports partial success explicitly: the message always
// lands, the analysis may be absent with an error description.
type SendMessageResponse struct {
	Message  *Message    `json:"message"`
	Analysis *AIAnalysis `json:"analysis"`
	Error    string      `json:"error,omitempty"`
}

// SessionSummary is one row of the session list.
type SessionSummary struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	DealStatus     string    `json:"deal_status"`
	DealPrice      *int      `json:"deal_price,omitempty"`
	ArticleType    *string   `json:"article_type,omitempty"`
	PreviewMessage string    `json:"preview_message"`
	MessageCount   int       `json:"message_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SessionListResponse is a paginated session listing.
type SessionListResponse struct {
	Items      []*SessionSummary `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// MessageWithAnalysis pairs a message with the analysis it triggered, if any.
type MessageWithAnalysis struct {
	Message  *Message    `json:"message"`
	Analysis *AIAnalysis `json:"analysis,omitempty"`
}

// SessionDetail is the full view of one session.
type SessionDetail struct {
	Session
	Messages       []*MessageWithAnalysis `json:"messages"`
	LatestAnalysis *AIAnalysis            `json:"latest_analysis,omitempty"`
}
