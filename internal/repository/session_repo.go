package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/liliang-cn/ghostdesk/internal/domain"
)

// SessionRepository handles session, message and analysis persistence
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session, optionally seeding it with a first buyer
// message. Both writes happen in one transaction.
func (r *SessionRepository) Create(session *domain.Session, firstMessage string) error {
	if session.ID == "" {
		session.ID = newID()
	}
	now := time.Now()
	session.Status = domain.SessionStatusActive
	session.DealStatus = domain.DealStatusPending
	session.CreatedAt = now
	session.UpdatedAt = now

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO sessions (id, status, deal_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, session.ID, session.Status, session.DealStatus, session.CreatedAt, session.UpdatedAt); err != nil {
		return err
	}

	if firstMessage != "" {
		if _, err := tx.Exec(`
			INSERT INTO messages (id, session_id, role, content, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, newID(), session.ID, domain.RoleBuyer, firstMessage, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(id string) (*domain.Session, error) {
	session := &domain.Session{}
	var dealPrice sql.NullInt64
	var articleType, requirementSummary sql.NullString

	err := r.db.QueryRow(`
		SELECT id, status, deal_status, deal_price, article_type, requirement_summary, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id).Scan(&session.ID, &session.Status, &session.DealStatus,
		&dealPrice, &articleType, &requirementSummary,
		&session.CreatedAt, &session.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if dealPrice.Valid {
		p := int(dealPrice.Int64)
		session.DealPrice = &p
	}
	if articleType.Valid {
		session.ArticleType = &articleType.String
	}
	if requirementSummary.Valid {
		session.RequirementSummary = &requirementSummary.String
	}

	return session, nil
}

// ListOptions narrows and pages a session listing.
type ListOptions struct {
	Page       int
	PageSize   int
	Status     string
	DealStatus string
	Search     string
}

// List retrieves a page of session summaries, newest activity first. The
// search term matches against each session's first message after the page is
// fetched, same as the preview it filters on.
func (r *SessionRepository) List(opts ListOptions) (*domain.SessionListResponse, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 20
	}

	var conditions []string
	var params []any
	if opts.Status != "" {
		conditions = append(conditions, "s.status = ?")
		params = append(params, opts.Status)
	}
	if opts.DealStatus != "" {
		conditions = append(conditions, "s.deal_status = ?")
		params = append(params, opts.DealStatus)
	}
	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM sessions s `+whereClause, params...).Scan(&total); err != nil {
		return nil, err
	}

	totalPages := 1
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(opts.PageSize)))
	}
	offset := (opts.Page - 1) * opts.PageSize

	rows, err := r.db.Query(`
		SELECT
			s.id, s.status, s.deal_status, s.deal_price, s.article_type,
			s.created_at, s.updated_at,
			(SELECT content FROM messages WHERE session_id = s.id ORDER BY created_at ASC LIMIT 1),
			(SELECT COUNT(*) FROM messages WHERE session_id = s.id)
		FROM sessions s `+whereClause+`
		ORDER BY s.updated_at DESC
		LIMIT ? OFFSET ?
	`, append(params, opts.PageSize, offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*domain.SessionSummary{}
	for rows.Next() {
		item := &domain.SessionSummary{}
		var dealPrice sql.NullInt64
		var articleType, firstMessage sql.NullString

		if err := rows.Scan(&item.ID, &item.Status, &item.DealStatus, &dealPrice,
			&articleType, &item.CreatedAt, &item.UpdatedAt,
			&firstMessage, &item.MessageCount); err != nil {
			return nil, err
		}

		preview := firstMessage.String
		if opts.Search != "" && !strings.Contains(strings.ToLower(preview), strings.ToLower(opts.Search)) {
			continue
		}
		if len([]rune(preview)) > 100 {
			preview = string([]rune(preview)[:100])
		}
		item.PreviewMessage = preview

		if dealPrice.Valid {
			p := int(dealPrice.Int64)
			item.DealPrice = &p
		}
		if articleType.Valid {
			item.ArticleType = &articleType.String
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.SessionListResponse{
		Items:      items,
		Total:      total,
		Page:       opts.Page,
		PageSize:   opts.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Update patches the given session fields. Returns false when the session
// does not exist.
func (r *SessionRepository) Update(id string, req *domain.UpdateSessionRequest) (bool, error) {
	var updates []string
	var params []any

	if req.Status != nil {
		updates = append(updates, "status = ?")
		params = append(params, *req.Status)
	}
	if req.DealStatus != nil {
		updates = append(updates, "deal_status = ?")
		params = append(params, *req.DealStatus)
	}
	if req.DealPrice != nil {
		updates = append(updates, "deal_price = ?")
		params = append(params, *req.DealPrice)
	}
	if req.ArticleType != nil {
		updates = append(updates, "article_type = ?")
		params = append(params, *req.ArticleType)
	}
	if req.RequirementSummary != nil {
		updates = append(updates, "requirement_summary = ?")
		params = append(params, *req.RequirementSummary)
	}
	if len(updates) == 0 {
		return true, nil
	}

	updates = append(updates, "updated_at = ?")
	params = append(params, time.Now(), id)

	result, err := r.db.Exec(
		fmt.Sprintf("UPDATE sessions SET %s WHERE id = ?", strings.Join(updates, ", ")),
		params...)
	if err != nil {
		return false, err
	}

	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// Delete deletes a session; messages and analyses cascade with it.
func (r *SessionRepository) Delete(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// AddMessage appends a message to an existing session and bumps the
// session's updated_at, in one transaction. Fails with ErrSessionNotFound
// when the session id is unknown.
func (r *SessionRepository) AddMessage(message *domain.Message) error {
	if message.ID == "" {
		message.ID = newID()
	}
	message.CreatedAt = time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists string
	err = tx.QueryRow(`SELECT id FROM sessions WHERE id = ?`, message.SessionID).Scan(&exists)
	if err == sql.ErrNoRows {
		return domain.ErrSessionNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`
		INSERT INTO messages (id, session_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, message.ID, message.SessionID, message.Role, message.Content, message.CreatedAt); err != nil {
		return err
	}

	if _, err := tx.Exec(`UPDATE sessions SET updated_at = ? WHERE id = ?`,
		message.CreatedAt, message.SessionID); err != nil {
		return err
	}

	return tx.Commit()
}

// GetMessages retrieves all messages for a session, oldest first
func (r *SessionRepository) GetMessages(sessionID string) ([]*domain.Message, error) {
	rows, err := r.db.Query(`
		SELECT id, session_id, role, content, created_at
		FROM messages WHERE session_id = ?
		ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		message := &domain.Message{}
		if err := rows.Scan(&message.ID, &message.SessionID, &message.Role,
			&message.Content, &message.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}

// SaveAnalysis persists an analysis result for the given message and
// back-fills the session's article_type the first time a non-null value is
// extracted. Never overwrites an already-set article_type.
func (r *SessionRepository) SaveAnalysis(sessionID, messageID string, result *domain.AnalysisResult) (*domain.AIAnalysis, error) {
	analysis := &domain.AIAnalysis{
		ID:               newID(),
		SessionID:        sessionID,
		MessageID:        messageID,
		SuggestedReplies: result.SuggestedReplies,
		ExtractedInfo:    result.ExtractedInfo,
		MissingInfo:      result.MissingInfo,
		CanQuote:         result.CanQuote,
		PriceMin:         result.PriceMin,
		PriceMax:         result.PriceMax,
		PriceBasis:       result.PriceBasis,
		QuickTags:        result.QuickTags,
		CreatedAt:        time.Now(),
	}

	repliesJSON, _ := json.Marshal(analysis.SuggestedReplies)
	extractedJSON, _ := json.Marshal(analysis.ExtractedInfo)
	missingJSON, _ := json.Marshal(analysis.MissingInfo)
	tagsJSON, _ := json.Marshal(analysis.QuickTags)

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO ai_analyses (
			id, session_id, message_id, suggested_replies, extracted_info,
			missing_info, can_quote, price_min, price_max, price_basis, quick_tags, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, analysis.ID, sessionID, messageID,
		string(repliesJSON), string(extractedJSON), string(missingJSON),
		boolToInt(analysis.CanQuote), analysis.PriceMin, analysis.PriceMax,
		analysis.PriceBasis, string(tagsJSON), analysis.CreatedAt); err != nil {
		return nil, err
	}

	if result.ExtractedInfo != nil && result.ExtractedInfo.ArticleType != nil {
		if _, err := tx.Exec(`
			UPDATE sessions SET article_type = ?, updated_at = ?
			WHERE id = ? AND article_type IS NULL
		`, *result.ExtractedInfo.ArticleType, time.Now(), sessionID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return analysis, nil
}

// GetLatestAnalysis retrieves the most recent analysis for a session, or nil
func (r *SessionRepository) GetLatestAnalysis(sessionID string) (*domain.AIAnalysis, error) {
	row := r.db.QueryRow(`
		SELECT id, session_id, message_id, suggested_replies, extracted_info,
			missing_info, can_quote, price_min, price_max, price_basis, quick_tags, created_at
		FROM ai_analyses
		WHERE session_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, sessionID)

	analysis, err := scanAnalysis(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// GetAnalyses retrieves all analyses for a session, oldest first
func (r *SessionRepository) GetAnalyses(sessionID string) ([]*domain.AIAnalysis, error) {
	rows, err := r.db.Query(`
		SELECT id, session_id, message_id, suggested_replies, extracted_info,
			missing_info, can_quote, price_min, price_max, price_basis, quick_tags, created_at
		FROM ai_analyses
		WHERE session_id = ?
		ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []*domain.AIAnalysis
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}

	return analyses, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*domain.AIAnalysis, error) {
	analysis := &domain.AIAnalysis{}
	var repliesJSON, extractedJSON, missingJSON, tagsJSON sql.NullString
	var canQuote int
	var priceMin, priceMax sql.NullInt64
	var priceBasis sql.NullString

	if err := row.Scan(&analysis.ID, &analysis.SessionID, &analysis.MessageID,
		&repliesJSON, &extractedJSON, &missingJSON, &canQuote,
		&priceMin, &priceMax, &priceBasis, &tagsJSON, &analysis.CreatedAt); err != nil {
		return nil, err
	}

	analysis.CanQuote = canQuote != 0
	if repliesJSON.Valid && repliesJSON.String != "" {
		json.Unmarshal([]byte(repliesJSON.String), &analysis.SuggestedReplies)
	}
	if extractedJSON.Valid && extractedJSON.String != "" {
		json.Unmarshal([]byte(extractedJSON.String), &analysis.ExtractedInfo)
	}
	if missingJSON.Valid && missingJSON.String != "" {
		json.Unmarshal([]byte(missingJSON.String), &analysis.MissingInfo)
	}
	if tagsJSON.Valid && tagsJSON.String != "" {
		json.Unmarshal([]byte(tagsJSON.String), &analysis.QuickTags)
	}
	if priceMin.Valid {
		p := int(priceMin.Int64)
		analysis.PriceMin = &p
	}
	if priceMax.Valid {
		p := int(priceMax.Int64)
		analysis.PriceMax = &p
	}
	if priceBasis.Valid {
		analysis.PriceBasis = &priceBasis.String
	}

	return analysis, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
