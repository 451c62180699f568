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

// HistoryRepository handles one-shot analysis history persistence
type HistoryRepository struct {
	db *DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create persists a one-shot analysis next to the buyer message it analyzed
func (r *HistoryRepository) Create(buyerMessage string, result *domain.OneShotAnalysisResponse) (*domain.HistoryRecord, error) {
	id := newID()
	now := time.Now()

	var detectedTypeName *string
	if result.DetectedType != nil {
		detectedTypeName = &result.DetectedType.Name
	}

	extractedJSON, _ := json.Marshal(result.ExtractedInfo)
	missingJSON, _ := json.Marshal(result.MissingInfo)

	_, err := r.db.Exec(`
		INSERT INTO history_records (
			id, buyer_message, detected_type_name, confidence,
			extracted_info, missing_info, suggested_reply,
			price_min, price_max, price_basis, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, buyerMessage, detectedTypeName, result.Confidence,
		string(extractedJSON), string(missingJSON), result.SuggestedReply,
		result.PriceEstimate.Min, result.PriceEstimate.Max, result.PriceEstimate.Basis,
		now, now)
	if err != nil {
		return nil, err
	}

	return r.Get(id)
}

// Get retrieves a history record by ID, or nil
func (r *HistoryRepository) Get(id string) (*domain.HistoryRecord, error) {
	row := r.db.QueryRow(`
		SELECT id, buyer_message, detected_type_name, confidence,
			extracted_info, missing_info, suggested_reply,
			price_min, price_max, price_basis, article_type, deal_status,
			created_at, updated_at
		FROM history_records WHERE id = ?
	`, id)

	record, err := scanHistoryRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// List retrieves a page of history records, newest first
func (r *HistoryRepository) List(page, pageSize int, filter domain.HistoryFilter) (*domain.HistoryListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	conditions := []string{"1=1"}
	var params []any
	if filter.Search != "" {
		conditions = append(conditions, "buyer_message LIKE ?")
		params = append(params, "%"+filter.Search+"%")
	}
	if filter.ArticleType != "" {
		conditions = append(conditions, "article_type = ?")
		params = append(params, filter.ArticleType)
	}
	if filter.DealStatus != "" {
		conditions = append(conditions, "deal_status = ?")
		params = append(params, filter.DealStatus)
	}
	if filter.StartDate != "" {
		conditions = append(conditions, "created_at >= ?")
		params = append(params, filter.StartDate)
	}
	if filter.EndDate != "" {
		conditions = append(conditions, "created_at <= ?")
		params = append(params, filter.EndDate+" 23:59:59")
	}
	whereClause := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM history_records WHERE `+whereClause, params...).Scan(&total); err != nil {
		return nil, err
	}

	totalPages := 1
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	}
	offset := (page - 1) * pageSize

	rows, err := r.db.Query(`
		SELECT id, buyer_message, detected_type_name, confidence,
			extracted_info, missing_info, suggested_reply,
			price_min, price_max, price_basis, article_type, deal_status,
			created_at, updated_at
		FROM history_records WHERE `+whereClause+`
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, append(params, pageSize, offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*domain.HistoryRecord{}
	for rows.Next() {
		record, err := scanHistoryRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.HistoryListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Update patches seller annotations on a history record
func (r *HistoryRepository) Update(id string, req *domain.UpdateHistoryRequest) (bool, error) {
	var updates []string
	var params []any

	if req.ArticleType != nil {
		updates = append(updates, "article_type = ?")
		params = append(params, *req.ArticleType)
	}
	if req.DealStatus != nil {
		updates = append(updates, "deal_status = ?")
		params = append(params, *req.DealStatus)
	}
	if len(updates) == 0 {
		return false, nil
	}

	updates = append(updates, "updated_at = ?")
	params = append(params, time.Now(), id)

	result, err := r.db.Exec(
		fmt.Sprintf("UPDATE history_records SET %s WHERE id = ?", strings.Join(updates, ", ")),
		params...)
	if err != nil {
		return false, err
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// Delete deletes a history record
func (r *HistoryRepository) Delete(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM history_records WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// ArticleTypes lists the distinct article types sellers have tagged
func (r *HistoryRepository) ArticleTypes() ([]string, error) {
	rows, err := r.db.Query(`
		SELECT DISTINCT article_type FROM history_records
		WHERE article_type IS NOT NULL AND article_type != ''
		ORDER BY article_type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func scanHistoryRecord(row rowScanner) (*domain.HistoryRecord, error) {
	record := &domain.HistoryRecord{}
	var detectedTypeName, extractedJSON, missingJSON, priceBasis, articleType, dealStatus sql.NullString
	var confidence sql.NullFloat64

	if err := row.Scan(&record.ID, &record.BuyerMessage, &detectedTypeName, &confidence,
		&extractedJSON, &missingJSON, &record.SuggestedReply,
		&record.PriceMin, &record.PriceMax, &priceBasis, &articleType, &dealStatus,
		&record.CreatedAt, &record.UpdatedAt); err != nil {
		return nil, err
	}

	record.Confidence = confidence.Float64
	if detectedTypeName.Valid {
		record.DetectedTypeName = &detectedTypeName.String
	}
	if extractedJSON.Valid && extractedJSON.String != "" {
		json.Unmarshal([]byte(extractedJSON.String), &record.ExtractedInfo)
	}
	if missingJSON.Valid && missingJSON.String != "" {
		json.Unmarshal([]byte(missingJSON.String), &record.MissingInfo)
	}
	record.PriceBasis = priceBasis.String
	if articleType.Valid && articleType.String != "" {
		record.ArticleType = &articleType.String
	}
	record.DealStatus = dealStatus.String
	if record.DealStatus == "" {
		record.DealStatus = domain.DealStatusPending
	}

	return record, nil
}
