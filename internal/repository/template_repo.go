package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/liliang-cn/ghostdesk/internal/domain"
)

// TemplateRepository handles reply and text template persistence
type TemplateRepository struct {
	db *DB
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// List retrieves all reply templates ordered by sort order
func (r *TemplateRepository) List() ([]*domain.ReplyTemplate, error) {
	rows, err := r.db.Query(`
		SELECT id, title, content, sort_order, created_at
		FROM reply_templates ORDER BY sort_order ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*domain.ReplyTemplate
	for rows.Next() {
		tmpl := &domain.ReplyTemplate{}
		if err := rows.Scan(&tmpl.ID, &tmpl.Title, &tmpl.Content,
			&tmpl.SortOrder, &tmpl.CreatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}

	return templates, rows.Err()
}

// Get retrieves a reply template by ID
func (r *TemplateRepository) Get(id string) (*domain.ReplyTemplate, error) {
	tmpl := &domain.ReplyTemplate{}
	err := r.db.QueryRow(`
		SELECT id, title, content, sort_order, created_at
		FROM reply_templates WHERE id = ?
	`, id).Scan(&tmpl.ID, &tmpl.Title, &tmpl.Content, &tmpl.SortOrder, &tmpl.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tmpl, nil
}

// Create creates a reply template, appending it after the current last one.
func (r *TemplateRepository) Create(tmpl *domain.ReplyTemplate) error {
	if tmpl.ID == "" {
		tmpl.ID = newID()
	}
	tmpl.CreatedAt = time.Now()

	var maxOrder sql.NullInt64
	if err := r.db.QueryRow(`SELECT MAX(sort_order) FROM reply_templates`).Scan(&maxOrder); err != nil {
		return err
	}
	tmpl.SortOrder = int(maxOrder.Int64) + 1

	_, err := r.db.Exec(`
		INSERT INTO reply_templates (id, title, content, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, tmpl.ID, tmpl.Title, tmpl.Content, tmpl.SortOrder, tmpl.CreatedAt)

	return err
}

// Update updates a reply template
func (r *TemplateRepository) Update(id, title, content string) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE reply_templates SET title = ?, content = ?, updated_at = ?
		WHERE id = ?
	`, title, content, time.Now(), id)
	if err != nil {
		return false, err
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// Delete deletes a reply template
func (r *TemplateRepository) Delete(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM reply_templates WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// GetText retrieves the default text template of the given kind, or nil
func (r *TemplateRepository) GetText(kind string) (*domain.TextTemplate, error) {
	tmpl := &domain.TextTemplate{}
	var isDefault int
	err := r.db.QueryRow(`
		SELECT id, content, is_default, created_at
		FROM text_templates WHERE kind = ? AND is_default = 1 LIMIT 1
	`, kind).Scan(&tmpl.ID, &tmpl.Content, &isDefault, &tmpl.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	tmpl.IsDefault = isDefault != 0
	return tmpl, nil
}

// UpsertText replaces the default text template content for the given kind,
// creating the row if it does not exist yet.
func (r *TemplateRepository) UpsertText(kind, content string) error {
	var id string
	err := r.db.QueryRow(`SELECT id FROM text_templates WHERE kind = ? AND is_default = 1`, kind).Scan(&id)
	if err == sql.ErrNoRows {
		_, err = r.db.Exec(`
			INSERT INTO text_templates (id, kind, content, is_default)
			VALUES (?, ?, ?, 1)
		`, newID(), kind, content)
		return err
	}
	if err != nil {
		return err
	}

	result, err := r.db.Exec(`UPDATE text_templates SET content = ? WHERE id = ?`, content, id)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("text template not found: %s", kind)
	}
	return nil
}
