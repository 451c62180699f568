package repository

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
func NewDB(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := seedReplyTemplates(db); err != nil {
		return nil, fmt.Errorf("failed to seed reply templates: %w", err)
	}

	return &DB{db}, nil
}

func runMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL DEFAULT 'active',
			deal_status TEXT NOT NULL DEFAULT 'pending',
			deal_price INTEGER,
			article_type TEXT,
			requirement_summary TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS ai_analyses (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			message_id TEXT NOT NULL,
			suggested_replies TEXT,
			extracted_info TEXT,
			missing_info TEXT,
			can_quote INTEGER NOT NULL DEFAULT 0,
			price_min INTEGER,
			price_max INTEGER,
			price_basis TEXT,
			quick_tags TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE,
			FOREIGN KEY (message_id) REFERENCES messages(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS reply_templates (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			sort_order INTEGER DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS text_templates (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			content TEXT NOT NULL,
			is_default INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS history_records (
			id TEXT PRIMARY KEY,
			buyer_message TEXT NOT NULL,
			detected_type_name TEXT,
			confidence REAL DEFAULT 0,
			extracted_info TEXT,
			missing_info TEXT,
			suggested_reply TEXT NOT NULL,
			price_min INTEGER DEFAULT 0,
			price_max INTEGER DEFAULT 0,
			price_basis TEXT,
			article_type TEXT,
			deal_status TEXT DEFAULT 'pending',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_session ON ai_analyses(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_templates_sort ON reply_templates(sort_order)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_text_templates_kind ON text_templates(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_history_created_at ON history_records(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_history_deal_status ON history_records(deal_status)`,
		`CREATE INDEX IF NOT EXISTS idx_history_article_type ON history_records(article_type)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	return nil
}

// seedReplyTemplates inserts the starter reply snippets on a fresh database.
func seedReplyTemplates(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM reply_templates`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []struct {
		title   string
		content string
	}{
		{"开场白-友好", "亲，您好！感谢咨询~请问具体是什么类型的文章呢？方便的话告诉我一下字数要求和截止时间，我给您报个价~"},
		{"开场白-专业", "您好！我是专业代写，接过各类稿件。请问您这边需要写什么主题？大概多少字？什么时候要呢？"},
		{"询问字数", "好的，请问大概需要多少字呢？"},
		{"询问截止日期", "请问什么时候需要呢？急稿的话需要加急费哦~"},
		{"询问参考资料", "请问有参考资料或者模板吗？有的话可以发我看看~"},
		{"报价话术", "这个难度的话，大概是XX元，包修改到满意为止。您看可以吗？"},
		{"催单话术", "亲，考虑得怎么样啦？现在下单的话可以优先安排哦~"},
		{"成交确认", "好的，那我们开始吧！请把详细要求发我，写完发您确认~"},
	}

	for i, d := range defaults {
		if _, err := db.Exec(`
			INSERT INTO reply_templates (id, title, content, sort_order)
			VALUES (?, ?, ?, ?)
		`, newID(), d.title, d.content, i+1); err != nil {
			return err
		}
	}

	return nil
}
