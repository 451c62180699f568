package catalog

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/liliang-cn/ghostdesk/internal/domain"
)

// headerRows is the fixed number of leading rows (blank, note, header) the
// seller's price sheet carries before the first offering.
const headerRows = 3

var digitRun = regexp.MustCompile(`\d+`)

// Catalog loads service offerings from the seller's xlsx price sheet and
// keeps a process-wide cached copy. Get populates the cache lazily; Refresh
// replaces it wholesale, so concurrent readers see either the old or the new
// list, never a partial one.
type Catalog struct {
	path   string
	logger *zap.Logger

	mu        sync.RWMutex
	offerings []*domain.ServiceOffering
}

// New creates a catalog backed by the xlsx file at path
func New(path string, logger *zap.Logger) *Catalog {
	return &Catalog{path: path, logger: logger}
}

// Get returns the cached offerings, loading them on first use
func (c *Catalog) Get() ([]*domain.ServiceOffering, error) {
	c.mu.RLock()
	offerings := c.offerings
	c.mu.RUnlock()

	if offerings != nil {
		return offerings, nil
	}
	return c.Refresh()
}

// Refresh reloads the price sheet and replaces the cache. Concurrent
// refreshes are not coordinated; the last writer wins.
func (c *Catalog) Refresh() ([]*domain.ServiceOffering, error) {
	offerings, err := c.Load()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.offerings = offerings
	c.mu.Unlock()

	c.logger.Info("price catalog refreshed",
		zap.String("path", c.path),
		zap.Int("offerings", len(offerings)),
	)

	return offerings, nil
}

// Load reads the price sheet from disk without touching the cache
func (c *Catalog) Load() ([]*domain.ServiceOffering, error) {
	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", domain.ErrCatalogSourceMissing, c.path)
	}

	f, err := excelize.OpenFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open price sheet: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read price sheet: %w", err)
	}

	var offerings []*domain.ServiceOffering
	for i, row := range rows {
		if i < headerRows {
			continue
		}
		offering := parseRow(row, len(offerings)+1)
		if offering != nil {
			offerings = append(offerings, offering)
		}
	}

	return offerings, nil
}

// parseRow turns one sheet row (blank, name, simple price, complex price)
// into an offering, or nil when the name cell is unusable.
func parseRow(row []string, id int) *domain.ServiceOffering {
	name := strings.TrimSpace(cell(row, 1))
	if name == "" || name == "nan" {
		return nil
	}

	return &domain.ServiceOffering{
		ID:               id,
		Name:             name,
		PriceSimple:      ParsePrice(cell(row, 2)),
		PriceComplex:     ParsePrice(cell(row, 3)),
		Unit:             detectUnit(name),
		RequiresMaterial: requiresMaterial(name),
		Note:             extractNote(name),
	}
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

// ParsePrice parses a price cell. Absent, "-", and "无" cells mean no price;
// otherwise the first digit run wins (handles cells like "10（一分钟）").
// Malformed text yields no price rather than an error.
func ParsePrice(value string) *int {
	value = strings.TrimSpace(value)
	if value == "" || value == "-" || value == "无" {
		return nil
	}

	match := digitRun.FindString(value)
	if match == "" {
		return nil
	}

	n := 0
	for _, r := range match {
		n = n*10 + int(r-'0')
	}
	return &n
}

// detectUnit picks the pricing unit from cue phrases in the offering name,
// checked in priority order; thousand characters is the default.
func detectUnit(name string) string {
	note := extractNote(name)
	nameLower := strings.ToLower(name)

	switch {
	case strings.Contains(name, "按页") || strings.Contains(note, "按页"):
		return domain.UnitPage
	case strings.Contains(name, "按分钟") || strings.Contains(name, "分钟计"):
		return domain.UnitMinute
	case strings.Contains(name, "按篇") || strings.Contains(note, "按篇"):
		return domain.UnitPiece
	case strings.Contains(nameLower, "ppt") || strings.Contains(name, "一页"):
		return domain.UnitPage
	case strings.Contains(name, "看视频"):
		return domain.UnitMinute
	}
	return domain.UnitThousandChars
}

// extractNote pulls the first parenthesized (ASCII or fullwidth) substring
// out of the offering name.
func extractNote(name string) string {
	if start := strings.Index(name, "("); start >= 0 {
		if end := strings.Index(name[start:], ")"); end > 0 {
			return name[start+1 : start+end]
		}
	}
	if start := strings.Index(name, "（"); start >= 0 {
		if end := strings.Index(name[start:], "）"); end > 0 {
			return name[start+len("（") : start+end]
		}
	}
	return ""
}

func requiresMaterial(name string) bool {
	return strings.Contains(name, "需要看材料") ||
		strings.Contains(name, "需看材料") ||
		strings.Contains(name, "看材料")
}
