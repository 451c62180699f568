package service

import (
	"github.com/liliang-cn/ghostdesk/internal/domain"
	"github.com/liliang-cn/ghostdesk/internal/repository"
)

// WorkbenchService backs the quick-analysis workbench: one-shot message
// analysis and the history of past analyses.
type WorkbenchService struct {
	historyRepo *repository.HistoryRepository
	analyzer    *AnalyzerService
}

// NewWorkbenchService creates a new workbench service
func NewWorkbenchService(historyRepo *repository.HistoryRepository, analyzer *AnalyzerService) *WorkbenchService {
	return &WorkbenchService{
		historyRepo: historyRepo,
		analyzer:    analyzer,
	}
}

// Analyze runs a single buyer message through the one-shot pipeline. Nothing
// is persisted; the caller saves explicitly via SaveHistory.
func (s *WorkbenchService) Analyze(req *domain.OneShotAnalysisRequest) (*domain.OneShotAnalysisResponse, error) {
	return s.analyzer.AnalyzeOneShot(req.Message, req.LLMConfig)
}

// SaveHistory persists an analysis result alongside the message that
// produced it.
func (s *WorkbenchService) SaveHistory(req *domain.CreateHistoryRequest) (*domain.HistoryRecord, error) {
	return s.historyRepo.Create(req.BuyerMessage, req.AnalysisResult)
}

// GetHistory retrieves one record, or nil when it does not exist
func (s *WorkbenchService) GetHistory(id string) (*domain.HistoryRecord, error) {
	return s.historyRepo.Get(id)
}

// ListHistory retrieves a filtered page of history records
func (s *WorkbenchService) ListHistory(page, pageSize int, filter domain.HistoryFilter) (*domain.HistoryListResponse, error) {
	return s.historyRepo.List(page, pageSize, filter)
}

// UpdateHistory patches seller annotations; false means not found
func (s *WorkbenchService) UpdateHistory(id string, req *domain.UpdateHistoryRequest) (bool, error) {
	return s.historyRepo.Update(id, req)
}

// DeleteHistory removes a record; false means not found
func (s *WorkbenchService) DeleteHistory(id string) (bool, error) {
	return s.historyRepo.Delete(id)
}

// ArticleTypes lists the distinct article types sellers have tagged
func (s *WorkbenchService) ArticleTypes() ([]string, error) {
	return s.historyRepo.ArticleTypes()
}
