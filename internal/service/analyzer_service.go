package service

import (
	"go.uber.org/zap"

	"github.com/liliang-cn/ghostdesk/internal/catalog"
	"github.com/liliang-cn/ghostdesk/internal/domain"
	"github.com/liliang-cn/ghostdesk/internal/llm"
	"github.com/liliang-cn/ghostdesk/internal/prompt"
)

// AnalyzerService turns buyer messages into structured analyses through a
// single LLM call per request. It never persists anything; that is the
// session service's job.
type AnalyzerService struct {
	catalog *catalog.Catalog
	prompts *prompt.Builder
	client  *llm.Client
	logger  *zap.Logger
}

// NewAnalyzerService creates a new analyzer service
func NewAnalyzerService(
	cat *catalog.Catalog,
	prompts *prompt.Builder,
	client *llm.Client,
	logger *zap.Logger,
) *AnalyzerService {
	return &AnalyzerService{
		catalog: cat,
		prompts: prompts,
		client:  client,
		logger:  logger,
	}
}

// AnalyzeTurn analyzes the latest buyer message of a conversation. The full
// history and the previously accumulated extraction state go into the
// prompt; the returned extraction is merged field-by-field with the prior
// state so earlier knowledge survives a forgetful model.
func (s *AnalyzerService) AnalyzeTurn(messages []*domain.Message, cfg domain.LLMConfig, prior *domain.ExtractedInfo) (*domain.AnalysisResult, error) {
	if len(messages) == 0 {
		return nil, domain.ErrEmptyConversation
	}

	offerings, err := s.catalog.Get()
	if err != nil {
		return nil, err
	}

	latest := messages[len(messages)-1]
	history := messages[:len(messages)-1]

	userPrompt, err := s.prompts.BuildTurnPrompt(offerings, history, latest.Content, prior)
	if err != nil {
		return nil, err
	}
	systemPrompt, err := s.prompts.SystemPrompt()
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Chat(cfg, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	parsed, err := s.parseResponse(raw)
	if err != nil {
		return nil, err
	}

	result := decodeTurnAnalysis(parsed)
	result.ExtractedInfo = result.ExtractedInfo.Merge(prior)

	return result, nil
}

// AnalyzeOneShot analyzes a single buyer message outside any session
func (s *AnalyzerService) AnalyzeOneShot(message string, cfg domain.LLMConfig) (*domain.OneShotAnalysisResponse, error) {
	offerings, err := s.catalog.Get()
	if err != nil {
		return nil, err
	}

	userPrompt, err := s.prompts.BuildOneShotPrompt(offerings, message)
	if err != nil {
		return nil, err
	}
	systemPrompt, err := s.prompts.SystemPrompt()
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Chat(cfg, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	parsed, err := s.parseResponse(raw)
	if err != nil {
		return nil, err
	}

	return decodeOneShotAnalysis(parsed), nil
}

// SummarizeHistory condenses a full transcript into a requirement digest
func (s *AnalyzerService) SummarizeHistory(messages []*domain.Message, cfg domain.LLMConfig) (*domain.RequirementSummary, error) {
	userPrompt := s.prompts.BuildSummaryPrompt(messages)

	raw, err := s.client.Chat(cfg, "", userPrompt)
	if err != nil {
		return nil, err
	}

	parsed, err := s.parseResponse(raw)
	if err != nil {
		return nil, err
	}

	return decodeRequirementSummary(parsed), nil
}

// TestConnection probes the configured LLM endpoint
func (s *AnalyzerService) TestConnection(cfg domain.LLMConfig) error {
	return s.client.TestConnection(cfg)
}

func (s *AnalyzerService) parseResponse(raw string) (map[string]any, error) {
	parsed, mode, err := llm.Parse(raw)
	if err != nil {
		s.logger.Error("llm response had no extractable json",
			zap.Int("length", len(raw)),
		)
		return nil, err
	}
	if mode == llm.ParseModeSalvage {
		// The model stopped following the format instructions; worth
		// watching for prompt drift.
		s.logger.Warn("llm response parsed via brace salvage",
			zap.Int("length", len(raw)),
		)
	}
	return parsed, nil
}
