package service

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/liliang-cn/ghostdesk/internal/domain"
	"github.com/liliang-cn/ghostdesk/internal/repository"
)

// SessionService handles session lifecycle and the send-message-and-analyze
// orchestration.
type SessionService struct {
	sessionRepo *repository.SessionRepository
	analyzer    *AnalyzerService
	logger      *zap.Logger
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo *repository.SessionRepository,
	analyzer *AnalyzerService,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		analyzer:    analyzer,
		logger:      logger,
	}
}

// CreateSession creates a new session, optionally with a first buyer message
func (s *SessionService) CreateSession(req *domain.CreateSessionRequest) (*domain.Session, error) {
	session := &domain.Session{}
	if err := s.sessionRepo.Create(session, req.FirstMessage); err != nil {
		return nil, err
	}
	return session, nil
}

// ListSessions retrieves a filtered page of session summaries
func (s *SessionService) ListSessions(opts repository.ListOptions) (*domain.SessionListResponse, error) {
	return s.sessionRepo.List(opts)
}

// GetSessionDetail retrieves a session with its messages and analyses, or
// nil when the session does not exist.
func (s *SessionService) GetSessionDetail(id string) (*domain.SessionDetail, error) {
	session, err := s.sessionRepo.Get(id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	messages, err := s.sessionRepo.GetMessages(id)
	if err != nil {
		return nil, err
	}
	analyses, err := s.sessionRepo.GetAnalyses(id)
	if err != nil {
		return nil, err
	}

	byMessage := make(map[string]*domain.AIAnalysis, len(analyses))
	for _, a := range analyses {
		byMessage[a.MessageID] = a
	}

	detail := &domain.SessionDetail{
		Session:  *session,
		Messages: make([]*domain.MessageWithAnalysis, 0, len(messages)),
	}
	for _, m := range messages {
		detail.Messages = append(detail.Messages, &domain.MessageWithAnalysis{
			Message:  m,
			Analysis: byMessage[m.ID],
		})
	}
	if len(analyses) > 0 {
		detail.LatestAnalysis = analyses[len(analyses)-1]
	}

	return detail, nil
}

// UpdateSession patches session fields; false means not found
func (s *SessionService) UpdateSession(id string, req *domain.UpdateSessionRequest) (bool, error) {
	return s.sessionRepo.Update(id, req)
}

// DeleteSession deletes a session and everything it owns
func (s *SessionService) DeleteSession(id string) (bool, error) {
	return s.sessionRepo.Delete(id)
}

// AddMessage appends a message without triggering analysis
func (s *SessionService) AddMessage(sessionID string, req *domain.CreateMessageRequest) (*domain.Message, error) {
	message := &domain.Message{
		SessionID: sessionID,
		Role:      req.Role,
		Content:   req.Content,
	}
	if err := s.sessionRepo.AddMessage(message); err != nil {
		return nil, err
	}
	return message, nil
}

// GetMessages retrieves a session's messages, oldest first
func (s *SessionService) GetMessages(sessionID string) ([]*domain.Message, error) {
	return s.sessionRepo.GetMessages(sessionID)
}

// SendMessageAndAnalyze appends a buyer message and runs the analyzer over
// the full history. The message is persisted before the LLM is involved, so
// an analysis failure never loses it: the response then carries the message
// with a nil analysis and an error description.
func (s *SessionService) SendMessageAndAnalyze(sessionID, content string, cfg domain.LLMConfig) (*domain.SendMessageResponse, error) {
	message := &domain.Message{
		SessionID: sessionID,
		Role:      domain.RoleBuyer,
		Content:   content,
	}
	if err := s.sessionRepo.AddMessage(message); err != nil {
		return nil, err
	}

	messages, err := s.sessionRepo.GetMessages(sessionID)
	if err != nil {
		return s.softFailure(message, err), nil
	}

	var prior *domain.ExtractedInfo
	latestAnalysis, err := s.sessionRepo.GetLatestAnalysis(sessionID)
	if err != nil {
		return s.softFailure(message, err), nil
	}
	if latestAnalysis != nil {
		prior = latestAnalysis.ExtractedInfo
	}

	result, err := s.analyzer.AnalyzeTurn(messages, cfg, prior)
	if err != nil {
		return s.softFailure(message, err), nil
	}

	analysis, err := s.sessionRepo.SaveAnalysis(sessionID, message.ID, result)
	if err != nil {
		return s.softFailure(message, err), nil
	}

	return &domain.SendMessageResponse{
		Message:  message,
		Analysis: analysis,
	}, nil
}

func (s *SessionService) softFailure(message *domain.Message, err error) *domain.SendMessageResponse {
	s.logger.Warn("analysis failed, message kept",
		zap.String("session_id", message.SessionID),
		zap.Error(err),
	)
	return &domain.SendMessageResponse{
		Message: message,
		Error:   err.Error(),
	}
}

// SummarizeSession condenses the whole conversation into a requirement
// digest and stores it on the session.
func (s *SessionService) SummarizeSession(sessionID string, cfg domain.LLMConfig) (*domain.RequirementSummary, error) {
	messages, err := s.sessionRepo.GetMessages(sessionID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, domain.ErrSessionHasNoMessages
	}

	summary, err := s.analyzer.SummarizeHistory(messages, cfg)
	if err != nil {
		return nil, err
	}

	blob, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}
	serialized := string(blob)
	if _, err := s.sessionRepo.Update(sessionID, &domain.UpdateSessionRequest{
		RequirementSummary: &serialized,
	}); err != nil {
		return nil, err
	}

	return summary, nil
}
