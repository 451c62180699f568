package service

import (
	"github.com/liliang-cn/ghostdesk/internal/domain"
	"github.com/liliang-cn/ghostdesk/internal/prompt"
	"github.com/liliang-cn/ghostdesk/internal/repository"
)

// TemplateService manages reply templates, the named text snippets and the
// editable prompt assets.
type TemplateService struct {
	templateRepo *repository.TemplateRepository
	promptStore  *prompt.Store
}

// NewTemplateService creates a new template service
func NewTemplateService(templateRepo *repository.TemplateRepository, promptStore *prompt.Store) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		promptStore:  promptStore,
	}
}

// ListTemplates lists reply templates ordered by sort order
func (s *TemplateService) ListTemplates() (*domain.TemplateListResponse, error) {
	items, err := s.templateRepo.List()
	if err != nil {
		return nil, err
	}
	return &domain.TemplateListResponse{Items: items}, nil
}

// CreateTemplate appends a reply template after the existing ones
func (s *TemplateService) CreateTemplate(req *domain.CreateTemplateRequest) (*domain.ReplyTemplate, error) {
	tmpl := &domain.ReplyTemplate{
		Title:   req.Title,
		Content: req.Content,
	}
	if err := s.templateRepo.Create(tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// UpdateTemplate replaces a template's title and content; false means not found
func (s *TemplateService) UpdateTemplate(id string, req *domain.UpdateTemplateRequest) (bool, error) {
	return s.templateRepo.Update(id, req.Title, req.Content)
}

// DeleteTemplate removes a reply template; false means not found
func (s *TemplateService) DeleteTemplate(id string) (bool, error) {
	return s.templateRepo.Delete(id)
}

// GetTextTemplate returns the default snippet for a kind, or nil when the
// seller never saved one.
func (s *TemplateService) GetTextTemplate(kind string) (*domain.TextTemplate, error) {
	return s.templateRepo.GetText(kind)
}

// SetTextTemplate replaces the default snippet for a kind
func (s *TemplateService) SetTextTemplate(kind, content string) (*domain.TextTemplate, error) {
	if err := s.templateRepo.UpsertText(kind, content); err != nil {
		return nil, err
	}
	return s.templateRepo.GetText(kind)
}

// GetPrompt reads an editable prompt asset by name
func (s *TemplateService) GetPrompt(name string) (string, error) {
	return s.promptStore.Load(name)
}

// SetPrompt overwrites an editable prompt asset
func (s *TemplateService) SetPrompt(name, content string) error {
	return s.promptStore.Save(name, content)
}
