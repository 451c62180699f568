package service

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/liliang-cn/ghostdesk/internal/domain"
	"github.com/liliang-cn/ghostdesk/internal/repository"
)

func newSessionService(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*SessionService, *repository.SessionRepository, domain.LLMConfig) {
	t.Helper()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewSessionRepository(db)
	analyzer, cfg := newTestAnalyzer(t, respond)
	return NewSessionService(repo, analyzer, zap.NewNop()), repo, cfg
}

func TestSendMessageAndAnalyze(t *testing.T) {
	svc, repo, cfg := newSessionService(t, chatReply(`{
		"suggestedReplies": ["好的，下周三可以交"],
		"extractedInfo": {"articleType": "论文", "wordCount": 5000},
		"missingInfo": [],
		"canQuote": true,
		"priceEstimate": {"min": 400, "max": 600, "basis": "论文 5000字"},
		"quickTags": []
	}`))

	session, err := svc.CreateSession(&domain.CreateSessionRequest{})
	require.NoError(t, err)

	resp, err := svc.SendMessageAndAnalyze(session.ID, "写一篇5000字论文", cfg)
	require.NoError(t, err)
	assert.Empty(t, resp.Error)
	require.NotNil(t, resp.Message)
	assert.Equal(t, domain.RoleBuyer, resp.Message.Role)
	require.NotNil(t, resp.Analysis)
	assert.Equal(t, resp.Message.ID, resp.Analysis.MessageID)
	require.NotNil(t, resp.Analysis.PriceMin)
	assert.Equal(t, 400, *resp.Analysis.PriceMin)

	// The extracted article type back-fills the session
	found, err := repo.Get(session.ID)
	require.NoError(t, err)
	require.NotNil(t, found.ArticleType)
	assert.Equal(t, "论文", *found.ArticleType)

	// The analysis is retrievable as the session's latest state
	latest, err := repo.GetLatestAnalysis(session.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, resp.Analysis.ID, latest.ID)
}

func TestSendMessageAndAnalyzeAccumulates(t *testing.T) {
	responses := []string{
		`{"extractedInfo": {"articleType": "论文", "wordCount": 5000}, "canQuote": false}`,
		`{"extractedInfo": {"deadline": "下周三"}, "canQuote": false}`,
	}
	call := 0
	svc, _, cfg := newSessionService(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(responses[call])(w, r)
		call++
	})

	session, err := svc.CreateSession(&domain.CreateSessionRequest{})
	require.NoError(t, err)

	_, err = svc.SendMessageAndAnalyze(session.ID, "写一篇5000字论文", cfg)
	require.NoError(t, err)

	resp, err := svc.SendMessageAndAnalyze(session.ID, "下周三要", cfg)
	require.NoError(t, err)

	// Turn two only extracted the deadline; the rest survives from turn one
	info := resp.Analysis.ExtractedInfo
	require.NotNil(t, info)
	require.NotNil(t, info.ArticleType)
	assert.Equal(t, "论文", *info.ArticleType)
	require.NotNil(t, info.WordCount)
	assert.Equal(t, 5000, *info.WordCount)
	require.NotNil(t, info.Deadline)
	assert.Equal(t, "下周三", *info.Deadline)
}

func TestSendMessageAndAnalyzeSoftFailure(t *testing.T) {
	svc, repo, cfg := newSessionService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	session, err := svc.CreateSession(&domain.CreateSessionRequest{})
	require.NoError(t, err)

	resp, err := svc.SendMessageAndAnalyze(session.ID, "在吗", cfg)
	require.NoError(t, err, "an analysis failure is not a request failure")
	assert.Nil(t, resp.Analysis)
	assert.NotEmpty(t, resp.Error)
	require.NotNil(t, resp.Message)

	// The buyer message survived the failed analysis
	messages, err := repo.GetMessages(session.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "在吗", messages[0].Content)
}

func TestSendMessageUnknownSession(t *testing.T) {
	svc, _, cfg := newSessionService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no llm call expected for an unknown session")
	})

	_, err := svc.SendMessageAndAnalyze("no-such-id", "在吗", cfg)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSummarizeSession(t *testing.T) {
	svc, repo, cfg := newSessionService(t, chatReply(`{
		"articleType": "论文",
		"wordCount": 5000,
		"deadline": "下周三",
		"topic": "乡村振兴",
		"requirements": [],
		"notes": ""
	}`))

	session, err := svc.CreateSession(&domain.CreateSessionRequest{FirstMessage: "要一篇5000字乡村振兴论文"})
	require.NoError(t, err)

	summary, err := svc.SummarizeSession(session.ID, cfg)
	require.NoError(t, err)
	assert.Equal(t, "论文", summary.ArticleType)
	assert.Equal(t, "乡村振兴", summary.Topic)

	// The digest is stored on the session
	found, err := repo.Get(session.ID)
	require.NoError(t, err)
	require.NotNil(t, found.RequirementSummary)
	assert.Contains(t, *found.RequirementSummary, "乡村振兴")
}

func TestSummarizeEmptySession(t *testing.T) {
	svc, _, cfg := newSessionService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no llm call expected for an empty session")
	})

	session, err := svc.CreateSession(&domain.CreateSessionRequest{})
	require.NoError(t, err)

	_, err = svc.SummarizeSession(session.ID, cfg)
	assert.ErrorIs(t, err, domain.ErrSessionHasNoMessages)
}

func TestGetSessionDetail(t *testing.T) {
	svc, _, cfg := newSessionService(t, chatReply(`{
		"extractedInfo": {"articleType": "论文"},
		"canQuote": false
	}`))

	session, err := svc.CreateSession(&domain.CreateSessionRequest{FirstMessage: "能写论文吗"})
	require.NoError(t, err)

	_, err = svc.SendMessageAndAnalyze(session.ID, "5000字的", cfg)
	require.NoError(t, err)

	detail, err := svc.GetSessionDetail(session.ID)
	require.NoError(t, err)
	require.NotNil(t, detail)
	require.Len(t, detail.Messages, 2)
	assert.Nil(t, detail.Messages[0].Analysis, "the seeded message was never analyzed")
	require.NotNil(t, detail.Messages[1].Analysis)
	require.NotNil(t, detail.LatestAnalysis)
	assert.Equal(t, detail.Messages[1].Analysis.ID, detail.LatestAnalysis.ID)

	missing, err := svc.GetSessionDetail("no-such-id")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
