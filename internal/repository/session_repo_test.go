package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liliang-cn/ghostdesk/internal/domain"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionCreateAndGet(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))

	session := &domain.Session{}
	require.NoError(t, repo.Create(session, "你好，能写演讲稿吗"))
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, domain.SessionStatusActive, session.Status)
	assert.Equal(t, domain.DealStatusPending, session.DealStatus)

	found, err := repo.Get(session.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, session.ID, found.ID)
	assert.Nil(t, found.DealPrice)
	assert.Nil(t, found.ArticleType)

	messages, err := repo.GetMessages(session.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, domain.RoleBuyer, messages[0].Role)
	assert.Equal(t, "你好，能写演讲稿吗", messages[0].Content)
}

func TestSessionGetUnknown(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))

	found, err := repo.Get("no-such-id")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestSessionUpdate(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))

	session := &domain.Session{}
	require.NoError(t, repo.Create(session, ""))

	status := domain.SessionStatusClosed
	dealStatus := domain.DealStatusSuccess
	price := 260
	updated, err := repo.Update(session.ID, &domain.UpdateSessionRequest{
		Status:     &status,
		DealStatus: &dealStatus,
		DealPrice:  &price,
	})
	require.NoError(t, err)
	assert.True(t, updated)

	found, err := repo.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusClosed, found.Status)
	assert.Equal(t, domain.DealStatusSuccess, found.DealStatus)
	require.NotNil(t, found.DealPrice)
	assert.Equal(t, 260, *found.DealPrice)

	updated, err = repo.Update("no-such-id", &domain.UpdateSessionRequest{Status: &status})
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestAddMessageUnknownSession(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))

	err := repo.AddMessage(&domain.Message{
		SessionID: "no-such-id",
		Role:      domain.RoleBuyer,
		Content:   "在吗",
	})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestAnalysisRoundTrip(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))

	session := &domain.Session{}
	require.NoError(t, repo.Create(session, "写一篇5000字党建论文，下周三要"))
	messages, err := repo.GetMessages(session.ID)
	require.NoError(t, err)

	articleType := "论文"
	wordCount := 5000
	deadline := "下周三"
	basis := "论文 5000字 复杂价"
	min, max := 400, 600
	result := &domain.AnalysisResult{
		SuggestedReplies: []string{"好的，5000字下周三可以交", "请问有参考资料吗"},
		ExtractedInfo: &domain.ExtractedInfo{
			ArticleType:         &articleType,
			WordCount:           &wordCount,
			Deadline:            &deadline,
			SpecialRequirements: []string{"党建主题"},
		},
		MissingInfo: []string{"主题细节"},
		CanQuote:    true,
		PriceMin:    &min,
		PriceMax:    &max,
		PriceBasis:  &basis,
		QuickTags:   []string{"加急"},
	}

	saved, err := repo.SaveAnalysis(session.ID, messages[0].ID, result)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	latest, err := repo.GetLatestAnalysis(session.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, messages[0].ID, latest.MessageID)
	assert.Equal(t, result.SuggestedReplies, latest.SuggestedReplies)
	assert.Equal(t, result.MissingInfo, latest.MissingInfo)
	assert.Equal(t, result.QuickTags, latest.QuickTags)
	assert.True(t, latest.CanQuote)
	require.NotNil(t, latest.PriceMin)
	assert.Equal(t, 400, *latest.PriceMin)
	require.NotNil(t, latest.PriceBasis)
	assert.Equal(t, basis, *latest.PriceBasis)
	require.NotNil(t, latest.ExtractedInfo)
	require.NotNil(t, latest.ExtractedInfo.WordCount)
	assert.Equal(t, 5000, *latest.ExtractedInfo.WordCount)
	assert.Equal(t, []string{"党建主题"}, latest.ExtractedInfo.SpecialRequirements)
}

func TestArticleTypeBackfillOnce(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))

	session := &domain.Session{}
	require.NoError(t, repo.Create(session, "写一篇论文"))
	messages, err := repo.GetMessages(session.ID)
	require.NoError(t, err)

	first := "论文"
	_, err = repo.SaveAnalysis(session.ID, messages[0].ID, &domain.AnalysisResult{
		ExtractedInfo: &domain.ExtractedInfo{ArticleType: &first},
	})
	require.NoError(t, err)

	found, err := repo.Get(session.ID)
	require.NoError(t, err)
	require.NotNil(t, found.ArticleType)
	assert.Equal(t, "论文", *found.ArticleType)

	// A later extraction must not overwrite the recorded type
	second := "演讲稿"
	_, err = repo.SaveAnalysis(session.ID, messages[0].ID, &domain.AnalysisResult{
		ExtractedInfo: &domain.ExtractedInfo{ArticleType: &second},
	})
	require.NoError(t, err)

	found, err = repo.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, "论文", *found.ArticleType)
}

func TestDeleteCascades(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))

	session := &domain.Session{}
	require.NoError(t, repo.Create(session, "在吗"))
	messages, err := repo.GetMessages(session.ID)
	require.NoError(t, err)
	_, err = repo.SaveAnalysis(session.ID, messages[0].ID, &domain.AnalysisResult{})
	require.NoError(t, err)

	deleted, err := repo.Delete(session.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	messages, err = repo.GetMessages(session.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)

	latest, err := repo.GetLatestAnalysis(session.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	deleted, err = repo.Delete(session.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSessionList(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))

	for i := 0; i < 3; i++ {
		session := &domain.Session{}
		require.NoError(t, repo.Create(session, "消息内容"))
	}
	closedSession := &domain.Session{}
	require.NoError(t, repo.Create(closedSession, "另一个买家"))
	status := domain.SessionStatusClosed
	_, err := repo.Update(closedSession.ID, &domain.UpdateSessionRequest{Status: &status})
	require.NoError(t, err)

	list, err := repo.List(ListOptions{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, list.Total)
	assert.Equal(t, 2, list.TotalPages)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 1, list.Items[0].MessageCount)
	assert.NotEmpty(t, list.Items[0].PreviewMessage)

	list, err = repo.List(ListOptions{Status: domain.SessionStatusClosed})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, closedSession.ID, list.Items[0].ID)

	list, err = repo.List(ListOptions{Search: "另一个"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, closedSession.ID, list.Items[0].ID)
}
