package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liliang-cn/ghostdesk/internal/domain"
)

func sampleOneShot() *domain.OneShotAnalysisResponse {
	topic := "年终总结"
	wordCount := 2000
	return &domain.OneShotAnalysisResponse{
		DetectedType:   &domain.ServiceOffering{ID: 3, Name: "工作总结", Unit: domain.UnitThousandChars},
		Confidence:     0.9,
		ExtractedInfo:  &domain.ExtractedInfo{Topic: &topic, WordCount: &wordCount},
		MissingInfo:    []string{"截止时间"},
		SuggestedReply: "好的，2000字总结大概120元，请问什么时候要呢？",
		PriceEstimate:  domain.PriceEstimate{Min: 100, Max: 140, Basis: "工作总结 2000字", CanQuote: true},
	}
}

func TestHistoryCreateAndGet(t *testing.T) {
	repo := NewHistoryRepository(setupTestDB(t))

	record, err := repo.Create("帮我写个年终总结，2000字左右", sampleOneShot())
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.NotEmpty(t, record.ID)
	require.NotNil(t, record.DetectedTypeName)
	assert.Equal(t, "工作总结", *record.DetectedTypeName)
	assert.Equal(t, 0.9, record.Confidence)
	assert.Equal(t, 100, record.PriceMin)
	assert.Equal(t, 140, record.PriceMax)
	assert.Equal(t, domain.DealStatusPending, record.DealStatus)
	require.NotNil(t, record.ExtractedInfo)
	require.NotNil(t, record.ExtractedInfo.WordCount)
	assert.Equal(t, 2000, *record.ExtractedInfo.WordCount)
	assert.Equal(t, []string{"截止时间"}, record.MissingInfo)

	missing, err := repo.Get("no-such-id")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestHistoryAnnotateAndFilter(t *testing.T) {
	repo := NewHistoryRepository(setupTestDB(t))

	first, err := repo.Create("帮我写个年终总结", sampleOneShot())
	require.NoError(t, err)
	second, err := repo.Create("需要一篇5000字论文", sampleOneShot())
	require.NoError(t, err)

	articleType := "论文"
	dealStatus := domain.DealStatusSuccess
	updated, err := repo.Update(second.ID, &domain.UpdateHistoryRequest{
		ArticleType: &articleType,
		DealStatus:  &dealStatus,
	})
	require.NoError(t, err)
	assert.True(t, updated)

	list, err := repo.List(1, 20, domain.HistoryFilter{Search: "论文"})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, second.ID, list.Items[0].ID)

	list, err = repo.List(1, 20, domain.HistoryFilter{DealStatus: domain.DealStatusSuccess})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, second.ID, list.Items[0].ID)

	list, err = repo.List(1, 20, domain.HistoryFilter{ArticleType: "论文"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)

	types, err := repo.ArticleTypes()
	require.NoError(t, err)
	assert.Equal(t, []string{"论文"}, types)

	// An empty patch touches nothing
	updated, err = repo.Update(first.ID, &domain.UpdateHistoryRequest{})
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestHistoryDelete(t *testing.T) {
	repo := NewHistoryRepository(setupTestDB(t))

	record, err := repo.Create("在吗", sampleOneShot())
	require.NoError(t, err)

	deleted, err := repo.Delete(record.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(record.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
