package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liliang-cn/ghostdesk/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(TemplateSystem, "你是代写助手。"))
	require.NoError(t, store.Save(TemplateTurn,
		"服务共{service_count}项：\n{price_list}\n\n历史：\n{history}\n\n最新消息：{latest_message}\n\n已知信息：\n{accumulated_info}"))
	require.NoError(t, store.Save(TemplateAnalyze,
		"服务共{service_count}项：\n{price_list}\n\n买家消息：{message}"))
	return store
}

func testOfferings() []*domain.ServiceOffering {
	low := 80
	high := 120
	return []*domain.ServiceOffering{
		{ID: 1, Name: "演讲稿", PriceSimple: &low, PriceComplex: &high, Unit: domain.UnitThousandChars},
		{ID: 2, Name: "解说词", PriceComplex: &high, Unit: domain.UnitMinute, Note: "按分钟收费"},
	}
}

func TestBuildTurnPrompt(t *testing.T) {
	b := NewBuilder(testStore(t))

	history := []*domain.Message{
		{Role: domain.RoleBuyer, Content: "你好，能写演讲稿吗"},
		{Role: domain.RoleSeller, Content: "可以的，请问多少字"},
	}
	wordCount := 3000
	accumulated := &domain.ExtractedInfo{WordCount: &wordCount}

	prompt, err := b.BuildTurnPrompt(testOfferings(), history, "3000字，下周三要", accumulated)
	require.NoError(t, err)

	assert.Contains(t, prompt, "服务共2项")
	assert.Contains(t, prompt, "演讲稿: 简单80元/复杂120元 /千字")
	assert.Contains(t, prompt, "解说词: 简单-元/复杂120元 /分钟 (按分钟收费)")
	assert.Contains(t, prompt, "买家: 你好，能写演讲稿吗")
	assert.Contains(t, prompt, "卖家: 可以的，请问多少字")
	assert.Contains(t, prompt, "最新消息：3000字，下周三要")
	assert.Contains(t, prompt, "- 字数: 3000")
	assert.NotContains(t, prompt, "{")
}

func TestBuildTurnPromptEmptyState(t *testing.T) {
	b := NewBuilder(testStore(t))

	prompt, err := b.BuildTurnPrompt(testOfferings(), nil, "在吗", nil)
	require.NoError(t, err)

	assert.Contains(t, prompt, "历史：\n（无）")
	assert.Contains(t, prompt, "已知信息：\n（暂无）")
}

func TestBuildOneShotPrompt(t *testing.T) {
	b := NewBuilder(testStore(t))

	prompt, err := b.BuildOneShotPrompt(testOfferings(), "帮我写个年终总结")
	require.NoError(t, err)

	assert.Contains(t, prompt, "服务共2项")
	assert.Contains(t, prompt, "买家消息：帮我写个年终总结")
}

func TestBuildSummaryPrompt(t *testing.T) {
	b := NewBuilder(testStore(t))

	prompt := b.BuildSummaryPrompt([]*domain.Message{
		{Role: domain.RoleBuyer, Content: "要一篇5000字论文"},
	})

	assert.Contains(t, prompt, "买家: 要一篇5000字论文")
	assert.Contains(t, prompt, "articleType")
	assert.Contains(t, prompt, "wordCount")
}

func TestMissingTemplate(t *testing.T) {
	b := NewBuilder(NewStore(t.TempDir()))

	_, err := b.BuildTurnPrompt(nil, nil, "在吗", nil)
	assert.ErrorIs(t, err, domain.ErrTemplateMissing)

	_, err = b.SystemPrompt()
	assert.ErrorIs(t, err, domain.ErrTemplateMissing)
}
