package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liliang-cn/ghostdesk/internal/domain"
)

func TestTemplatesSeededOnFreshDB(t *testing.T) {
	repo := NewTemplateRepository(setupTestDB(t))

	templates, err := repo.List()
	require.NoError(t, err)
	require.Len(t, templates, 8)

	// Seeded in a stable order so the UI shows them consistently
	for i, tmpl := range templates {
		assert.Equal(t, i+1, tmpl.SortOrder)
		assert.NotEmpty(t, tmpl.Title)
		assert.NotEmpty(t, tmpl.Content)
	}
}

func TestTemplateCRUD(t *testing.T) {
	repo := NewTemplateRepository(setupTestDB(t))

	tmpl := &domain.ReplyTemplate{Title: "加急说明", Content: "加急稿件需要额外30%费用哦~"}
	require.NoError(t, repo.Create(tmpl))
	assert.NotEmpty(t, tmpl.ID)
	assert.Equal(t, 9, tmpl.SortOrder, "new templates append after the seeds")

	updated, err := repo.Update(tmpl.ID, "加急说明", "加急稿件加收30%")
	require.NoError(t, err)
	assert.True(t, updated)

	found, err := repo.Get(tmpl.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "加急稿件加收30%", found.Content)

	deleted, err := repo.Delete(tmpl.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	found, err = repo.Get(tmpl.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	updated, err = repo.Update(tmpl.ID, "x", "y")
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestTextTemplateUpsert(t *testing.T) {
	repo := NewTemplateRepository(setupTestDB(t))

	tmpl, err := repo.GetText(domain.TextTemplateRetention)
	require.NoError(t, err)
	assert.Nil(t, tmpl, "no default until the seller saves one")

	require.NoError(t, repo.UpsertText(domain.TextTemplateRetention, "亲，别急着走呀，价格可以商量~"))
	tmpl, err = repo.GetText(domain.TextTemplateRetention)
	require.NoError(t, err)
	require.NotNil(t, tmpl)
	assert.Equal(t, "亲，别急着走呀，价格可以商量~", tmpl.Content)
	assert.True(t, tmpl.IsDefault)

	// A second save replaces, not duplicates
	require.NoError(t, repo.UpsertText(domain.TextTemplateRetention, "可以给您打个折~"))
	tmpl, err = repo.GetText(domain.TextTemplateRetention)
	require.NoError(t, err)
	require.NotNil(t, tmpl)
	assert.Equal(t, "可以给您打个折~", tmpl.Content)

	// Kinds are independent
	other, err := repo.GetText(domain.TextTemplateReview)
	require.NoError(t, err)
	assert.Nil(t, other)
}
