package repo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/foomo/themeserver/content"
	"github.com/foomo/themeserver/requests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRepository(t *testing.T) Repository {
	t.Helper()
	factory := NewFactory(zaptest.NewLogger(t), newTestBlobStorage(t, ""))
	r, err := factory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func saveItem(t *testing.T, r Repository, path string, modified time.Time) {
	t.Helper()
	item := content.NewItem(path, path, "", []byte(path))
	item.ContentType = "text/plain"
	item.CreatedDate = modified
	item.ModifiedDate = modified
	require.NoError(t, r.SaveContentItem(context.Background(), path, item))
}

func TestStorageRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)
	modified := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	saveItem(t, r, "s1/t1/assets/site.css", modified)

	item, err := r.GetContentItem(ctx, "s1/t1/assets/site.css")
	require.NoError(t, err)
	assert.Equal(t, "s1/t1/assets/site.css", item.Path)
	assert.Equal(t, "text/plain", item.ContentType)
	assert.Equal(t, []byte("s1/t1/assets/site.css"), item.ByteContent)
	assert.Equal(t, modified, item.ModifiedDate)
}

func TestStorageRepository_GetContentItem_NotFound(t *testing.T) {
	r := newTestRepository(t)
	_, err := r.GetContentItem(context.Background(), "s1/t1/missing.css")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestStorageRepository_GetThemes(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)
	now := time.Now()
	saveItem(t, r, "s1/t2/layout/theme.liquid", now)
	saveItem(t, r, "s1/t1/assets/a.css", now)
	saveItem(t, r, "s1/t1/assets/b.css", now)
	saveItem(t, r, "s1/readme.txt", now)
	saveItem(t, r, "s10/other/a.css", now)

	themes, err := r.GetThemes(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []content.Theme{
		{StoreID: "s1", Name: "t1", Path: "s1/t1"},
		{StoreID: "s1", Name: "t2", Path: "s1/t2"},
	}, themes)

	themes, err = r.GetThemes(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, themes)
}

func TestStorageRepository_GetContentItems(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := old.Add(24 * time.Hour)
	saveItem(t, r, "s1/t1/assets/old.css", old)
	saveItem(t, r, "s1/t1/assets/recent.css", recent)
	saveItem(t, r, "s1/t10/assets/other.css", recent)

	items, err := r.GetContentItems(ctx, "s1/t1", nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.NotNil(t, items[0].ByteContent)

	items, err = r.GetContentItems(ctx, "s1/t1/", &requests.AssetCriteria{ModifiedSince: &recent})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "s1/t1/assets/recent.css", items[0].Path)
	assert.Nil(t, items[0].ByteContent)
}

func TestStorageRepository_DeleteTheme(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)
	now := time.Now()
	saveItem(t, r, "s1/t1/assets/a.css", now)
	saveItem(t, r, "s1/t1/layout/theme.liquid", now)
	saveItem(t, r, "s1/t10/assets/a.css", now)

	require.NoError(t, r.DeleteTheme(ctx, "s1/t1"))

	items, err := r.GetContentItems(ctx, "s1", nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "s1/t10/assets/a.css", items[0].Path)
}

func TestStorageRepository_DeleteContentItem(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)
	saveItem(t, r, "s1/t1/assets/a.css", time.Now())

	require.NoError(t, r.DeleteContentItem(ctx, "s1/t1/assets/a.css"))
	require.NoError(t, r.DeleteContentItem(ctx, "s1/t1/assets/a.css"), "deleting twice is fine")

	_, err := r.GetContentItem(ctx, "s1/t1/assets/a.css")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestStorageRepository_Closed(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(zaptest.NewLogger(t), newTestBlobStorage(t, ""))
	r, err := factory(ctx)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.ErrorIs(t, r.Close(), ErrClosed)
	_, err = r.GetThemes(ctx, "s1")
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, r.SaveContentItem(ctx, "s1/t1/a", content.NewItem("a", "a", "", nil)), ErrClosed)

	// other handles of the same factory are unaffected
	other, err := factory(ctx)
	require.NoError(t, err)
	defer other.Close()
	_, err = other.GetThemes(ctx, "s1")
	require.NoError(t, err)
}

func TestNewFactory_NoStorage(t *testing.T) {
	_, err := NewFactory(zaptest.NewLogger(t), nil)(context.Background())
	require.Error(t, err)
}
