package handler_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foomo/themeserver/content"
	"github.com/foomo/themeserver/pkg/handler"
	"github.com/foomo/themeserver/pkg/repo"
	"github.com/foomo/themeserver/pkg/theme"
	"github.com/foomo/themeserver/responses"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func testStorages(t *testing.T) map[string]repo.Storage {
	t.Helper()
	fsStorage, err := repo.NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)

	bucket, err := blob.OpenBucket(context.Background(), "mem://")
	require.NoError(t, err)

	storages := map[string]repo.Storage{
		"filesystem": fsStorage,
		"blob":       repo.NewBlobStorageFromBucket(bucket, ""),
	}
	for _, storage := range storages {
		t.Cleanup(func() { _ = storage.Close() })
	}
	return storages
}

func newTestHandlerWith(t *testing.T, storage repo.Storage, opts ...theme.Option) http.Handler {
	t.Helper()
	l := zaptest.NewLogger(t)
	service := theme.NewService(l, repo.NewFactory(l, storage), opts...)
	return handler.NewHTTP(l, service, handler.WithBasePath("themes"))
}

func newTestHandler(t *testing.T, opts ...theme.Option) http.Handler {
	t.Helper()
	return newTestHandlerWith(t, testStorages(t)["blob"], opts...)
}

// eachStorage runs fn against a fresh handler on every backend
func eachStorage(t *testing.T, fn func(t *testing.T, h http.Handler)) {
	t.Helper()
	for name, storage := range testStorages(t) {
		t.Run(name, func(t *testing.T) {
			fn(t, newTestHandlerWith(t, storage))
		})
	}
}

func post(t *testing.T, h http.Handler, target string, body string) (*httptest.ResponseRecorder, map[string]jsoniter.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	envelope := map[string]jsoniter.RawMessage{}
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	}
	return rec, envelope
}

func replyError(t *testing.T, envelope map[string]jsoniter.RawMessage) responses.Error {
	t.Helper()
	var e responses.Error
	require.NoError(t, json.Unmarshal(envelope["reply"], &e))
	return e
}

func testArchive(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range map[string]string{
		"mytheme/assets/site.css":     "body{}",
		"mytheme/layout/theme.liquid": "{{ content_for_layout }}",
	} {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.String()
}

func TestHTTP_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/themes/listThemes", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHTTP_UnknownRoute(t *testing.T) {
	rec, envelope := post(t, newTestHandler(t), "/themes/nope", "{}")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, responses.CodeUnknownRoute, replyError(t, envelope).Code)
}

func TestHTTP_InvalidJSON(t *testing.T) {
	rec, envelope := post(t, newTestHandler(t), "/themes/listThemes", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, responses.CodeInvalidJSON, replyError(t, envelope).Code)
}

func TestHTTP_UploadAndList(t *testing.T) {
	eachStorage(t, func(t *testing.T, h http.Handler) {
		rec, envelope := post(t, h, "/themes/uploadTheme?storeId=s1&themeName=t1", testArchive(t))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var imported responses.Import
		require.NoError(t, json.Unmarshal(envelope["reply"], &imported))
		assert.Equal(t, 2, imported.Imported)
		assert.Equal(t, "t1", imported.ThemeName)

		rec, envelope = post(t, h, "/themes/listThemes", `{"storeId":"s1"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var themes []content.Theme
		require.NoError(t, json.Unmarshal(envelope["reply"], &themes))
		require.Len(t, themes, 1)
		assert.Equal(t, "t1", themes[0].Name)

		rec, envelope = post(t, h, "/themes/listAssets", `{"storeId":"s1","themeName":"t1","criteria":{"loadContent":false}}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var assets []*content.ThemeAsset
		require.NoError(t, json.Unmarshal(envelope["reply"], &assets))
		require.Len(t, assets, 2)
		assert.Equal(t, "assets/site.css", assets[0].ID)
		assert.Empty(t, assets[0].Content)
	})
}

func TestHTTP_UploadTheme_MissingStore(t *testing.T) {
	rec, envelope := post(t, newTestHandler(t), "/themes/uploadTheme?themeName=t1", testArchive(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, responses.CodeBadRequest, replyError(t, envelope).Code)
}

func TestHTTP_GetAsset_NotFound(t *testing.T) {
	rec, envelope := post(t, newTestHandler(t), "/themes/getAsset", `{"storeId":"s1","themeId":"t1","path":"assets/missing.css"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, responses.CodeNotFound, replyError(t, envelope).Code)
}

func TestHTTP_SaveGetDelete(t *testing.T) {
	eachStorage(t, func(t *testing.T, h http.Handler) {
		rec, _ := post(t, h, "/themes/saveAsset", `{"storeId":"s1","themeId":"t1","asset":{"id":"assets/site.css","content":"Ym9keXt9"}}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec, envelope := post(t, h, "/themes/getAsset", `{"storeId":"s1","themeId":"t1","path":"assets/site.css"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var asset content.ThemeAsset
		require.NoError(t, json.Unmarshal(envelope["reply"], &asset))
		assert.Equal(t, []byte("body{}"), asset.Content)
		assert.Equal(t, "text/css", asset.ContentType)

		rec, _ = post(t, h, "/themes/deleteAssets", `{"storeId":"s1","themeId":"t1","assetIds":["assets/site.css"]}`)
		require.Equal(t, http.StatusOK, rec.Code)

		rec, _ = post(t, h, "/themes/getAsset", `{"storeId":"s1","themeId":"t1","path":"assets/site.css"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHTTP_CreateDefaultTheme_NotConfigured(t *testing.T) {
	rec, envelope := post(t, newTestHandler(t), "/themes/createDefaultTheme", `{"storeId":"s1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, responses.CodeBadRequest, replyError(t, envelope).Code)
}

func TestHTTP_AssetPathsStayInTheme(t *testing.T) {
	eachStorage(t, func(t *testing.T, h http.Handler) {
		rec, _ := post(t, h, "/themes/saveAsset", `{"storeId":"s2","themeId":"victim","asset":{"id":"layout/theme.liquid","content":"b3JpZ2luYWw="}}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		for route, body := range map[string]string{
			"saveAsset":    `{"storeId":"s1","themeId":"t1","asset":{"id":"../../s2/victim/layout/theme.liquid","content":"ZXZpbA=="}}`,
			"getAsset":     `{"storeId":"s1","themeId":"t1","path":"../../s2/victim/layout/theme.liquid"}`,
			"deleteAssets": `{"storeId":"s1","themeId":"t1","assetIds":["../../s2/victim/layout/theme.liquid"]}`,
			"listThemes":   `{"storeId":"../s2"}`,
			"deleteTheme":  `{"storeId":"s1","themeId":"../s2"}`,
		} {
			rec, envelope := post(t, h, "/themes/"+route, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, route)
			assert.Equal(t, responses.CodeBadRequest, replyError(t, envelope).Code, route)
		}

		rec, envelope := post(t, h, "/themes/getAsset", `{"storeId":"s2","themeId":"victim","path":"layout/theme.liquid"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var asset content.ThemeAsset
		require.NoError(t, json.Unmarshal(envelope["reply"], &asset))
		assert.Equal(t, []byte("original"), asset.Content)
	})
}

func TestHTTP_GetAsset_EmptyPath(t *testing.T) {
	rec, envelope := post(t, newTestHandler(t), "/themes/getAsset", `{"storeId":"s1","themeId":"t1","path":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, responses.CodeBadRequest, replyError(t, envelope).Code)
}

func TestHTTP_CreateDefaultTheme_SeedRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srv/seeds/extra/custom/layout/theme.liquid", []byte("custom"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/srv/secret/etc/shadow", []byte("root:x"), 0o600))

	h := newTestHandler(t, theme.WithFs(fs), theme.WithSeedRoot("/srv/seeds"))

	for _, path := range []string{"../secret", "extra/../../secret", "/../secret"} {
		rec, envelope := post(t, h, "/themes/createDefaultTheme", `{"storeId":"s1","localThemePath":"`+path+`"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Equal(t, responses.CodeBadRequest, replyError(t, envelope).Code, path)
	}

	rec, envelope := post(t, h, "/themes/listThemes", `{"storeId":"s1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var themes []content.Theme
	require.NoError(t, json.Unmarshal(envelope["reply"], &themes))
	assert.Empty(t, themes)

	rec, envelope = post(t, h, "/themes/createDefaultTheme", `{"storeId":"s1","localThemePath":"extra"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var seed responses.Seed
	require.NoError(t, json.Unmarshal(envelope["reply"], &seed))
	assert.Equal(t, 1, seed.Items)
}

func TestHTTP_CreateDefaultTheme_OverrideWithoutSeedRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srv/secret/etc/shadow", []byte("root:x"), 0o600))

	rec, envelope := post(t, newTestHandler(t, theme.WithFs(fs)), "/themes/createDefaultTheme", `{"storeId":"s1","localThemePath":"/srv/secret"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, responses.CodeBadRequest, replyError(t, envelope).Code)
}

// unavailableStorage fails every call like an unreachable backend
type unavailableStorage struct{}

func (unavailableStorage) Write(context.Context, string, []byte) error { return errUnavailable }

func (unavailableStorage) Read(context.Context, string) ([]byte, error) { return nil, errUnavailable }

func (unavailableStorage) List(context.Context, string) ([]string, error) {
	return nil, errUnavailable
}

func (unavailableStorage) Delete(context.Context, string) error { return errUnavailable }

func (unavailableStorage) Ping(context.Context) error { return errUnavailable }

func (unavailableStorage) Close() error { return nil }

var errUnavailable = errors.New("connection refused")

func TestHTTP_InternalError(t *testing.T) {
	rec, envelope := post(t, newTestHandlerWith(t, unavailableStorage{}), "/themes/listThemes", `{"storeId":"s1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	e := replyError(t, envelope)
	assert.Equal(t, responses.CodeInternal, e.Code)
	assert.Contains(t, e.Message, "internal error")
	assert.Contains(t, e.Message, "connection refused")
}
