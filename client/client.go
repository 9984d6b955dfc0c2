package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/foomo/themeserver/content"
	"github.com/foomo/themeserver/pkg/handler"
	"github.com/foomo/themeserver/pkg/utils"
	"github.com/foomo/themeserver/requests"
	"github.com/foomo/themeserver/responses"
	keelhttp "github.com/foomo/keel/net/http"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	// Client a theme server client
	Client struct {
		endpoint   string
		httpClient *http.Client
	}
	Option func(*Client)
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithHTTPClient(v *http.Client) Option {
	return func(o *Client) {
		o.httpClient = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// New returns a client for the theme server mounted at endpoint, e.g. http://localhost:8080/themeserver
func New(endpoint string, opts ...Option) (*Client, error) {
	if !utils.IsValidURL(endpoint) {
		return nil, errors.Errorf("endpoint %q needs a http(s) scheme and a host", endpoint)
	}

	inst := &Client{
		endpoint: endpoint,
		httpClient: keelhttp.NewHTTPClient(
			keelhttp.HTTPClientWithTimeout(time.Minute),
		),
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (c *Client) ListThemes(ctx context.Context, storeID string) (themes []content.Theme, err error) {
	err = c.call(ctx, handler.RouteListThemes, &requests.Store{StoreID: storeID}, &themes)
	return
}

func (c *Client) DeleteTheme(ctx context.Context, storeID, themeID string) error {
	return c.call(ctx, handler.RouteDeleteTheme, &requests.Theme{StoreID: storeID, ThemeID: themeID}, &responses.Empty{})
}

func (c *Client) ListAssets(ctx context.Context, storeID, themeName string, criteria *requests.AssetCriteria) (assets []*content.ThemeAsset, err error) {
	err = c.call(ctx, handler.RouteListAssets, &requests.ListAssets{StoreID: storeID, ThemeName: themeName, Criteria: criteria}, &assets)
	return
}

func (c *Client) GetAsset(ctx context.Context, storeID, themeID, path string) (asset *content.ThemeAsset, err error) {
	asset = &content.ThemeAsset{}
	err = c.call(ctx, handler.RouteGetAsset, &requests.Asset{StoreID: storeID, ThemeID: themeID, Path: path}, asset)
	return
}

// SaveAsset returns the asset as stored, including its dates and content type
func (c *Client) SaveAsset(ctx context.Context, storeID, themeID string, asset *content.ThemeAsset) (saved *content.ThemeAsset, err error) {
	saved = &content.ThemeAsset{}
	err = c.call(ctx, handler.RouteSaveAsset, &requests.SaveAsset{StoreID: storeID, ThemeID: themeID, Asset: asset}, saved)
	return
}

func (c *Client) DeleteAssets(ctx context.Context, storeID, themeID string, assetIDs ...string) error {
	return c.call(ctx, handler.RouteDeleteAssets, &requests.DeleteAssets{StoreID: storeID, ThemeID: themeID, AssetIDs: assetIDs}, &responses.Empty{})
}

func (c *Client) CreateDefaultTheme(ctx context.Context, storeID, localThemePath string) (seed *responses.Seed, err error) {
	seed = &responses.Seed{}
	err = c.call(ctx, handler.RouteCreateDefaultTheme, &requests.CreateDefaultTheme{StoreID: storeID, LocalThemePath: localThemePath}, seed)
	return
}

// UploadTheme sends a zip archive to be imported as themeName
func (c *Client) UploadTheme(ctx context.Context, storeID, themeName string, archive io.Reader) (result *responses.Import, err error) {
	query := url.Values{}
	query.Set(handler.QueryStoreID, storeID)
	query.Set(handler.QueryThemeName, themeName)
	result = &responses.Import{}
	err = c.do(ctx, c.endpoint+"/"+string(handler.RouteUploadTheme)+"?"+query.Encode(), "application/zip", archive, result)
	return
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (c *Client) call(ctx context.Context, route handler.Route, request, response any) error {
	requestBytes, err := json.Marshal(request)
	if err != nil {
		return errors.Wrap(err, "failed to encode request")
	}
	return c.do(ctx, c.endpoint+"/"+string(route), "application/json", bytes.NewReader(requestBytes), response)
}

func (c *Client) do(ctx context.Context, target, contentType string, body io.Reader, response any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	httpResponse, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer httpResponse.Body.Close()

	responseBytes, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	if httpResponse.StatusCode != http.StatusOK {
		envelope := struct {
			Reply *responses.Error `json:"reply"`
		}{}
		if err := json.Unmarshal(responseBytes, &envelope); err != nil || envelope.Reply == nil {
			return errors.Errorf("non 200 reply: %d", httpResponse.StatusCode)
		}
		return envelope.Reply
	}

	envelope := struct {
		Reply jsoniter.RawMessage `json:"reply"`
	}{}
	if err := json.Unmarshal(responseBytes, &envelope); err != nil {
		return errors.Wrap(err, "failed to decode reply")
	}
	return json.Unmarshal(envelope.Reply, response)
}
