package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/foomo/themeserver/pkg/metrics"
	"github.com/foomo/themeserver/pkg/theme"
	"github.com/foomo/themeserver/requests"
	"github.com/foomo/themeserver/responses"
	httputils "github.com/foomo/keel/utils/net/http"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultMaxUploadSize limits the size of uploaded theme archives
const DefaultMaxUploadSize int64 = 64 << 20

type (
	HTTP struct {
		l             *zap.Logger
		path          string
		maxUploadSize int64
		service       *theme.Service
	}
	HTTPOption func(*HTTP)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewHTTP returns a shiny new web server
func NewHTTP(l *zap.Logger, service *theme.Service, opts ...HTTPOption) http.Handler {
	inst := &HTTP{
		l:             l.Named("http"),
		path:          "/themeserver",
		maxUploadSize: DefaultMaxUploadSize,
		service:       service,
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithBasePath(v string) HTTPOption {
	return func(o *HTTP) {
		o.path = "/" + strings.Trim(v, "/")
	}
}

func WithMaxUploadSize(v int64) HTTPOption {
	return func(o *HTTP) {
		o.maxUploadSize = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputils.ServerError(h.l, w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	if r.Body == nil {
		httputils.BadRequestServerError(h.l, w, r, errors.New("empty request body"))
		return
	}

	route := Route(strings.TrimPrefix(r.URL.Path, h.path+"/"))
	body := r.Body
	if route == RouteUploadTheme {
		body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	bytes, err := io.ReadAll(body)
	if err != nil {
		httputils.BadRequestServerError(h.l, w, r, errors.Wrap(err, "failed to read incoming request"))
		return
	}

	status, reply, err := h.handleRequest(r.Context(), route, bytes, r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(reply)
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) handleRequest(ctx context.Context, route Route, body []byte, query url.Values) (int, []byte, error) {
	start := time.Now()

	status := http.StatusOK
	reply := h.executeRequest(ctx, route, body, query)
	result := "success"
	if errReply, ok := reply.(*responses.Error); ok {
		result = "error"
		status = errReply.Status
	}

	metrics.ServiceRequestCounter.WithLabelValues(string(route), result).Inc()
	metrics.ServiceRequestDuration.WithLabelValues(string(route), result).Observe(time.Since(start).Seconds())

	bytes, err := h.encodeReply(reply)
	return status, bytes, err
}

func (h *HTTP) executeRequest(ctx context.Context, route Route, body []byte, query url.Values) any {
	var (
		reply             any
		apiErr            error
		jsonErr           error
		processIfJSONIsOk = func(err error, processingFunc func()) {
			if err != nil {
				jsonErr = err
				return
			}
			processingFunc()
		}
	)

	switch route {
	case RouteListThemes:
		req := &requests.Store{}
		processIfJSONIsOk(json.Unmarshal(body, req), func() {
			reply, apiErr = h.service.ListThemes(ctx, req.StoreID)
		})
	case RouteDeleteTheme:
		req := &requests.Theme{}
		processIfJSONIsOk(json.Unmarshal(body, req), func() {
			reply, apiErr = responses.Empty{}, h.service.DeleteTheme(ctx, req.StoreID, req.ThemeID)
		})
	case RouteListAssets:
		req := &requests.ListAssets{}
		processIfJSONIsOk(json.Unmarshal(body, req), func() {
			reply, apiErr = h.service.ListAssets(ctx, req.StoreID, req.ThemeName, req.Criteria)
		})
	case RouteGetAsset:
		req := &requests.Asset{}
		processIfJSONIsOk(json.Unmarshal(body, req), func() {
			reply, apiErr = h.service.GetAsset(ctx, req.StoreID, req.ThemeID, req.Path)
		})
	case RouteSaveAsset:
		req := &requests.SaveAsset{}
		processIfJSONIsOk(json.Unmarshal(body, req), func() {
			reply, apiErr = req.Asset, h.service.SaveAsset(ctx, req.StoreID, req.ThemeID, req.Asset)
		})
	case RouteDeleteAssets:
		req := &requests.DeleteAssets{}
		processIfJSONIsOk(json.Unmarshal(body, req), func() {
			reply, apiErr = responses.Empty{}, h.service.DeleteAssets(ctx, req.StoreID, req.ThemeID, req.AssetIDs...)
		})
	case RouteCreateDefaultTheme:
		req := &requests.CreateDefaultTheme{}
		processIfJSONIsOk(json.Unmarshal(body, req), func() {
			items, err := h.service.CreateDefaultTheme(ctx, req.StoreID, req.LocalThemePath)
			reply, apiErr = &responses.Seed{StoreID: req.StoreID, Items: items}, err
		})
	case RouteUploadTheme:
		reply, apiErr = h.uploadTheme(ctx, query.Get(QueryStoreID), query.Get(QueryThemeName), body)
	default:
		return responses.NewBadRequest(responses.CodeUnknownRoute, "unknown handler: "+string(route))
	}

	// error handling
	if jsonErr != nil {
		h.l.Error("could not read incoming json", zap.Error(jsonErr))
		return responses.NewBadRequest(responses.CodeInvalidJSON, "could not read incoming json "+jsonErr.Error())
	} else if apiErr != nil {
		return h.errorReply(route, apiErr)
	}

	return reply
}

func (h *HTTP) uploadTheme(ctx context.Context, storeID, themeName string, archive []byte) (*responses.Import, error) {
	start := time.Now()
	result, err := h.service.UploadTheme(ctx, storeID, themeName, bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, err
	}
	return &responses.Import{
		StoreID:   storeID,
		ThemeName: themeName,
		Imported:  result.Imported,
		Skipped:   result.Skipped,
		Runtime:   time.Since(start).Seconds(),
	}, nil
}

// errorReply maps service errors to replies
func (h *HTTP) errorReply(route Route, err error) *responses.Error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		h.l.Debug("not found", zap.String("route", string(route)), zap.Error(err))
		return responses.NewNotFound(err.Error())
	case errors.Is(err, theme.ErrMissingStoreID),
		errors.Is(err, theme.ErrMissingThemeID),
		errors.Is(err, theme.ErrMissingAsset),
		errors.Is(err, theme.ErrNoDefaultThemePath),
		errors.Is(err, theme.ErrNoSeedRoot),
		errors.Is(err, theme.ErrInvalidPath):
		return responses.NewBadRequest(responses.CodeBadRequest, err.Error())
	default:
		h.l.Error("an API error occurred", zap.String("route", string(route)), zap.Error(err))
		return responses.NewErrorf(responses.CodeInternal, "internal error %s", err)
	}
}

// encodeReply takes an interface and encodes it as JSON
// it returns the resulting JSON and a marshalling error
func (h *HTTP) encodeReply(reply any) (bytes []byte, err error) {
	bytes, err = json.Marshal(map[string]any{
		"reply": reply,
	})
	if err != nil {
		h.l.Error("could not encode reply", zap.Error(err))
	}
	return
}
