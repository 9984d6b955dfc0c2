package theme

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/foomo/themeserver/content"
	"github.com/foomo/themeserver/pkg/metrics"
	"github.com/foomo/themeserver/pkg/mimetype"
	"github.com/foomo/themeserver/pkg/repo"
	"github.com/foomo/themeserver/requests"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	ErrMissingStoreID     = errors.New("store id must not be empty")
	ErrMissingThemeID     = errors.New("theme id must not be empty")
	ErrMissingAsset       = errors.New("asset must not be nil and needs an id")
	ErrNoDefaultThemePath = errors.New("no default theme path configured")
	ErrNoSeedRoot         = errors.New("no seed root configured, theme path overrides are disabled")
)

type (
	// Service manages the themes and assets of stores
	Service struct {
		l                *zap.Logger
		factory          repo.Factory
		classifier       mimetype.Classifier
		importer         *Importer
		defaultFolders   []string
		defaultThemePath string
		seedRoot         string
		fs               afero.Fs
		now              func() time.Time
	}
	Option func(*Service)
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithClassifier(v mimetype.Classifier) Option {
	return func(o *Service) {
		o.classifier = v
	}
}

// WithDefaultFolders replaces the canonical top level folders used by archive imports
func WithDefaultFolders(v ...string) Option {
	return func(o *Service) {
		o.defaultFolders = v
	}
}

// WithDefaultThemePath sets the local directory seeded into stores without themes
func WithDefaultThemePath(v string) Option {
	return func(o *Service) {
		o.defaultThemePath = v
	}
}

// WithSeedRoot enables theme path overrides, they are resolved below v and may not leave it
func WithSeedRoot(v string) Option {
	return func(o *Service) {
		o.seedRoot = v
	}
}

// WithFs sets the file system default themes are read from
func WithFs(v afero.Fs) Option {
	return func(o *Service) {
		o.fs = v
	}
}

func WithClock(v func() time.Time) Option {
	return func(o *Service) {
		o.now = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewService(l *zap.Logger, factory repo.Factory, opts ...Option) *Service {
	inst := &Service{
		l:              l.Named("theme"),
		factory:        factory,
		classifier:     mimetype.Default,
		defaultFolders: DefaultFolders,
		fs:             afero.NewOsFs(),
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(inst)
	}

	inst.importer = NewImporter(inst.l, inst,
		ImporterWithDefaultFolders(inst.defaultFolders...),
		ImporterWithClassifier(inst.classifier),
	)

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// ListThemes lists the themes of a store
func (s *Service) ListThemes(ctx context.Context, storeID string) ([]content.Theme, error) {
	if err := validateStoreID(storeID); err != nil {
		return nil, err
	}
	var themes []content.Theme
	err := s.withRepository(ctx, func(r repo.Repository) (err error) {
		themes, err = r.GetThemes(ctx, ResolveThemeRoot(storeID, ""))
		return err
	})
	return themes, err
}

// DeleteTheme removes all content of a theme, there is no way back
func (s *Service) DeleteTheme(ctx context.Context, storeID, themeID string) error {
	if err := validate(storeID, themeID); err != nil {
		return err
	}
	return s.withRepository(ctx, func(r repo.Repository) error {
		return r.DeleteTheme(ctx, ResolveThemeRoot(storeID, themeID))
	})
}

// ListAssets lists the assets of a theme with paths relative to the theme root
func (s *Service) ListAssets(ctx context.Context, storeID, themeName string, criteria *requests.AssetCriteria) ([]*content.ThemeAsset, error) {
	if err := validate(storeID, themeName); err != nil {
		return nil, err
	}
	root := ResolveThemeRoot(storeID, themeName)
	var assets []*content.ThemeAsset
	err := s.withRepository(ctx, func(r repo.Repository) error {
		items, err := r.GetContentItems(ctx, root, criteria)
		if err != nil {
			return err
		}
		assets = make([]*content.ThemeAsset, 0, len(items))
		for _, item := range items {
			assets = append(assets, s.toThemeAsset(root, item))
		}
		return nil
	})
	return assets, err
}

// GetAsset returns a single asset, path is relative to the theme root
func (s *Service) GetAsset(ctx context.Context, storeID, themeID, path string) (*content.ThemeAsset, error) {
	if err := validate(storeID, themeID); err != nil {
		return nil, err
	}
	if err := ValidateAssetPath(path); err != nil {
		return nil, err
	}
	var asset *content.ThemeAsset
	err := s.withRepository(ctx, func(r repo.Repository) error {
		item, err := r.GetContentItem(ctx, ResolveAssetPath(storeID, themeID, path))
		if err != nil {
			return err
		}
		asset = s.toThemeAsset(ResolveThemeRoot(storeID, themeID), item)
		return nil
	})
	return asset, err
}

// SaveAsset creates or overwrites the asset addressed by asset.ID
func (s *Service) SaveAsset(ctx context.Context, storeID, themeID string, asset *content.ThemeAsset) error {
	if err := validate(storeID, themeID); err != nil {
		return err
	}
	if asset == nil || trim(asset.ID) == "" {
		return ErrMissingAsset
	}
	if err := ValidateAssetPath(asset.ID); err != nil {
		return err
	}
	now := s.now()
	if asset.CreatedDate.IsZero() {
		asset.CreatedDate = now
	}
	asset.ModifiedDate = now
	if asset.ContentType == "" {
		asset.ContentType = s.classifier.Classify(asset.ID, asset.Content)
	}
	return s.withRepository(ctx, func(r repo.Repository) error {
		path := ResolveAssetPath(storeID, themeID, asset.ID)
		return r.SaveContentItem(ctx, path, asset.ToItem(path))
	})
}

// DeleteAssets deletes the assets one by one. The first failure is returned
// and the remaining ids are left untouched. Invalid ids reject the whole call.
func (s *Service) DeleteAssets(ctx context.Context, storeID, themeID string, assetIDs ...string) error {
	if err := validate(storeID, themeID); err != nil {
		return err
	}
	for _, assetID := range assetIDs {
		if err := ValidateAssetPath(assetID); err != nil {
			return err
		}
	}
	return s.withRepository(ctx, func(r repo.Repository) error {
		for _, assetID := range assetIDs {
			if err := r.DeleteContentItem(ctx, ResolveAssetPath(storeID, themeID, assetID)); err != nil {
				return errors.Wrapf(err, "failed to delete asset %q", assetID)
			}
		}
		return nil
	})
}

// UploadTheme imports a zip archive as theme themeName
func (s *Service) UploadTheme(ctx context.Context, storeID, themeName string, archive io.ReaderAt, size int64) (ImportResult, error) {
	themeName = trim(themeName)
	if err := validate(storeID, themeName); err != nil {
		return ImportResult{}, err
	}
	reader, err := zip.NewReader(archive, size)
	if err != nil {
		return ImportResult{}, errors.Wrap(err, "failed to open theme archive")
	}
	return s.importer.Import(ctx, storeID, themeName, reader)
}

// CreateDefaultTheme seeds a store from a local directory tree. Without
// localThemePath the configured default theme path is used, but only if the
// store has no themes yet. localThemePath is resolved below the seed root.
// Returns the number of items written.
func (s *Service) CreateDefaultTheme(ctx context.Context, storeID, localThemePath string) (int, error) {
	if err := validateStoreID(storeID); err != nil {
		return 0, err
	}
	var (
		count  int
		source = "override"
		fs     = s.fs
		root   = s.defaultThemePath
	)
	if localThemePath != "" {
		var err error
		if fs, root, err = s.seedSource(localThemePath); err != nil {
			return 0, err
		}
	}
	err := s.withRepository(ctx, func(r repo.Repository) (err error) {
		if localThemePath == "" {
			themes, err := r.GetThemes(ctx, ResolveThemeRoot(storeID, ""))
			if err != nil {
				return err
			}
			if len(themes) > 0 {
				s.l.Debug("store has themes, skipping default theme", zap.String("store", storeID), zap.Int("themes", len(themes)))
				return nil
			}
			if s.defaultThemePath == "" {
				return ErrNoDefaultThemePath
			}
			source = "default"
		}
		count, err = s.seed(ctx, r, fs, storeID, root)
		return err
	})
	if count > 0 {
		metrics.SeededItemsCounter.WithLabelValues(source).Add(float64(count))
		s.l.Info("seeded default theme",
			zap.String("store", storeID),
			zap.String("source", source),
			zap.String("path", root),
			zap.Int("items", count),
		)
	}
	return count, err
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

// withRepository acquires a handle for fn and releases it on every exit path
func (s *Service) withRepository(ctx context.Context, fn func(r repo.Repository) error) (err error) {
	r, err := s.factory(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to acquire repository")
	}
	defer multierr.AppendInvoke(&err, multierr.Close(r))
	return fn(r)
}

func (s *Service) toThemeAsset(root string, item *content.Item) *content.ThemeAsset {
	asset := item.ToThemeAsset(ToRelativePath(root, item.Path))
	if asset.ContentType == "" {
		asset.ContentType = s.classifier.Classify(asset.Path, asset.Content)
	}
	return asset
}

// seedSource confines an override path to the seed root
func (s *Service) seedSource(localThemePath string) (afero.Fs, string, error) {
	if s.seedRoot == "" {
		return nil, "", ErrNoSeedRoot
	}
	rel := filepath.Clean(strings.Trim(filepath.ToSlash(localThemePath), content.PathSeparator))
	if !filepath.IsLocal(rel) {
		return nil, "", errors.Wrapf(ErrInvalidPath, "theme path %q leaves the seed root", localThemePath)
	}
	return afero.NewBasePathFs(s.fs, s.seedRoot), filepath.Join(string(filepath.Separator), rel), nil
}

func (s *Service) seed(ctx context.Context, r repo.Repository, fs afero.Fs, storeID, root string) (int, error) {
	var count int
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			rel = info.Name()
		}
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return errors.Wrapf(err, "failed to read %q", path)
		}
		now := s.now()
		item := content.NewItem(uuid.New().String(), info.Name(), "", data)
		item.ContentType = s.classifier.Classify(info.Name(), data)
		item.CreatedDate = now
		item.ModifiedDate = now
		key := trim(storeID) + content.PathSeparator + filepath.ToSlash(rel)
		if err := r.SaveContentItem(ctx, key, item); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, errors.Wrapf(err, "failed to seed store %q from %q", storeID, root)
	}
	return count, nil
}

func validateStoreID(storeID string) error {
	if trim(storeID) == "" {
		return ErrMissingStoreID
	}
	return validateID("store id", storeID)
}

func validate(storeID, themeID string) error {
	if err := validateStoreID(storeID); err != nil {
		return err
	}
	if trim(themeID) == "" {
		return ErrMissingThemeID
	}
	return validateID("theme id", themeID)
}
