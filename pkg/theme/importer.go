package theme

import (
	"archive/zip"
	"context"
	"io"
	"iter"
	"strings"
	"time"

	"github.com/foomo/themeserver/content"
	"github.com/foomo/themeserver/pkg/metrics"
	"github.com/foomo/themeserver/pkg/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultFolders are the top level folders of the canonical theme layout
var DefaultFolders = []string{"assets", "layout", "templates", "snippets", "config", "locales"}

type (
	// AssetSaver persists a single asset of a theme
	AssetSaver interface {
		SaveAsset(ctx context.Context, storeID, themeID string, asset *content.ThemeAsset) error
	}
	// ImportResult counts the entries of an archive
	ImportResult struct {
		Imported int
		// directory entries
		Skipped int
	}
	Importer struct {
		l              *zap.Logger
		saver          AssetSaver
		classifier     mimetype.Classifier
		defaultFolders map[string]struct{}
	}
	ImporterOption func(*Importer)
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

// ImporterWithDefaultFolders replaces the canonical top level folders
func ImporterWithDefaultFolders(v ...string) ImporterOption {
	return func(o *Importer) {
		o.defaultFolders = folderSet(v)
	}
}

func ImporterWithClassifier(v mimetype.Classifier) ImporterOption {
	return func(o *Importer) {
		o.classifier = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewImporter(l *zap.Logger, saver AssetSaver, opts ...ImporterOption) *Importer {
	inst := &Importer{
		l:              l.Named("importer"),
		saver:          saver,
		classifier:     mimetype.Default,
		defaultFolders: folderSet(DefaultFolders),
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Import saves every file entry of the archive as an asset of the theme.
// The first failing entry aborts the import, entries saved before it are kept.
func (i *Importer) Import(ctx context.Context, storeID, themeName string, archive *zip.Reader) (ImportResult, error) {
	var (
		result ImportResult
		start  = time.Now()
		l      = i.l.With(
			zap.String("run_id", uuid.New().String()),
			zap.String("store", storeID),
			zap.String("theme", themeName),
		)
	)

	l.Info("import started")
	for entry := range entries(archive) {
		if isDirectory(entry.Name) {
			result.Skipped++
			continue
		}
		if err := i.importEntry(ctx, storeID, themeName, entry); err != nil {
			l.Error("import failed", zap.String("entry", entry.Name), zap.Error(err))
			metrics.ImportsFailedCounter.WithLabelValues().Inc()
			return result, err
		}
		result.Imported++
		metrics.ImportedAssetsCounter.WithLabelValues().Inc()
	}

	metrics.ImportDuration.WithLabelValues().Observe(time.Since(start).Seconds())
	l.Info("import done",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// AssetName derives the asset name from an archive entry name. Entries below a
// default folder and bare root files keep their name, any other top level folder
// is a wrapping theme folder and gets stripped.
func (i *Importer) AssetName(entryName string) string {
	segments := strings.Split(entryName, content.PathSeparator)
	_, isDefault := i.defaultFolders[segments[0]]
	switch {
	case isDefault && len(segments) > 1:
		return entryName
	case !isDefault && len(segments) == 1:
		return entryName
	}
	if name := strings.Join(segments[1:], content.PathSeparator); name != "" {
		return name
	}
	return entryName
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (i *Importer) importEntry(ctx context.Context, storeID, themeName string, entry *zip.File) error {
	name := i.AssetName(entry.Name)
	if err := ValidateAssetPath(name); err != nil {
		return errors.Wrapf(err, "archive entry %q", entry.Name)
	}
	data, err := readEntry(entry)
	if err != nil {
		return errors.Wrapf(err, "failed to read archive entry %q", entry.Name)
	}
	asset := &content.ThemeAsset{
		ID:          name,
		Name:        name,
		Content:     data,
		ContentType: i.classifier.Classify(name, data),
	}
	if err := i.saver.SaveAsset(ctx, storeID, themeName, asset); err != nil {
		return errors.Wrapf(err, "failed to save archive entry %q", entry.Name)
	}
	i.l.Debug("imported entry", zap.String("entry", entry.Name), zap.String("asset", name))
	return nil
}

// entries yields the archive entries once, in archive order
func entries(archive *zip.Reader) iter.Seq[*zip.File] {
	return func(yield func(*zip.File) bool) {
		for _, entry := range archive.File {
			if !yield(entry) {
				return
			}
		}
	}
}

func readEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func isDirectory(entryName string) bool {
	return strings.HasSuffix(entryName, content.PathSeparator)
}

func folderSet(folders []string) map[string]struct{} {
	set := make(map[string]struct{}, len(folders))
	for _, folder := range folders {
		if folder = strings.Trim(folder, content.PathSeparator); folder != "" {
			set[folder] = struct{}{}
		}
	}
	return set
}
