package repo

import (
	"context"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/foomo/themeserver/content"
	"github.com/foomo/themeserver/pkg/metrics"
	"github.com/foomo/themeserver/requests"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	json = jsoniter.ConfigCompatibleWithStandardLibrary
	// ErrClosed is returned by a handle that was already released
	ErrClosed = errors.New("repository handle is closed")
)

type (
	// Repository persists content items below a hierarchical path namespace.
	// Not-found errors satisfy errors.Is(err, os.ErrNotExist).
	Repository interface {
		// GetThemes lists the folders directly below prefix that contain items
		GetThemes(ctx context.Context, prefix string) ([]content.Theme, error)
		// GetContentItems returns all items below the folder prefix matching criteria
		GetContentItems(ctx context.Context, prefix string, criteria *requests.AssetCriteria) ([]*content.Item, error)
		GetContentItem(ctx context.Context, path string) (*content.Item, error)
		// SaveContentItem creates or overwrites the item at path
		SaveContentItem(ctx context.Context, path string, item *content.Item) error
		DeleteContentItem(ctx context.Context, path string) error
		// DeleteTheme removes every item below the folder prefix
		DeleteTheme(ctx context.Context, prefix string) error
		// Close releases the handle
		Close() error
	}
	// Factory hands out a fresh repository handle per call
	Factory func(ctx context.Context) (Repository, error)
)

// NewFactory returns a factory of handles sharing one storage.
// Releasing a handle never closes the storage.
func NewFactory(l *zap.Logger, storage Storage) Factory {
	l = l.Named("repo")
	return func(ctx context.Context) (Repository, error) {
		if storage == nil {
			return nil, errors.New("no storage configured")
		}
		metrics.OpenRepositoryHandlesGauge.WithLabelValues().Inc()
		return &StorageRepository{
			l:       l,
			storage: storage,
			closed:  &atomic.Bool{},
		}, nil
	}
}

// StorageRepository implements Repository on top of a Storage
type StorageRepository struct {
	l       *zap.Logger
	storage Storage
	closed  *atomic.Bool
}

// itemRecord is what gets written to storage, the key is the item path
type itemRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ContentType  string    `json:"contentType"`
	CreatedDate  time.Time `json:"createdDate"`
	ModifiedDate time.Time `json:"modifiedDate"`
	Content      []byte    `json:"content"`
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (r *StorageRepository) GetThemes(ctx context.Context, prefix string) ([]content.Theme, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	prefix = folder(prefix)
	keys, err := r.storage.List(ctx, prefix)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list themes below %q", prefix)
	}

	storeID := strings.TrimSuffix(prefix, content.PathSeparator)
	seen := map[string]bool{}
	themes := []content.Theme{}
	for _, key := range keys {
		name, rest, nested := strings.Cut(strings.TrimPrefix(key, prefix), content.PathSeparator)
		// files lying directly in the store root are no themes
		if !nested || name == "" || rest == "" || seen[name] {
			continue
		}
		seen[name] = true
		themes = append(themes, content.Theme{
			StoreID: storeID,
			Name:    name,
			Path:    prefix + name,
		})
	}
	sort.Slice(themes, func(i, j int) bool {
		return themes[i].Name < themes[j].Name
	})
	return themes, nil
}

func (r *StorageRepository) GetContentItems(ctx context.Context, prefix string, criteria *requests.AssetCriteria) ([]*content.Item, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	prefix = folder(prefix)
	keys, err := r.storage.List(ctx, prefix)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list items below %q", prefix)
	}

	items := make([]*content.Item, 0, len(keys))
	for _, key := range keys {
		item, err := r.read(ctx, key)
		if err != nil {
			return nil, err
		}
		if !criteria.Match(item.ModifiedDate) {
			continue
		}
		if !criteria.WantsContent() {
			item.ByteContent = nil
		}
		items = append(items, item)
	}
	r.l.Debug("listed content items", zap.String("prefix", prefix), zap.Int("count", len(items)))
	return items, nil
}

func (r *StorageRepository) GetContentItem(ctx context.Context, path string) (*content.Item, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	return r.read(ctx, path)
}

func (r *StorageRepository) SaveContentItem(ctx context.Context, path string, item *content.Item) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if item == nil {
		return errors.New("item must not be nil")
	}
	item.Path = path
	data, err := json.Marshal(itemRecord{
		ID:           item.ID,
		Name:         item.Name,
		ContentType:  item.ContentType,
		CreatedDate:  item.CreatedDate,
		ModifiedDate: item.ModifiedDate,
		Content:      item.ByteContent,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to encode item %q", path)
	}
	if err := r.storage.Write(ctx, path, data); err != nil {
		return errors.Wrapf(err, "failed to write item %q", path)
	}
	r.l.Debug("saved content item", zap.String("path", path), zap.Int("size", len(item.ByteContent)))
	return nil
}

func (r *StorageRepository) DeleteContentItem(ctx context.Context, path string) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if err := r.storage.Delete(ctx, path); err != nil {
		return errors.Wrapf(err, "failed to delete item %q", path)
	}
	return nil
}

func (r *StorageRepository) DeleteTheme(ctx context.Context, prefix string) error {
	if r.closed.Load() {
		return ErrClosed
	}
	prefix = folder(prefix)
	keys, err := r.storage.List(ctx, prefix)
	if err != nil {
		return errors.Wrapf(err, "failed to list items below %q", prefix)
	}
	for _, key := range keys {
		if err := r.storage.Delete(ctx, key); err != nil {
			return errors.Wrapf(err, "failed to delete item %q", key)
		}
	}
	r.l.Info("deleted theme", zap.String("prefix", prefix), zap.Int("items", len(keys)))
	return nil
}

func (r *StorageRepository) Close() error {
	if r.closed.Swap(true) {
		return ErrClosed
	}
	metrics.OpenRepositoryHandlesGauge.WithLabelValues().Dec()
	return nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (r *StorageRepository) read(ctx context.Context, key string) (*content.Item, error) {
	data, err := r.storage.Read(ctx, key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(os.ErrNotExist, "content item %q", key)
		}
		return nil, errors.Wrapf(err, "failed to read item %q", key)
	}
	var record itemRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrapf(err, "failed to decode item %q", key)
	}
	return &content.Item{
		ID:           record.ID,
		Name:         record.Name,
		Path:         key,
		ByteContent:  record.Content,
		ContentType:  record.ContentType,
		CreatedDate:  record.CreatedDate.UTC(),
		ModifiedDate: record.ModifiedDate.UTC(),
	}, nil
}

// folder turns a path prefix into a folder prefix so "s1/t1" does not match "s1/t10"
func folder(prefix string) string {
	prefix = strings.Trim(prefix, content.PathSeparator)
	if prefix == "" {
		return ""
	}
	return prefix + content.PathSeparator
}
