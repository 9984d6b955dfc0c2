package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/foomo/themeserver/pkg/repo"
	"github.com/foomo/themeserver/pkg/theme"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// supportedBlobSchemes lists the URL schemes supported by blob storage
var supportedBlobSchemes = []string{"gs://", "s3://", "azblob://", "file://", "mem://"}

// createStorage creates a storage backend based on the configuration
func createStorage(ctx context.Context, v *viper.Viper, l *zap.Logger) (repo.Storage, error) {
	storageType := storageTypeFlag(v)
	blobBucket := storageBlobBucketFlag(v)
	blobPrefix := storageBlobPrefixFlag(v)

	if storageType != "blob" && (blobBucket != "" || blobPrefix != "") {
		l.Warn("blob storage flags are set but storage-type is not 'blob'; blob config will be ignored",
			zap.String("storage-type", storageType),
			zap.String("blob-bucket", blobBucket),
			zap.String("blob-prefix", blobPrefix),
		)
	}

	l.Info("creating storage", zap.String("type", storageType))

	switch storageType {
	case "blob":
		if blobBucket == "" {
			return nil, fmt.Errorf("blob bucket URL is required when storage-type is 'blob' (supported schemes: %s)", strings.Join(supportedBlobSchemes, ", "))
		}
		if !isValidBlobScheme(blobBucket) {
			return nil, fmt.Errorf("unsupported blob storage URL scheme in %q; supported schemes: %s", blobBucket, strings.Join(supportedBlobSchemes, ", "))
		}
		l.Info("using blob storage",
			zap.String("bucket", blobBucket),
			zap.String("prefix", blobPrefix),
			zap.String("provider", detectBlobProvider(blobBucket)),
		)
		return repo.NewBlobStorage(ctx, blobBucket, blobPrefix)
	case "filesystem", "":
		dir := storageDirFlag(v)
		l.Info("using filesystem storage", zap.String("dir", dir))
		return repo.NewFilesystemStorage(dir)
	default:
		return nil, fmt.Errorf("unknown storage type: %s (supported: filesystem, blob)", storageType)
	}
}

// newService wires storage, handle factory and theme service
func newService(ctx context.Context, v *viper.Viper, l *zap.Logger, extra ...theme.Option) (*theme.Service, repo.Storage, error) {
	storage, err := createStorage(ctx, v, l)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage: %w", err)
	}
	opts := []theme.Option{
		theme.WithDefaultThemePath(defaultThemePathFlag(v)),
		theme.WithSeedRoot(seedRootFlag(v)),
	}
	if folders := themeDefaultFoldersFlag(v); len(folders) > 0 {
		opts = append(opts, theme.WithDefaultFolders(folders...))
	}
	opts = append(opts, extra...)
	return theme.NewService(l.Named("inst.theme"), repo.NewFactory(l, storage), opts...), storage, nil
}

// isValidBlobScheme checks if the bucket URL has a supported scheme
func isValidBlobScheme(bucketURL string) bool {
	for _, scheme := range supportedBlobSchemes {
		if strings.HasPrefix(bucketURL, scheme) {
			return true
		}
	}
	return false
}

// detectBlobProvider returns a human-readable provider name from the URL scheme
func detectBlobProvider(bucketURL string) string {
	switch {
	case strings.HasPrefix(bucketURL, "gs://"):
		return "Google Cloud Storage"
	case strings.HasPrefix(bucketURL, "s3://"):
		return "AWS S3"
	case strings.HasPrefix(bucketURL, "azblob://"):
		return "Azure Blob Storage"
	case strings.HasPrefix(bucketURL, "file://"):
		return "Local Directory"
	case strings.HasPrefix(bucketURL, "mem://"):
		return "Memory"
	default:
		return "unknown"
	}
}
