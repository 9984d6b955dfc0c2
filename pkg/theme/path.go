package theme

import (
	"strings"

	"github.com/foomo/themeserver/content"
	"github.com/pkg/errors"
)

// ErrInvalidPath is returned for ids and asset paths that do not stay below their root
var ErrInvalidPath = errors.New("invalid path")

// ResolveThemeRoot returns "{storeID}/" for an empty theme name, "{storeID}/{themeName}" otherwise
func ResolveThemeRoot(storeID, themeName string) string {
	storeID = trim(storeID)
	themeName = trim(themeName)
	if themeName == "" {
		return storeID + content.PathSeparator
	}
	return storeID + content.PathSeparator + themeName
}

// ResolveAssetPath returns the absolute storage path "{storeID}/{themeName}/{assetID}"
func ResolveAssetPath(storeID, themeName, assetID string) string {
	return trim(storeID) + content.PathSeparator + trim(themeName) + content.PathSeparator + trim(assetID)
}

// ToRelativePath strips themeRootPath from fullPath, ignoring case, and trims
// surrounding separators so callers never see the storage root.
func ToRelativePath(themeRootPath, fullPath string) string {
	root := trim(themeRootPath)
	if len(fullPath) >= len(root) && strings.EqualFold(fullPath[:len(root)], root) {
		fullPath = fullPath[len(root):]
	}
	return trim(fullPath)
}

// ValidateAssetPath accepts relative asset paths made of plain segments,
// "assets/site.css" is valid while "", "assets//site.css", "./x" and "../x" are not.
func ValidateAssetPath(assetPath string) error {
	trimmed := trim(assetPath)
	if trimmed == "" {
		return errors.Wrap(ErrInvalidPath, "empty asset path")
	}
	for _, segment := range strings.Split(trimmed, content.PathSeparator) {
		if !validSegment(segment) {
			return errors.Wrapf(ErrInvalidPath, "asset path %q", assetPath)
		}
	}
	return nil
}

// validateID accepts a single path segment surrounded by optional separators
func validateID(kind, id string) error {
	if trimmed := trim(id); strings.Contains(trimmed, content.PathSeparator) || !validSegment(trimmed) {
		return errors.Wrapf(ErrInvalidPath, "%s %q", kind, id)
	}
	return nil
}

func validSegment(segment string) bool {
	return segment != "" && segment != "." && segment != ".." && !strings.ContainsRune(segment, '\\')
}

func trim(s string) string {
	return strings.Trim(s, content.PathSeparator)
}
