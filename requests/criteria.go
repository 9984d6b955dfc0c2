package requests

import (
	"time"
)

// AssetCriteria - filter for asset listings
type AssetCriteria struct {
	// include the byte content of each asset
	LoadContent bool `json:"loadContent"`
	// only assets modified at or after this instant
	ModifiedSince *time.Time `json:"modifiedSince,omitempty"`
}

// Match reports whether an item modified at modified passes the filter
func (c *AssetCriteria) Match(modified time.Time) bool {
	if c == nil || c.ModifiedSince == nil {
		return true
	}
	return !modified.Before(*c.ModifiedSince)
}

// WantsContent nil criteria load content
func (c *AssetCriteria) WantsContent() bool {
	return c == nil || c.LoadContent
}
