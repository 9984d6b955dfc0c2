package requests

import (
	"github.com/foomo/themeserver/content"
)

// Store - address a store
type Store struct {
	StoreID string `json:"storeId"`
}

// Theme - address a theme of a store
type Theme struct {
	StoreID string `json:"storeId"`
	ThemeID string `json:"themeId"`
}

// ListAssets - list the assets of a theme
type ListAssets struct {
	StoreID   string         `json:"storeId"`
	ThemeName string         `json:"themeName"`
	Criteria  *AssetCriteria `json:"criteria"`
}

// Asset - address a single asset
type Asset struct {
	StoreID string `json:"storeId"`
	ThemeID string `json:"themeId"`
	// relative to the theme root
	Path string `json:"path"`
}

// SaveAsset - create or overwrite an asset
type SaveAsset struct {
	StoreID string              `json:"storeId"`
	ThemeID string              `json:"themeId"`
	Asset   *content.ThemeAsset `json:"asset"`
}

// DeleteAssets - delete many assets at once
type DeleteAssets struct {
	StoreID  string   `json:"storeId"`
	ThemeID  string   `json:"themeId"`
	AssetIDs []string `json:"assetIds"`
}

// CreateDefaultTheme - seed a store from a local directory
type CreateDefaultTheme struct {
	StoreID string `json:"storeId"`
	// optional, overrides the configured default theme path
	LocalThemePath string `json:"localThemePath,omitempty"`
}
