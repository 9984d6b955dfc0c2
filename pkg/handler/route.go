package handler

// Route type
type Route string

const (
	// RouteListThemes list the themes of a store
	RouteListThemes Route = "listThemes"
	// RouteDeleteTheme delete a theme and all of its assets
	RouteDeleteTheme Route = "deleteTheme"
	// RouteListAssets list the assets of a theme
	RouteListAssets Route = "listAssets"
	// RouteGetAsset get a single asset
	RouteGetAsset Route = "getAsset"
	// RouteSaveAsset create or overwrite an asset
	RouteSaveAsset Route = "saveAsset"
	// RouteDeleteAssets delete many assets at once
	RouteDeleteAssets Route = "deleteAssets"
	// RouteCreateDefaultTheme seed a store with the default theme
	RouteCreateDefaultTheme Route = "createDefaultTheme"
	// RouteUploadTheme import a zip archive, the body is the raw archive
	RouteUploadTheme Route = "uploadTheme"
)

const (
	// QueryStoreID query parameter of RouteUploadTheme
	QueryStoreID = "storeId"
	// QueryThemeName query parameter of RouteUploadTheme
	QueryThemeName = "themeName"
)
