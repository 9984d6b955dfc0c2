package responses

// error codes of a reply
const (
	CodeUnknownRoute = 1
	CodeInvalidJSON  = 2
	CodeInternal     = 3
	CodeNotFound     = 4
	CodeBadRequest   = 5
)

// Import - information about a theme archive import
type Import struct {
	StoreID   string `json:"storeId"`
	ThemeName string `json:"themeName"`
	Imported  int    `json:"imported"`
	Skipped   int    `json:"skipped"`
	// seconds
	Runtime float64 `json:"runtime"`
}

// Seed - information about a default theme seeding
type Seed struct {
	StoreID string `json:"storeId"`
	Items   int    `json:"items"`
}

// Empty reply for operations without a result
type Empty struct{}
