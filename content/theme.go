package content

// Theme is a named folder of assets below a store
type Theme struct {
	StoreID string `json:"storeId"`
	Name    string `json:"name"`
	Path    string `json:"path"`
}
