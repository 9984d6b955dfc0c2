package content

import (
	"time"
)

// Item is the storage representation of a persisted file
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Path        string    `json:"path"` // absolute, rooted at the store id
	ByteContent []byte    `json:"byteContent,omitempty"`
	ContentType string    `json:"contentType"`
	CreatedDate time.Time `json:"createdDate"`
	// ModifiedDate is bumped on every save
	ModifiedDate time.Time `json:"modifiedDate"`
}

// NewItem item constructor
func NewItem(id, name, path string, data []byte) *Item {
	return &Item{
		ID:          id,
		Name:        name,
		Path:        path,
		ByteContent: data,
	}
}

// ToThemeAsset projects the item to an asset. relativePath replaces the
// absolute path, it must not carry the store or theme prefix.
func (i *Item) ToThemeAsset(relativePath string) *ThemeAsset {
	return &ThemeAsset{
		ID:           relativePath,
		Name:         i.Name,
		Path:         relativePath,
		Content:      i.ByteContent,
		ContentType:  i.ContentType,
		CreatedDate:  i.CreatedDate,
		ModifiedDate: i.ModifiedDate,
	}
}
