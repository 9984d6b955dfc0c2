package content

import (
	"time"
)

// ThemeAsset a file of a theme, addressed relative to the theme root
type ThemeAsset struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Content      []byte    `json:"content,omitempty"`
	ContentType  string    `json:"contentType"`
	CreatedDate  time.Time `json:"createdDate"`
	ModifiedDate time.Time `json:"modifiedDate"`
}

// ToItem converts the asset into a content item stored at path
func (a *ThemeAsset) ToItem(path string) *Item {
	name := a.Name
	if name == "" {
		name = a.ID
	}
	return &Item{
		ID:           a.ID,
		Name:         name,
		Path:         path,
		ByteContent:  a.Content,
		ContentType:  a.ContentType,
		CreatedDate:  a.CreatedDate,
		ModifiedDate: a.ModifiedDate,
	}
}
