// Package mimetype infers the content type of theme files from their name
// and, when the name is not conclusive, from their leading bytes.
package mimetype

import (
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/foomo/themeserver/content"
)

// Classifier infers a mime type for a named payload
type Classifier interface {
	Classify(name string, data []byte) string
}

// ClassifierFunc adapts a function to Classifier
type ClassifierFunc func(name string, data []byte) string

func (f ClassifierFunc) Classify(name string, data []byte) string {
	return f(name, data)
}

// theme file types mime.TypeByExtension does not know or gets wrong across platforms
var extensions = map[string]string{
	".liquid": "text/html",
	".html":   "text/html",
	".htm":    "text/html",
	".css":    "text/css",
	".scss":   "text/x-scss",
	".js":     "application/javascript",
	".json":   "application/json",
	".map":    "application/json",
	".xml":    "application/xml",
	".svg":    "image/svg+xml",
	".png":    "image/png",
	".jpg":    "image/jpeg",
	".jpeg":   "image/jpeg",
	".gif":    "image/gif",
	".ico":    "image/x-icon",
	".webp":   "image/webp",
	".woff":   "font/woff",
	".woff2":  "font/woff2",
	".ttf":    "font/ttf",
	".otf":    "font/otf",
	".eot":    "application/vnd.ms-fontobject",
	".txt":    "text/plain",
	".md":     "text/markdown",
}

// sniffLen bytes are considered by http.DetectContentType
const sniffLen = 512

// Default is the classifier used when none is configured
var Default Classifier = ClassifierFunc(Classify)

// Classify returns the mime type by extension first, then by content
func Classify(name string, data []byte) string {
	ext := strings.ToLower(path.Ext(name))
	if contentType, ok := extensions[ext]; ok {
		return contentType
	}
	if ext != "" {
		if contentType := mime.TypeByExtension(ext); contentType != "" {
			return contentType
		}
	}
	if len(data) == 0 {
		return content.DefaultContentType
	}
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	contentType := http.DetectContentType(data)
	// DetectContentType reports text/xml for svg files without extension
	if strings.Contains(contentType, "xml") && strings.Contains(string(data), "<svg") {
		return "image/svg+xml"
	}
	return contentType
}
