// contains data structures that describe themes and their assets in a content repository
package content

const (
	// PathSeparator separator for storage paths
	PathSeparator = "/"
	// DefaultContentType used when nothing better can be inferred
	DefaultContentType = "application/octet-stream"
)
