package driven

import "context"

// ContentProvider defines the driven port for obtaining the complete current
// text of a file at the revision under review. The engine never needs
// hunk-level diff classification; whole-file content is sufficient and
// required.
type ContentProvider interface {
	// FileContent returns the full text of the file at the given repository-
	// relative path. found is false when the file does not exist at the
	// revision; that is not an error.
	FileContent(ctx context.Context, path string) (content string, found bool, err error)
}
