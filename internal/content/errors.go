package content

import "errors"

var (
	// ErrContentDirWalkFailed indicates a category directory could not be scanned.
	ErrContentDirWalkFailed = errors.New("failed to walk content directory")
	// ErrFileReadFailed indicates a content file could not be read.
	ErrFileReadFailed = errors.New("failed to read content file")
	// ErrInvalidFrontmatter indicates the front-matter block could not be parsed.
	ErrInvalidFrontmatter = errors.New("invalid frontmatter")
	// ErrMissingPubDate indicates a content file lacks the required pubDate field.
	ErrMissingPubDate = errors.New("missing required pubDate")
	// ErrEmptyTag indicates a tags list contains an empty string.
	ErrEmptyTag = errors.New("tags must be non-empty strings")
	// ErrDuplicateSlug indicates two files in one category produced the same slug.
	ErrDuplicateSlug = errors.New("duplicate slug within category")
)
