package driven

import "context"

// FileEventType describes a file change.
type FileEventType string

// File event types.
const (
	FileCreated  FileEventType = "created"
	FileModified FileEventType = "modified"
	FileRemoved  FileEventType = "removed"
)

// FileEvent is a change to a watched file.
type FileEvent struct {
	Path string
	Type FileEventType
}

// FileWatcher notifies about changes to matching files in a directory.
type FileWatcher interface {
	// Watch emits events until ctx is cancelled, then closes the channel.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)
}
