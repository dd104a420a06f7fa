package uploads

import (
	"log"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/tasks"
)

// Cleaner performs best-effort artifact removal. A failed delete is logged
// and handed to the task queue for retry; it never surfaces to the caller,
// so compensation can never mask the error that triggered it.
type Cleaner struct {
	store *Store
	queue *tasks.Client // optional
}

// NewCleaner creates a cleaner. queue may be nil, in which case failed
// deletes are only logged.
func NewCleaner(store *Store, queue *tasks.Client) *Cleaner {
	return &Cleaner{store: store, queue: queue}
}

// Remove deletes the artifact at the public path. A missing file is
// success; anything else is logged and queued for retry.
func (c *Cleaner) Remove(publicPath string) {
	if publicPath == "" {
		return
	}
	err := c.store.Delete(publicPath)
	if err == nil || apperror.IsKind(err, apperror.KindNotFound) {
		return
	}
	log.Printf("Failed to delete artifact %s: %v", publicPath, err)
	if c.queue == nil {
		return
	}
	if _, qErr := c.queue.Add(tasks.CleanupArtifactTask{Path: publicPath}).Save(); qErr != nil {
		log.Printf("Failed to queue artifact cleanup for %s: %v", publicPath, qErr)
	}
}
