package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// ArtifactDeleter removes a stored upload artifact by its public path.
type ArtifactDeleter interface {
	Delete(publicPath string) error
}

// CleanupArtifactTask retries deletion of an upload artifact whose
// compensating delete failed during request handling. Request handlers log
// and swallow those failures; this task makes sure the file still goes
// away.
type CleanupArtifactTask struct {
	Path string `json:"path"`
}

// Config returns the queue configuration for artifact cleanup tasks.
func (t CleanupArtifactTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_artifact",
		MaxAttempts: 5,
		Backoff:     2 * time.Minute,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupArtifactProcessor creates a processor function for
// CleanupArtifactTask. A file already gone counts as success.
func CleanupArtifactProcessor(deleter ArtifactDeleter, exists func(string) bool) backlite.QueueProcessor[CleanupArtifactTask] {
	return func(ctx context.Context, task CleanupArtifactTask) error {
		if deleter == nil {
			return fmt.Errorf("artifact deleter not configured")
		}
		if exists != nil && !exists(task.Path) {
			return nil
		}
		if err := deleter.Delete(task.Path); err != nil {
			return fmt.Errorf("cleanup artifact %s: %w", task.Path, err)
		}
		log.Printf("[TASK] Deleted orphaned artifact %s", task.Path)
		return nil
	}
}

// NewCleanupArtifactQueue creates a backlite queue for artifact cleanup.
func NewCleanupArtifactQueue(deleter ArtifactDeleter, exists func(string) bool) backlite.Queue {
	return backlite.NewQueue(CleanupArtifactProcessor(deleter, exists))
}
