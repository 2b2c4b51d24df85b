package storage

import "context"

// Resource types understood by the object store.
const (
	ResourceImage = "image"
	ResourceRaw   = "raw"
	ResourceAuto  = "auto"
)

// StorageService defines the object storage operations the bot needs.
type StorageService interface {
	// Upload stores source (a local path or remote URL) under folder and returns its secure URL.
	Upload(ctx context.Context, source, folder, resourceType string) (string, error)
	// DeleteByPrefix removes every asset whose public id starts with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// ProjectFolder is the folder holding a project's photos and description.
func ProjectFolder(projectName string) string {
	return "projects/" + projectName
}
