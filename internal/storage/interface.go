// Package storage archives processed feed files so every import run can
// be replayed or audited later.
package storage

import (
	"context"
	"time"
)

// Metadata describes an archived feed file.
type Metadata struct {
	OriginalName string    `json:"originalName"`
	SourcePath   string    `json:"sourcePath"`
	FileHash     string    `json:"fileHash"`
	ArchivedAt   time.Time `json:"archivedAt"`
}

// Storage is the archive backend interface.
type Storage interface {
	Put(ctx context.Context, key string, content []byte, metadata *Metadata) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
}
