package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/torgpult/catalog-service/internal/database"
)

// RunLog is the audit-trail surface the importer needs.
// *database.ImportLog implements it.
type RunLog interface {
	LatestByFilename(ctx context.Context, filename string) (*database.ImportFileRecord, error)
	RecordSuccess(ctx context.Context, filename, fileHash string, lastModified time.Time, productsCount int) error
	RecordFailure(ctx context.Context, filename, fileHash string, lastModified time.Time, errMsg string) error
}

// Fingerprint computes the content hash used to detect unchanged files.
// Byte-identical files always fingerprint identically, which is what makes
// re-runs idempotent.
func Fingerprint(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}

// ShouldProcess reports whether a file needs (re)processing: true unless
// the newest log record for this filename carries the same fingerprint.
func ShouldProcess(ctx context.Context, log RunLog, filename, fingerprint string) (bool, error) {
	last, err := log.LatestByFilename(ctx, filename)
	if err != nil {
		return false, err
	}
	if last != nil && last.FileHash == fingerprint {
		return false, nil
	}
	return true, nil
}
