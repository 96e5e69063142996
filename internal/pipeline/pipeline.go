// Package pipeline drives catalog synchronization: it scans the upload
// directory for feed files, skips the ones whose content fingerprint is
// unchanged since the last run, and pushes the rest through extraction
// and reconciliation, recording every attempt in the import log.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/torgpult/catalog-service/internal/metrics"
	"github.com/torgpult/catalog-service/internal/parsers/feed"
	"github.com/torgpult/catalog-service/internal/reconcile"
	"github.com/torgpult/catalog-service/internal/storage"
	"github.com/torgpult/catalog-service/internal/types"
)

const tracerName = "catalog-service/pipeline"

// Importer runs directory sync passes. Archive is optional: when set,
// successfully processed files are moved into archive storage the way
// the FTP drop directory is cleaned up in production.
type Importer struct {
	Reconciler *reconcile.Reconciler
	Log        RunLog
	Archive    *storage.LocalStorage
	Logger     zerolog.Logger

	// Force reprocesses files even when their fingerprint is unchanged.
	Force bool
}

// Run processes every *.xml file in dir sequentially. Per-file failures
// are recorded and the run continues; only a missing directory fails the
// run as a whole.
func (imp *Importer) Run(ctx context.Context, dir string) (*types.ImportSummary, error) {
	summary := &types.ImportSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	logger := imp.Logger.With().Str("run_id", summary.RunID).Logger()

	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("upload directory %s is not accessible: %w", dir, err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.xml"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	sort.Strings(files)

	logger.Info().Str("dir", dir).Int("files", len(files)).Msg("Starting catalog sync")
	timer := time.Now()

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		outcome, count, err := imp.processFile(ctx, path)
		switch outcome {
		case fileSkipped:
			summary.SkippedFiles++
			metrics.FilesProcessed.WithLabelValues("skipped").Inc()
		case fileProcessed:
			summary.ProcessedFiles++
			summary.TotalOffers += count
			metrics.FilesProcessed.WithLabelValues("success").Inc()
		case fileFailed:
			summary.FailedFiles++
			summary.Errors = append(summary.Errors, err.Error())
			metrics.FilesProcessed.WithLabelValues("error").Inc()
			logger.Error().Err(err).Str("file", filepath.Base(path)).Msg("File processing failed")
		}
	}

	summary.FinishedAt = time.Now()
	metrics.ImportDuration.Observe(time.Since(timer).Seconds())

	logger.Info().
		Int("processed", summary.ProcessedFiles).
		Int("skipped", summary.SkippedFiles).
		Int("failed", summary.FailedFiles).
		Int("offers", summary.TotalOffers).
		Msg("Catalog sync complete")

	return summary, nil
}

type fileOutcome int

const (
	fileProcessed fileOutcome = iota
	fileSkipped
	fileFailed
)

// processFile handles one feed file end to end. The returned error is
// non-nil only for the fileFailed outcome and has already been written to
// the import log.
func (imp *Importer) processFile(ctx context.Context, path string) (fileOutcome, int, error) {
	filename := filepath.Base(path)
	logger := imp.Logger.With().Str("file", filename).Logger()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "pipeline.processFile",
		trace.WithAttributes(attribute.String("feed.file", filename)))
	defer span.End()

	var modTime time.Time
	if stat, err := os.Stat(path); err == nil {
		modTime = stat.ModTime()
	}

	content, err := os.ReadFile(path)
	if err != nil {
		readErr := fmt.Errorf("failed to read %s: %w", filename, err)
		imp.recordFailure(ctx, filename, "", modTime, readErr)
		return fileFailed, 0, readErr
	}

	fingerprint := Fingerprint(content)
	span.SetAttributes(attribute.String("feed.fingerprint", fingerprint))

	if !imp.Force {
		process, err := ShouldProcess(ctx, imp.Log, filename, fingerprint)
		if err != nil {
			checkErr := fmt.Errorf("failed to check import log for %s: %w", filename, err)
			return fileFailed, 0, checkErr
		}
		if !process {
			logger.Info().Msg("File unchanged, skipping")
			return fileSkipped, 0, nil
		}
	}

	result, err := feed.Parse(content, filename)
	if err != nil {
		imp.recordFailure(ctx, filename, fingerprint, modTime, err)
		return fileFailed, 0, err
	}

	if len(result.Errors) > 0 {
		logger.Warn().Int("count", len(result.Errors)).Msg("Some offers could not be extracted")
		metrics.OffersFailed.Add(float64(len(result.Errors)))
	}

	recResult, err := imp.Reconciler.Reconcile(ctx, result.Offers, filename)
	if err != nil {
		// cancellation between offers; do not log a completed run
		return fileFailed, 0, err
	}
	metrics.OffersProcessed.Add(float64(recResult.Processed))
	metrics.OffersFailed.Add(float64(recResult.Errors))

	if err := imp.Log.RecordSuccess(ctx, filename, fingerprint, modTime, recResult.Processed); err != nil {
		logger.Warn().Err(err).Msg("Failed to write import log record")
	}

	logger.Info().
		Str("item_tag", result.ItemTag).
		Int("created", recResult.Created).
		Int("updated", recResult.Updated).
		Int("errors", recResult.Errors+len(result.Errors)).
		Msg("File reconciled")

	imp.archiveFile(ctx, path, filename, fingerprint, content, logger)

	return fileProcessed, recResult.Processed, nil
}

// archiveFile moves a processed file out of the upload directory into
// archive storage. Archiving is best effort: a failure here must not fail
// the import that already succeeded.
func (imp *Importer) archiveFile(ctx context.Context, path, filename, fingerprint string, content []byte, logger zerolog.Logger) {
	if imp.Archive == nil {
		return
	}

	now := time.Now()
	key := storage.BuildArchiveKey(now, filename)
	meta := &storage.Metadata{
		OriginalName: filename,
		SourcePath:   path,
		FileHash:     fingerprint,
		ArchivedAt:   now,
	}

	if err := imp.Archive.Put(ctx, key, content, meta); err != nil {
		logger.Warn().Err(err).Msg("Failed to archive processed file")
		return
	}
	if err := os.Remove(path); err != nil {
		logger.Warn().Err(err).Msg("Failed to remove processed file from upload dir")
		return
	}
	logger.Info().Str("key", key).Msg("Archived processed file")
}

// recordFailure writes an error record, folding the log write error into
// a warning since the original failure is the one worth reporting.
func (imp *Importer) recordFailure(ctx context.Context, filename, fingerprint string, modTime time.Time, cause error) {
	msg := cause.Error()
	// keep the audit row readable when the cause chain gets long
	if len(msg) > 500 {
		msg = msg[:500]
	}
	if err := imp.Log.RecordFailure(ctx, filename, fingerprint, modTime, msg); err != nil {
		imp.Logger.Warn().Err(err).Str("file", filename).Msg("Failed to write import log record")
	}
}
