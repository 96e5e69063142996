package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/torgpult/catalog-service/internal/database"
	"github.com/torgpult/catalog-service/internal/pipeline"
	"github.com/torgpult/catalog-service/internal/types"
)

// SyncHandler exposes the import pipeline over HTTP. A weighted semaphore
// of one keeps concurrent sync triggers from racing on the upload
// directory.
type SyncHandler struct {
	Importer  *pipeline.Importer
	ImportLog *database.ImportLog
	UploadDir string
	Logger    zerolog.Logger

	running *semaphore.Weighted
}

// NewSyncHandler wires the import pipeline into HTTP handlers.
func NewSyncHandler(importer *pipeline.Importer, importLog *database.ImportLog, uploadDir string, logger zerolog.Logger) *SyncHandler {
	return &SyncHandler{
		Importer:  importer,
		ImportLog: importLog,
		UploadDir: uploadDir,
		Logger:    logger,
		running:   semaphore.NewWeighted(1),
	}
}

// TriggerSyncResponse acknowledges an accepted sync run.
type TriggerSyncResponse struct {
	Status    string `json:"status"`
	UploadDir string `json:"uploadDir"`
}

// TriggerSync starts a directory sync in the background and returns 202.
// If a run is already in flight the request is rejected with 409 rather
// than queued, since the next run would see the same files anyway.
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	force := c.Query("force") == "true"

	if !h.running.TryAcquire(1) {
		c.JSON(http.StatusConflict, gin.H{"error": "sync already in progress"})
		return
	}

	go func() {
		defer h.running.Release(1)

		// detached from the request: the caller got its 202 already
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		imp := *h.Importer
		imp.Force = force
		summary, err := imp.Run(ctx, h.UploadDir)
		if err != nil {
			h.Logger.Error().Err(err).Msg("Background sync failed")
			return
		}
		h.Logger.Info().
			Str("run_id", summary.RunID).
			Int("processed", summary.ProcessedFiles).
			Int("skipped", summary.SkippedFiles).
			Int("failed", summary.FailedFiles).
			Msg("Background sync finished")
	}()

	c.JSON(http.StatusAccepted, TriggerSyncResponse{
		Status:    "accepted",
		UploadDir: h.UploadDir,
	})
}

// ImportRunRecord is the wire form of one import log row.
type ImportRunRecord struct {
	ID            int64           `json:"id"`
	Filename      string          `json:"filename"`
	FileHash      string          `json:"fileHash"`
	LastModified  *time.Time      `json:"lastModified"`
	ProductsCount int             `json:"productsCount"`
	Status        types.RunStatus `json:"status"`
	ErrorMessage  *string         `json:"errorMessage,omitempty"`
	ProcessedAt   time.Time       `json:"processedAt"`
}

// ListImportRunsResponse lists recent import log records.
type ListImportRunsResponse struct {
	Runs []ImportRunRecord `json:"runs"`
}

// ListImportRuns returns the newest import log records, newest first.
func (h *SyncHandler) ListImportRuns(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 500"})
			return
		}
		limit = parsed
	}

	records, err := h.ImportLog.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.Logger.Error().Err(err).Msg("Failed to list import runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list import runs"})
		return
	}

	runs := make([]ImportRunRecord, 0, len(records))
	for _, rec := range records {
		runs = append(runs, toRunRecord(rec))
	}
	c.JSON(http.StatusOK, ListImportRunsResponse{Runs: runs})
}

// GetFileStatus returns the newest import record for one filename.
func (h *SyncHandler) GetFileStatus(c *gin.Context) {
	filename := c.Param("filename")
	if filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename is required"})
		return
	}

	rec, err := h.ImportLog.LatestByFilename(c.Request.Context(), filename)
	if err != nil {
		h.Logger.Error().Err(err).Str("file", filename).Msg("Failed to query import log")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query import log"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file has never been imported"})
		return
	}

	c.JSON(http.StatusOK, toRunRecord(*rec))
}

func toRunRecord(rec database.ImportFileRecord) ImportRunRecord {
	return ImportRunRecord{
		ID:            rec.ID,
		Filename:      rec.Filename,
		FileHash:      rec.FileHash,
		LastModified:  rec.LastModified,
		ProductsCount: rec.ProductsCount,
		Status:        rec.Status,
		ErrorMessage:  rec.ErrorMessage,
		ProcessedAt:   rec.ProcessedAt,
	}
}
