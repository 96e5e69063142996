package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/torgpult/catalog-service/internal/database"
	"github.com/torgpult/catalog-service/internal/pipeline"
	"github.com/torgpult/catalog-service/internal/reconcile"
	"github.com/torgpult/catalog-service/internal/storage"
)

var (
	syncDir   string
	syncForce bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import all XML feeds from the upload directory",
	Long: `Scan the upload directory for *.xml feed files and import each one.
Files whose content is unchanged since the last run are skipped unless
--force is given. Successfully processed files are moved to the archive
directory when one is configured.`,
	Example: `  catalog-service sync
  catalog-service sync --dir ./data/uploads
  catalog-service sync --force`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVar(&syncDir, "dir", "", "Upload directory (defaults to importer.upload_dir from config)")
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "Reprocess files even when unchanged")
}

func runSync(cmd *cobra.Command, args []string) error {
	dir := syncDir
	if dir == "" {
		dir = cfg.Importer.UploadDir
	}

	var archive *storage.LocalStorage
	if cfg.Importer.ArchivePath != "" {
		var err error
		archive, err = storage.NewLocalStorage(cfg.Importer.ArchivePath)
		if err != nil {
			return fmt.Errorf("failed to initialize archive storage: %w", err)
		}
	}

	products := database.NewProductRepo(database.Pool())
	importLog := database.NewImportLog(database.Pool())

	importer := &pipeline.Importer{
		Reconciler: reconcile.New(products, *logger, reconcile.WithBatchSize(cfg.Importer.BatchSize)),
		Log:        importLog,
		Archive:    archive,
		Logger:     *logger,
		Force:      syncForce,
	}

	summary, err := importer.Run(cmd.Context(), dir)
	if err != nil {
		return err
	}

	fmt.Printf("\nSync Results (run %s)\n", summary.RunID)
	fmt.Println(strings.Repeat("-", 60))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Metric\tValue\n")
	fmt.Fprintf(w, "------\t-----\n")
	fmt.Fprintf(w, "Processed Files\t%d\n", summary.ProcessedFiles)
	fmt.Fprintf(w, "Skipped Files\t%d\n", summary.SkippedFiles)
	fmt.Fprintf(w, "Failed Files\t%d\n", summary.FailedFiles)
	fmt.Fprintf(w, "Offers Reconciled\t%d\n", summary.TotalOffers)
	fmt.Fprintf(w, "Duration\t%s\n", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))
	w.Flush()

	if len(summary.Errors) > 0 {
		fmt.Printf("\nErrors:\n")
		fmt.Println(strings.Repeat("-", 60))
		for _, msg := range summary.Errors {
			fmt.Printf("  - %s\n", msg)
		}
	}

	return nil
}
