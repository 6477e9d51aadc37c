package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scanera/product-service/internal/database"
	"github.com/scanera/product-service/internal/fetcher"
	"github.com/scanera/product-service/internal/importer"
	"github.com/scanera/product-service/internal/pipeline"
)

var (
	syncRemotePath   string
	syncLocalPath    string
	syncSkipDownload bool
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download the vendor feed and merge it into the database",
	Long: `Download the product feed from the vendor's SFTP host and import it as one
batch: every valid record is created or updated keyed by barcode, records with
missing fields or unparseable prices are skipped and logged.

Use --skip-download to import an already-downloaded feed file.`,
	Example: `  product-service sync
  product-service sync --remote-path /outbound/productos.xml --local-path ./data/productos.xml
  product-service sync --skip-download`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVar(&syncRemotePath, "remote-path", "", "Remote path to the XML feed on the SFTP server (defaults to config)")
	syncCmd.Flags().StringVar(&syncLocalPath, "local-path", "", "Local path where the XML file is stored (defaults to config)")
	syncCmd.Flags().BoolVar(&syncSkipDownload, "skip-download", false, "Skip SFTP download and just import the existing XML file")
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	remotePath := cfg.Feed.RemotePath
	if syncRemotePath != "" {
		remotePath = syncRemotePath
	}
	localPath := cfg.Feed.LocalPath
	if syncLocalPath != "" {
		localPath = syncLocalPath
	}

	var feedFetcher pipeline.Fetcher
	if !syncSkipDownload {
		if cfg.SFTP.Host == "" {
			return fmt.Errorf("SFTP_HOST not set; use --skip-download to import a local file")
		}
		feedFetcher = fetcher.NewSFTPClient(fetcher.Config{
			Host:     cfg.SFTP.Host,
			Port:     cfg.SFTP.Port,
			User:     cfg.SFTP.User,
			Password: cfg.SFTP.Password,
			KeyPath:  cfg.SFTP.KeyPath,
		}, logger)
	}

	products := database.NewProductRepository(database.Pool())
	runs := database.NewImportRunRepository(database.Pool())
	imp := importer.New(products, runs, logger)

	summary, err := pipeline.New(feedFetcher, imp, remotePath, localPath, logger).Run(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Printf("Sync completed. Created: %d, Updated: %d, Skipped: %d.\n",
		summary.Created, summary.Updated, summary.Skipped)
	return nil
}
