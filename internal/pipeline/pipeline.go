// Package pipeline ties the feed delivery and import stages together:
// fetch the vendor feed to its local path, then run one import batch.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/scanera/product-service/internal/importer"
)

// Fetcher delivers the raw feed to a local path before the import runs.
// A fetch failure is reported to the caller and the import is not
// invoked.
type Fetcher interface {
	Download(ctx context.Context, remotePath, localPath string) error
}

// Pipeline runs the fetch + import sequence for the configured feed.
type Pipeline struct {
	fetcher    Fetcher
	importer   *importer.Importer
	remotePath string
	localPath  string
	logger     zerolog.Logger
}

// New creates a Pipeline. fetcher may be nil, in which case Run imports
// whatever file is already present at localPath.
func New(fetcher Fetcher, imp *importer.Importer, remotePath, localPath string, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		importer:   imp,
		remotePath: remotePath,
		localPath:  localPath,
		logger:     logger,
	}
}

// Run downloads the feed (unless no fetcher is configured) and imports
// it as one batch.
func (p *Pipeline) Run(ctx context.Context) (importer.Summary, error) {
	if p.fetcher != nil {
		if err := p.fetcher.Download(ctx, p.remotePath, p.localPath); err != nil {
			return importer.Summary{}, fmt.Errorf("fetch feed: %w", err)
		}
	} else {
		p.logger.Debug().Str("path", p.localPath).Msg("No fetcher configured, importing local feed file")
	}

	return p.importer.ImportBatch(ctx, p.localPath)
}
