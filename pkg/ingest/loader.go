package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dtnitsch/procurement-nlq/pkg/mongostore"
)

const (
	// DefaultMaxRows caps how much of the CSV is loaded. The full export is
	// far larger than the free Atlas tier can hold.
	DefaultMaxRows = 200000

	// DefaultBatchSize is the insert batch size. Keeps memory flat on large loads.
	DefaultBatchSize = 10000

	// quotaWarnMB leaves headroom below the 512MB Atlas quota for indexes.
	quotaWarnMB = 450
)

// Loader streams the CSV into the procurement collection.
type Loader struct {
	store     *mongostore.Store
	logger    *slog.Logger
	maxRows   int
	batchSize int
}

// NewLoader builds a Loader. Zero maxRows/batchSize fall back to the defaults.
func NewLoader(store *mongostore.Store, logger *slog.Logger, maxRows, batchSize int) *Loader {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Loader{store: store, logger: logger, maxRows: maxRows, batchSize: batchSize}
}

// Load drops the existing collection, streams the CSV in, and creates indexes.
// Returns the number of documents inserted.
func (l *Loader) Load(ctx context.Context, csvPath string) (int, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer file.Close()

	// Reload from scratch every time so stale documents never linger.
	if err := l.store.Drop(ctx); err != nil {
		return 0, err
	}
	l.logger.Info("dropped existing collection")

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // the export has the odd ragged row

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	l.logger.Info("reading CSV", "path", csvPath, "max_rows", l.maxRows)

	batch := make([]any, 0, l.batchSize)
	inserted := 0

	for inserted+len(batch) < l.maxRows {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return inserted, fmt.Errorf("failed to read CSV row: %w", err)
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}

		batch = append(batch, TransformRow(row))
		if len(batch) >= l.batchSize {
			if err := l.store.InsertBatch(ctx, batch); err != nil {
				return inserted, err
			}
			inserted += len(batch)
			l.logger.Info("inserted batch", "documents", len(batch), "total", inserted)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := l.store.InsertBatch(ctx, batch); err != nil {
			return inserted, err
		}
		inserted += len(batch)
		l.logger.Info("inserted batch", "documents", len(batch), "total", inserted)
	}

	sizeMB, err := l.store.SizeMB(ctx)
	if err != nil {
		return inserted, err
	}
	l.logger.Info("collection size", "size_mb", fmt.Sprintf("%.2f", sizeMB))
	if sizeMB > quotaWarnMB {
		l.logger.Warn("collection size approaching quota", "size_mb", fmt.Sprintf("%.2f", sizeMB))
	}

	l.logger.Info("creating indexes")
	if err := l.store.EnsureIndexes(ctx); err != nil {
		return inserted, err
	}

	l.logger.Info("data loading complete", "documents", inserted)
	return inserted, nil
}
