package datastore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/config"
	"github.com/MeiTetsuH/diffchecker/internal/models"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

const archiveReadBatchSize = 64

// archiveRecord is the on-disk shape of a saved comparison inside a Parquet archive.
type archiveRecord struct {
	ID          string `parquet:"id"`
	Name        string `parquet:"name"`
	Kind        string `parquet:"kind"`
	LeftLabel   string `parquet:"left_label"`
	RightLabel  string `parquet:"right_label"`
	Payload     []byte `parquet:"payload"`
	CreatedAtMs int64  `parquet:"created_at_ms"`
	UpdatedAtMs int64  `parquet:"updated_at_ms"`
}

func toArchiveRecord(rec models.SavedComparison) archiveRecord {
	return archiveRecord{
		ID:          rec.ID,
		Name:        rec.Name,
		Kind:        string(rec.Kind),
		LeftLabel:   rec.LeftLabel,
		RightLabel:  rec.RightLabel,
		Payload:     []byte(rec.Payload),
		CreatedAtMs: rec.CreatedAt.UnixMilli(),
		UpdatedAtMs: rec.UpdatedAt.UnixMilli(),
	}
}

func (r archiveRecord) toModel() models.SavedComparison {
	rec := models.SavedComparison{
		ID:         r.ID,
		Name:       r.Name,
		Kind:       models.ComparisonKind(r.Kind),
		LeftLabel:  r.LeftLabel,
		RightLabel: r.RightLabel,
		CreatedAt:  time.UnixMilli(r.CreatedAtMs).UTC(),
		UpdatedAt:  time.UnixMilli(r.UpdatedAtMs).UTC(),
	}
	if len(r.Payload) > 0 {
		rec.Payload = append([]byte(nil), r.Payload...)
	}
	return rec
}

// ArchiveStore exports and imports saved comparisons as Parquet files.
type ArchiveStore struct {
	storageConfig config.StorageConfig
	logger        zerolog.Logger
	fileManager   *common.FileManager
	now           func() time.Time
}

// NewArchiveStore creates an ArchiveStore writing under cfg.ParquetExportDir.
func NewArchiveStore(cfg config.StorageConfig, logger zerolog.Logger) *ArchiveStore {
	return &ArchiveStore{
		storageConfig: cfg,
		logger:        logger.With().Str("component", "ArchiveStore").Logger(),
		fileManager:   common.NewFileManager(logger),
		now:           time.Now,
	}
}

// compressionOption maps the configured codec name to a writer option.
func (as *ArchiveStore) compressionOption() parquet.WriterOption {
	switch strings.ToLower(as.storageConfig.CompressionCodec) {
	case "snappy":
		return parquet.Compression(&parquet.Snappy)
	case "gzip":
		return parquet.Compression(&parquet.Gzip)
	case "zstd":
		return parquet.Compression(&parquet.Zstd)
	case "none", "uncompressed", "":
		return parquet.Compression(&parquet.Uncompressed)
	default:
		as.logger.Warn().Str("codec", as.storageConfig.CompressionCodec).Msg("Unsupported compression codec string, defaulting to Uncompressed")
		return parquet.Compression(&parquet.Uncompressed)
	}
}

// WriteTo encodes records as a Parquet stream.
func (as *ArchiveStore) WriteTo(w io.Writer, records []models.SavedComparison) error {
	rows := make([]archiveRecord, 0, len(records))
	for _, rec := range records {
		rows = append(rows, toArchiveRecord(rec))
	}

	writer := parquet.NewGenericWriter[archiveRecord](w, as.compressionOption())
	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			_ = writer.Close()
			as.logger.Error().Err(err).Int("records", len(rows)).Msg("Failed to write archive rows")
			return fmt.Errorf("writing archive rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		as.logger.Error().Err(err).Msg("Failed to close Parquet writer")
		return fmt.Errorf("closing Parquet writer: %w", err)
	}
	return nil
}

// Export writes records to path, or to a timestamped file in the export directory when path is empty.
func (as *ArchiveStore) Export(ctx context.Context, records []models.SavedComparison, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if path == "" {
		if as.storageConfig.ParquetExportDir == "" {
			return "", common.NewValidationError("parquet_export_dir", "", "export directory is not configured")
		}
		fileName := fmt.Sprintf("comparisons-%s.parquet", as.now().UTC().Format("20060102-150405"))
		path = filepath.Join(as.storageConfig.ParquetExportDir, fileName)
	}

	var buf bytes.Buffer
	if err := as.WriteTo(&buf, records); err != nil {
		return "", err
	}
	if err := as.fileManager.WriteFile(path, buf.Bytes(), common.DefaultFileWriteOptions()); err != nil {
		as.logger.Error().Err(err).Str("path", path).Msg("Failed to write archive file")
		return "", err
	}

	as.logger.Info().Str("path", path).Int("records", len(records)).Msg("Exported comparisons archive")
	return path, nil
}

// ReadFrom decodes a Parquet archive held in r.
func (as *ArchiveStore) ReadFrom(r io.ReaderAt, size int64) (records []models.SavedComparison, err error) {
	// parquet-go panics on some malformed footers instead of returning an error.
	defer func() {
		if p := recover(); p != nil {
			records = nil
			err = common.NewUnparseableFileError("archive", fmt.Errorf("%v", p))
		}
	}()

	file, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, common.NewUnparseableFileError("archive", err)
	}

	reader := parquet.NewGenericReader[archiveRecord](file)
	defer reader.Close()

	records = make([]models.SavedComparison, 0, reader.NumRows())
	batch := make([]archiveRecord, archiveReadBatchSize)
	for {
		n, readErr := reader.Read(batch)
		for _, row := range batch[:n] {
			records = append(records, row.toModel())
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			as.logger.Error().Err(readErr).Msg("Failed to read archive rows")
			return nil, common.NewUnparseableFileError("archive", readErr)
		}
		if n == 0 {
			break
		}
	}
	return records, nil
}

// Load reads an archive file written by Export.
func (as *ArchiveStore) Load(ctx context.Context, path string) ([]models.SavedComparison, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.WrapErrorf(common.ErrNotFound, "archive %s", path)
		}
		return nil, fmt.Errorf("opening archive '%s': %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			as.logger.Error().Err(cerr).Str("path", path).Msg("Failed to close archive file")
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive '%s': %w", path, err)
	}

	records, err := as.ReadFrom(file, stat.Size())
	if err != nil {
		return nil, err
	}
	as.logger.Info().Str("path", path).Int("records", len(records)).Msg("Loaded comparisons archive")
	return records, nil
}
