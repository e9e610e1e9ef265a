package config

// StorageConfig defines configuration for saved comparisons
type StorageConfig struct {
	SQLiteDBPath        string `json:"sqlite_db_path,omitempty" yaml:"sqlite_db_path,omitempty" validate:"required"`
	MaxSavedComparisons int    `json:"max_saved_comparisons,omitempty" yaml:"max_saved_comparisons,omitempty" validate:"min=1"`
	ParquetExportDir    string `json:"parquet_export_dir,omitempty" yaml:"parquet_export_dir,omitempty"`
	CompressionCodec    string `json:"compression_codec,omitempty" yaml:"compression_codec,omitempty" validate:"omitempty,oneof=zstd snappy gzip none"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		SQLiteDBPath:        DefaultStorageSQLiteDBPath,
		MaxSavedComparisons: DefaultStorageMaxSavedComparisons,
		ParquetExportDir:    DefaultStorageParquetExportDir,
		CompressionCodec:    DefaultStorageCompressionCodec,
	}
}
