package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"eu_records/models"

	"github.com/labstack/gommon/log"
)

const snapshotURLExpiry = time.Hour

// StoreSnapshot serializes records into a workbook and uploads it under a fresh key
func StoreSnapshot(ctx context.Context, storage StorageProvider, records []models.Record) (*StorageResult, error) {
	var buf bytes.Buffer
	if err := WriteRecordsTo(&buf, records); err != nil {
		return nil, err
	}

	key := GenerateWorkbookKey()
	result, err := storage.UploadReader(ctx, bytes.NewReader(buf.Bytes()), key, XLSXContentType, int64(buf.Len()))
	if err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}
	fillSnapshotURL(ctx, storage, result)

	log.Debugf("Stored snapshot of %d records at %s", len(records), key)
	return result, nil
}

// StoreWorkbookFile uploads an already written workbook under a fresh key
func StoreWorkbookFile(ctx context.Context, storage StorageProvider, path string) (*StorageResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat workbook: %w", err)
	}

	result, err := storage.UploadReader(ctx, file, GenerateWorkbookKey(), XLSXContentType, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to store workbook: %w", err)
	}
	fillSnapshotURL(ctx, storage, result)
	return result, nil
}

// LoadSnapshot reads every record from a stored workbook
func LoadSnapshot(ctx context.Context, storage StorageProvider, key string, opts ReadOptions) ([]models.Record, error) {
	body, _, err := storage.Get(ctx, key)
	if err != nil {
		return nil, &ReadError{Kind: ReadErrCodec, Err: err}
	}
	defer body.Close()

	return ReadRecordsFrom(body, opts)
}

// DeleteSnapshot removes a stored workbook. Missing keys are not an error.
func DeleteSnapshot(ctx context.Context, storage StorageProvider, key string) error {
	if err := storage.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	log.Debugf("Deleted snapshot %s", key)
	return nil
}

func fillSnapshotURL(ctx context.Context, storage StorageProvider, result *StorageResult) {
	if result.URL != "" {
		return
	}
	url, err := storage.GetSignedURL(ctx, result.Key, snapshotURLExpiry)
	if err != nil {
		log.Warnf("Failed to sign URL for %s: %v", result.Key, err)
		return
	}
	result.URL = url
}
