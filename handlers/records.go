package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"

	"eu_records/config"
	"eu_records/models"
	"eu_records/services"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
)

const (
	// MaxUploadSize caps imported workbooks
	MaxUploadSize = 20 * 1024 * 1024 // 20MB
	// DefaultExportCount is used when the count query param is absent
	DefaultExportCount = 100
)

// textPolicy strips any markup from free-text cells before they are echoed back
var textPolicy = bluemonday.StrictPolicy()

// RecordsResponse is the JSON body for parsed workbooks
type RecordsResponse struct {
	Total   int             `json:"total"`
	Records []models.Record `json:"records"`
}

// SnapshotResponse describes a stored workbook
type SnapshotResponse struct {
	Key   string `json:"key"`
	URL   string `json:"url"`
	Count int    `json:"count"`
	Size  int64  `json:"size"`
}

// HealthHandler reports liveness
func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ExportRecordsHandler generates records and serves them as an xlsx download
func ExportRecordsHandler(c echo.Context) error {
	cfg := getConfig(c)

	count, err := parseCount(c, cfg)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	records := newGenerator(cfg).Generate(count)

	var buf bytes.Buffer
	if err := services.WriteRecordsTo(&buf, records); err != nil {
		c.Logger().Errorf("Failed to write export workbook: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate workbook")
	}

	filename := fmt.Sprintf("records_%d.xlsx", count)
	c.Response().Header().Set("Content-Disposition", "attachment; filename="+filename)
	return c.Blob(http.StatusOK, services.XLSXContentType, buf.Bytes())
}

// ImportRecordsHandler parses an uploaded workbook and returns its records
func ImportRecordsHandler(c echo.Context) error {
	cfg := getConfig(c)

	opts, err := readOptions(c, cfg)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	limit, err := parseLimit(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No file uploaded"})
	}
	if file.Size > MaxUploadSize {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "File exceeds maximum allowed size of 20MB"})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to open file"})
	}
	defer src.Close()

	records, err := services.ReadRecordsFrom(src, opts)
	if err != nil {
		return readErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, buildRecordsResponse(records, limit))
}

// CreateSnapshotHandler generates records and keeps the workbook in storage
func CreateSnapshotHandler(c echo.Context) error {
	cfg := getConfig(c)
	if services.Storage == nil || !services.Storage.IsConfigured() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Storage is not configured")
	}

	count, err := parseCount(c, cfg)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	records := newGenerator(cfg).Generate(count)
	result, err := services.StoreSnapshot(c.Request().Context(), services.Storage, records)
	if err != nil {
		c.Logger().Errorf("Failed to store snapshot: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store snapshot")
	}

	return c.JSON(http.StatusCreated, SnapshotResponse{
		Key:   result.Key,
		URL:   result.URL,
		Count: len(records),
		Size:  result.FileSize,
	})
}

// GetSnapshotHandler reads a stored workbook back as JSON
func GetSnapshotHandler(c echo.Context) error {
	cfg := getConfig(c)
	if services.Storage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Storage is not configured")
	}

	opts, err := readOptions(c, cfg)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	limit, err := parseLimit(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	key := c.Param("*")
	if key == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing snapshot key"})
	}

	records, err := services.LoadSnapshot(c.Request().Context(), services.Storage, key, opts)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Snapshot not found"})
		}
		return readErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, buildRecordsResponse(records, limit))
}

// DeleteSnapshotHandler removes a stored workbook
func DeleteSnapshotHandler(c echo.Context) error {
	if services.Storage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Storage is not configured")
	}

	key := c.Param("*")
	if key == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing snapshot key"})
	}

	if err := services.DeleteSnapshot(c.Request().Context(), services.Storage, key); err != nil {
		c.Logger().Errorf("Failed to delete snapshot %s: %v", key, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete snapshot")
	}

	return c.NoContent(http.StatusNoContent)
}

func readErrorResponse(c echo.Context, err error) error {
	var rerr *services.ReadError
	if !errors.As(err, &rerr) {
		c.Logger().Errorf("Unexpected read failure: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to read workbook"})
	}

	if rerr.Kind == services.ReadErrCodec {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid workbook",
			"kind":  rerr.Kind.String(),
		})
	}

	return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
		"error":  rerr.Error(),
		"kind":   rerr.Kind.String(),
		"sheet":  rerr.Sheet,
		"row":    rerr.Row,
		"column": rerr.Column,
		"raw":    textPolicy.Sanitize(rerr.Raw),
	})
}

func buildRecordsResponse(records []models.Record, limit int) RecordsResponse {
	shown := records
	if limit > 0 && limit < len(records) {
		shown = records[:limit]
	}

	out := make([]models.Record, len(shown))
	for i, rec := range shown {
		rec.Region = textPolicy.Sanitize(rec.Region)
		rec.Municipality = textPolicy.Sanitize(rec.Municipality)
		rec.Company = textPolicy.Sanitize(rec.Company)
		rec.Phone = textPolicy.Sanitize(rec.Phone)
		rec.Contact = textPolicy.Sanitize(rec.Contact)
		out[i] = rec
	}

	return RecordsResponse{Total: len(records), Records: out}
}

func newGenerator(cfg *config.Config) *services.RecordGenerator {
	return services.NewRecordGenerator(services.NewFakeTextProvider(cfg.Seed), cfg.Seed)
}

func getConfig(c echo.Context) *config.Config {
	if cfg, ok := c.Get("config").(*config.Config); ok && cfg != nil {
		return cfg
	}
	return &config.Config{MaxExportCount: config.DefaultMaxExportCount, NumericPolicy: "strict"}
}

func parseCount(c echo.Context, cfg *config.Config) (int, error) {
	raw := c.QueryParam("count")
	if raw == "" {
		return DefaultExportCount, nil
	}
	count, err := strconv.Atoi(raw)
	if err != nil || count < 0 {
		return 0, fmt.Errorf("count must be a non-negative integer")
	}
	if count > cfg.MaxExportCount {
		return 0, fmt.Errorf("count must not exceed %d", cfg.MaxExportCount)
	}
	return count, nil
}

func parseLimit(c echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer")
	}
	return limit, nil
}

func readOptions(c echo.Context, cfg *config.Config) (services.ReadOptions, error) {
	policy := c.QueryParam("policy")
	if policy == "" {
		policy = cfg.NumericPolicy
	}
	numeric, err := services.ParseNumericPolicy(policy)
	if err != nil {
		return services.ReadOptions{}, err
	}
	return services.ReadOptions{Numeric: numeric}, nil
}
