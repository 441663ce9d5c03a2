package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"eu_records/config"
	"eu_records/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:    "test",
		NumericPolicy:  "strict",
		MaxExportCount: 500,
		Seed:           17,
	}
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set("config", testConfig())

	return e, c, rec
}

// setupStorage points the global storage at a temp dir for the duration of the test
func setupStorage(t *testing.T) *services.LocalStorage {
	t.Helper()
	prev := services.Storage
	storage := services.NewLocalStorage(t.TempDir())
	services.Storage = storage
	t.Cleanup(func() { services.Storage = prev })
	return storage
}

// multipartWorkbook wraps workbook bytes in a multipart body under the "file" field
func multipartWorkbook(t *testing.T, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", "records.xlsx")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}
