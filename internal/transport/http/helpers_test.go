package http

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	apierrors "stockpulse/internal/errors"
	"stockpulse/internal/middleware"
	"stockpulse/internal/shared/testutil"
)

type formFile struct {
	field   string
	name    string
	content string
}

// newUploadRequest builds a multipart POST with the given files and fields
func newUploadRequest(t *testing.T, target string, files []formFile, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// sampleFiles is the fixture inventory with both dictionaries
func sampleFiles() []formFile {
	return []formFile{
		{field: fieldFile, name: "stock.csv", content: testutil.SampleInventoryCSV},
		{field: fieldProducts, name: "products.csv", content: testutil.SampleProductsCSV},
		{field: fieldSizes, name: "sizes.csv", content: testutil.SampleSizesCSV},
	}
}

type testDeps struct {
	errorHandler *apierrors.ErrorHandler
	validator    *middleware.Validator
	logs         *testutil.BufferedSlogHandler
}

func newTestDeps(t *testing.T) testDeps {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	return testDeps{
		errorHandler: apierrors.NewErrorHandler(logger, false),
		validator:    middleware.NewValidator(logger),
		logs:         logs,
	}
}

// serve runs req through router mounted at prefix with request IDs enabled
func serve(prefix string, routes chi.Router, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Mount(prefix, routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
