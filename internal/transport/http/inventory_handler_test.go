package http

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apierrors "stockpulse/internal/errors"
	"stockpulse/internal/exporter"
	"stockpulse/internal/inventory"
	"stockpulse/internal/services"
	"stockpulse/internal/shared/testutil"
)

func newTestInventoryHandler(t *testing.T) (*InventoryHandler, testDeps) {
	t.Helper()
	deps := newTestDeps(t)
	logger := slog.New(deps.logs)
	svc := services.NewInventoryService(inventory.DefaultOptions(), nil, nil, nil, nil, logger)
	return NewInventoryHandler(svc, deps.validator, deps.errorHandler, logger), deps
}

func decodeProblem(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &problem))
	return problem
}

func TestInventoryHandler_Ingest(t *testing.T) {
	h, deps := newTestInventoryHandler(t)

	rec := serve("/api/inventory", h.Routes(), newUploadRequest(t, "/api/inventory/ingest", sampleFiles(), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Source   string                   `json:"source"`
		Stores   []map[string]interface{} `json:"stores"`
		Records  []map[string]interface{} `json:"records"`
		Products []map[string]interface{} `json:"products"`
		Options  map[string]interface{}   `json:"options"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "stock.csv", result.Source)
	assert.Len(t, result.Stores, 2)
	assert.Len(t, result.Records, 6)
	require.Len(t, result.Products, 2)
	assert.Equal(t, "Camiseta básica", result.Products[0]["name"])

	testutil.AssertLogContains(t, deps.logs, slog.LevelInfo, "upload ingested")
}

func TestInventoryHandler_IngestBreakdownCSV(t *testing.T) {
	h, _ := newTestInventoryHandler(t)

	req := newUploadRequest(t, "/api/inventory/ingest?format=csv&mode=breakdown", sampleFiles(), nil)
	rec := serve("/api/inventory", h.Routes(), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, contentTypeCSV, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "stock-products.csv")

	body := strings.TrimPrefix(rec.Body.String(), "\ufeff")
	rows, err := csv.NewReader(strings.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, exporter.ProductHeaders, rows[0])
}

func TestInventoryHandler_IngestRecordsCSVFromForm(t *testing.T) {
	h, _ := newTestInventoryHandler(t)

	req := newUploadRequest(t, "/api/inventory/ingest?format=csv&view=records", sampleFiles(), map[string]string{"mode": "grouped"})
	rec := serve("/api/inventory", h.Routes(), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(rec.Body.String(), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 7)
	assert.Equal(t, exporter.RecordHeaders, rows[0])
}

func TestInventoryHandler_IngestErrors(t *testing.T) {
	noSKU := "a,b\nc,d\nMarca,Descripción\nx,y\n"

	tests := []struct {
		name        string
		target      string
		files       []formFile
		fields      map[string]string
		contentType string
		wantStatus  int
		wantType    string
	}{
		{
			name:       "missing file",
			target:     "/api/inventory/ingest",
			files:      []formFile{{field: fieldProducts, name: "products.csv", content: testutil.SampleProductsCSV}},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:       "unsupported extension",
			target:     "/api/inventory/ingest",
			files:      []formFile{{field: fieldFile, name: "stock.pdf", content: "%PDF"}},
			wantStatus: http.StatusUnsupportedMediaType,
			wantType:   apierrors.TypeUnsupportedFormat,
		},
		{
			name:       "no sku column",
			target:     "/api/inventory/ingest",
			files:      []formFile{{field: fieldFile, name: "stock.csv", content: noSKU}},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   apierrors.TypeInventoryLayout,
		},
		{
			name:       "bad mode",
			target:     "/api/inventory/ingest?mode=flat",
			files:      sampleFiles(),
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:       "bad suppress_empty",
			target:     "/api/inventory/ingest",
			files:      sampleFiles(),
			fields:     map[string]string{"suppress_empty": "maybe"},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:       "bad format",
			target:     "/api/inventory/ingest?format=pdf",
			files:      sampleFiles(),
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:        "json body",
			target:      "/api/inventory/ingest",
			contentType: "application/json",
			wantStatus:  http.StatusUnsupportedMediaType,
			wantType:    apierrors.TypeUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestInventoryHandler(t)

			req := newUploadRequest(t, tt.target, tt.files, tt.fields)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := serve("/api/inventory", h.Routes(), req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			problem := decodeProblem(t, rec.Body.Bytes())
			assert.Equal(t, tt.wantType, problem["type"])
			assert.NotEmpty(t, problem["trace_id"])
		})
	}
}

func TestInventoryHandler_LayoutErrorIsVerbatim(t *testing.T) {
	h, _ := newTestInventoryHandler(t)

	files := []formFile{{field: fieldFile, name: "stock.csv", content: "a,b\nc,d\nMarca,Descripción\nx,y\n"}}
	rec := serve("/api/inventory", h.Routes(), newUploadRequest(t, "/api/inventory/ingest", files, nil))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	problem := decodeProblem(t, rec.Body.Bytes())
	assert.Contains(t, problem["detail"], "no SKU column found in header row")
	assert.Equal(t, string(apierrors.ErrTypeStructure), problem["error_type"])
}

func TestInventoryHandler_Compare(t *testing.T) {
	t.Run("per store view", func(t *testing.T) {
		h, _ := newTestInventoryHandler(t)
		rec := serve("/api/inventory", h.Routes(),
			newUploadRequest(t, "/api/inventory/compare?sku=100_RED_S", sampleFiles(), nil))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp CompareResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "100_RED_S", resp.SKU)
		require.Len(t, resp.Stores, 2)
		assert.Equal(t, "NORTE", resp.Stores[0].Store)
		assert.Equal(t, "SUR", resp.Stores[1].Store)
	})

	t.Run("sku from form", func(t *testing.T) {
		h, _ := newTestInventoryHandler(t)
		rec := serve("/api/inventory", h.Routes(),
			newUploadRequest(t, "/api/inventory/compare", sampleFiles(), map[string]string{"sku": "200_BLU"}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("missing sku", func(t *testing.T) {
		h, _ := newTestInventoryHandler(t)
		rec := serve("/api/inventory", h.Routes(),
			newUploadRequest(t, "/api/inventory/compare", sampleFiles(), nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		h, _ := newTestInventoryHandler(t)
		rec := serve("/api/inventory", h.Routes(),
			newUploadRequest(t, "/api/inventory/compare?sku=999_XXX", sampleFiles(), nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "999_xxx", decodeProblem(t, rec.Body.Bytes())["base_sku"])
	})
}

func TestInventoryHandler_Sweep(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		h, _ := newTestInventoryHandler(t)
		rec := serve("/api/inventory", h.Routes(),
			newUploadRequest(t, "/api/inventory/sweep", sampleFiles(), nil))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp SweepResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Count)
		assert.Equal(t, []string{"Medium"}, resp.Requests[0].Sizes)
	})

	t.Run("one store", func(t *testing.T) {
		h, _ := newTestInventoryHandler(t)
		rec := serve("/api/inventory", h.Routes(),
			newUploadRequest(t, "/api/inventory/sweep?store=Sur", sampleFiles(), nil))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp SweepResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Sur", resp.Store)
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, "S02", resp.Requests[0].StoreCode)
	})

	t.Run("no requests is an empty list", func(t *testing.T) {
		h, _ := newTestInventoryHandler(t)
		rec := serve("/api/inventory", h.Routes(),
			newUploadRequest(t, "/api/inventory/sweep?store=Este", sampleFiles(), nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"requests":[]`)
	})

	t.Run("xlsx", func(t *testing.T) {
		h, _ := newTestInventoryHandler(t)
		rec := serve("/api/inventory", h.Routes(),
			newUploadRequest(t, "/api/inventory/sweep?format=xlsx", sampleFiles(), nil))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, contentTypeXLSX, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "stock-requests.xlsx")

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		assert.NotEmpty(t, f.GetSheetList())
	})
}

func TestAttachmentName(t *testing.T) {
	assert.Equal(t, "stock-products.csv", attachmentName("stock.xlsx", "products", "csv"))
	assert.Equal(t, "stock-requests.xlsx", attachmentName(`C:\exports\stock.csv`, "requests", "xlsx"))
	assert.Equal(t, "inventory-records.csv", attachmentName("", "records", "csv"))
}
