package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-relay-service/internal/clients"
	"shipment-relay-service/internal/config"
	"shipment-relay-service/internal/models"
	"shipment-relay-service/internal/services"
)

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

// setupTestRouter builds a router backed by the given fake Orderdesk and
// forward endpoints.
func setupTestRouter(t *testing.T, orderdesk http.Handler, forward http.Handler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	orderdeskServer := httptest.NewServer(orderdesk)
	t.Cleanup(orderdeskServer.Close)
	forwardServer := httptest.NewServer(forward)
	t.Cleanup(forwardServer.Close)

	stores := config.NewStoreRegistry(map[string]string{
		"68125": "test-key",
		"14077": "test-key",
	})

	orderdeskClient := clients.NewOrderdeskClient(orderdeskServer.URL, 5*time.Second, testLogger())
	forwardClient := clients.NewForwardClient(forwardServer.URL, 5*time.Second, testLogger())

	submitService := services.NewSubmitService(orderdeskClient, stores, testLogger())
	forwardService := services.NewForwardService(forwardClient, testLogger())
	formatterService := services.NewFormatterService(testLogger())

	submitHandler := NewSubmitHandler(submitService, testLogger())
	forwardHandler := NewForwardHandler(forwardService, testLogger())
	importHandler := NewImportHandler(formatterService, submitService, testLogger())

	router := gin.New()
	router.GET("/health", HealthCheck)
	router.POST("/", forwardHandler.Forward)
	router.POST("/submit", submitHandler.Submit)
	router.POST("/cannon-hill", importHandler.ImportCannonHill)
	return router
}

func healthyOrderdesk() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/orders", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"orders":[{"id":"7","shipping_method":"UPS Ground"}]}`))
	})
	mux.HandleFunc("/api/v2/orders/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","message":"Shipment added","execution_time":"0.03s"}`))
	})
	return mux
}

func okForward() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok"}`))
	})
}

func TestHealthCheck(t *testing.T) {
	router := setupTestRouter(t, healthyOrderdesk(), okForward())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"shipment-relay-service"}`, w.Body.String())
}

func TestSubmit_SingleObjectBody(t *testing.T) {
	router := setupTestRouter(t, healthyOrderdesk(), okForward())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(`{"order_number":"68125-1","tracking_number":"1Z"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.SubmitBatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Orders processed", resp.Message)
	require.Len(t, resp.Results, 1)
	assert.False(t, resp.Results[0].Failed())
}

func TestSubmit_ArrayBodyWithFailure(t *testing.T) {
	router := setupTestRouter(t, healthyOrderdesk(), okForward())

	body := `[{"order_number":"68125-1"},{"order_number":"55555-2"}]`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.SubmitBatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Not OKAY", resp.Message)
	require.Len(t, resp.Results, 2)
	assert.False(t, resp.Results[0].Failed())
	assert.Equal(t, "Invalid store ID", resp.Results[1].Error)
}

func TestSubmit_MalformedBody(t *testing.T) {
	router := setupTestRouter(t, healthyOrderdesk(), okForward())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Error processing orders", resp.Message)
}

func TestForward_AllSucceed(t *testing.T) {
	router := setupTestRouter(t, healthyOrderdesk(), okForward())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"source_id":"9001 REDO"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ForwardBatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "All orders processed successfully", resp.Message)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "9001", resp.Results[0].Order.SourceID())
}

func TestForward_SomeFail(t *testing.T) {
	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message":"downstream unavailable"}`))
	})
	router := setupTestRouter(t, healthyOrderdesk(), failing)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`[{"source_id":"1"},{"source_id":"2"}]`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ForwardBatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Some orders failed to process", resp.Message)
	require.Len(t, resp.Results, 2)
	require.NotNil(t, resp.Results[0].Error)
	assert.Equal(t, http.StatusBadGateway, resp.Results[0].Error.Status)
}

const cannonHillCSV = "Cannon Hill Shipment Report\n" +
	"Generated 01/15/2025\n" +
	"\n" +
	"\n" +
	"Cust PO Number,Shipped VIA,Date,Customer Number,Tracking Number\n" +
	"12345/A,UPS - G,1/15/2025,RTSCS,1Z999AA10123456784\n" +
	"12345/B,UPS - G,1/15/2025,RTSCS,DUPLICATE\n" +
	"67890,UPS - 3RD,1/16/2025,HERO,1Z999AA10123456785\n"

func csvUpload(t *testing.T, fieldName, fileName, contents string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestImportCannonHill_EndToEnd(t *testing.T) {
	router := setupTestRouter(t, healthyOrderdesk(), okForward())

	body, contentType := csvUpload(t, "file", "export.csv", cannonHillCSV)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cannon-hill", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.CannonHillResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Cannon Hill data received, CSV parsed, and successfully forwarded to submit route", resp.Message)

	// Duplicate PO 12345 collapses, so two updates go through.
	require.Len(t, resp.FormattedCannonHillData, 2)
	assert.Equal(t, "68125-12345", resp.FormattedCannonHillData[0].OrderNumber)
	assert.Equal(t, "Ground", resp.FormattedCannonHillData[0].ShipmentMethod)
	assert.Equal(t, "14077-67890", resp.FormattedCannonHillData[1].OrderNumber)
	assert.Equal(t, "3 Day Select", resp.FormattedCannonHillData[1].ShipmentMethod)

	require.Len(t, resp.SubmitResponse, 2)
	assert.Equal(t, "success", resp.SubmitResponse[0].Status)
	assert.Equal(t, "0.03s", resp.SubmitResponse[0].ExecutionTime)

	// No failures, so the raw rows stay out of the response.
	assert.Nil(t, resp.CSVData)
}

func TestImportCannonHill_FailuresIncludeRawRows(t *testing.T) {
	rejecting := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"error","message":"Invalid API key"}`))
	})
	router := setupTestRouter(t, rejecting, okForward())

	body, contentType := csvUpload(t, "file", "export.csv", cannonHillCSV)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cannon-hill", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.CannonHillResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.SubmitResponse, 2)
	assert.Equal(t, "error", resp.SubmitResponse[0].Status)

	require.Len(t, resp.CSVData, 3)
	assert.Equal(t, "12345/A", resp.CSVData[0]["Cust_PO_Number"])
	assert.Equal(t, "UPS - G", resp.CSVData[0]["Shipped_VIA"])
}

func TestImportCannonHill_NoFileAttached(t *testing.T) {
	router := setupTestRouter(t, healthyOrderdesk(), okForward())

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cannon-hill", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "No file attached.", resp.Message)
}

func TestImportCannonHill_NonCSVFile(t *testing.T) {
	router := setupTestRouter(t, healthyOrderdesk(), okForward())

	body, contentType := csvUpload(t, "file", "export.txt", "not a csv")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cannon-hill", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "No CSV file found. Ensure you attach a CSV file.", resp.Message)
}

func TestDecodeOrders_EmptyBody(t *testing.T) {
	_, err := decodeOrders(strings.NewReader(""))
	assert.Error(t, err)
}
