package handlers

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"shipment-relay-service/internal/models"
	"shipment-relay-service/internal/services"
)

// Vendor exports carry a four-line report banner above the header row.
const exportBannerLines = 4

// ImportHandler accepts Cannon Hill warehouse export uploads, normalizes them
// into shipment updates, and runs the resulting batch through the submit
// pipeline in process.
type ImportHandler struct {
	formatter     *services.FormatterService
	submitService *services.SubmitService
	logger        *logrus.Entry
}

// NewImportHandler creates a new import handler
func NewImportHandler(formatter *services.FormatterService, submitService *services.SubmitService, logger *logrus.Entry) *ImportHandler {
	return &ImportHandler{
		formatter:     formatter,
		submitService: submitService,
		logger:        logger,
	}
}

// ImportCannonHill handles POST /cannon-hill
func (h *ImportHandler) ImportCannonHill(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "No file attached.",
		})
		return
	}

	fileHeader := findUploadedFile(form)
	if fileHeader == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "No file attached.",
		})
		return
	}

	rows, err := h.parseUpload(fileHeader)
	if err != nil {
		if err == errNotSpreadsheet {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Message: "No CSV file found. Ensure you attach a CSV file.",
			})
			return
		}
		h.logger.WithError(err).Error("failed to parse uploaded export")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "An error occurred while processing the request",
			Error:   err.Error(),
		})
		return
	}

	formatted := h.formatter.FormatCannonHillRows(rows)

	h.logger.WithFields(logrus.Fields{
		"rows":      len(rows),
		"formatted": len(formatted),
	}).Info("parsed Cannon Hill export")

	orders := make([]models.OrderPayload, 0, len(formatted))
	for _, update := range formatted {
		orders = append(orders, update.AsPayload())
	}

	results := h.submitService.ProcessBatch(c.Request.Context(), orders)
	simplified := services.Simplify(results)

	hasErrors := len(simplified) == 0
	for _, entry := range simplified {
		if entry.Status == "error" {
			hasErrors = true
			break
		}
	}

	payload := models.CannonHillResponse{
		Message:                 "Cannon Hill data received, CSV parsed, and successfully forwarded to submit route",
		FormattedCannonHillData: formatted,
		SubmitResponse:          simplified,
	}
	// The raw export rows travel back only on failure, for diagnosis.
	if hasErrors {
		payload.CSVData = rows
	}

	c.JSON(http.StatusOK, payload)
}

var errNotSpreadsheet = fmt.Errorf("uploaded file is not a CSV or XLSX export")

// findUploadedFile returns the first file attached to the multipart form
// regardless of field name.
func findUploadedFile(form *multipart.Form) *multipart.FileHeader {
	for _, headers := range form.File {
		for _, header := range headers {
			return header
		}
	}
	return nil
}

// parseUpload dispatches on file type and returns header-keyed rows.
func (h *ImportHandler) parseUpload(fileHeader *multipart.FileHeader) ([]map[string]string, error) {
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	contentType := fileHeader.Header.Get("Content-Type")

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	switch {
	case ext == ".csv" || contentType == "text/csv":
		return parseCSVExport(file)
	case ext == ".xlsx":
		return parseXLSXExport(file)
	default:
		return nil, errNotSpreadsheet
	}
}

// parseCSVExport reads a Cannon Hill CSV export, skipping the report banner
// and keying each row by the normalized header. Ragged rows are tolerated;
// missing cells come back empty.
func parseCSVExport(r io.Reader) ([]map[string]string, error) {
	buffered := bufio.NewReader(r)
	for i := 0; i < exportBannerLines; i++ {
		if _, err := buffered.ReadString('\n'); err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("CSV export has no data rows")
			}
			return nil, fmt.Errorf("failed to skip export banner: %w", err)
		}
	}

	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV export has no header row")
	}

	header := normalizeHeader(records[0])

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, key := range header {
			if key == "" {
				continue
			}
			if i < len(record) {
				row[key] = record[i]
			} else {
				row[key] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseXLSXExport reads the first sheet of an XLSX export with the same
// banner-skip and header normalization as the CSV path.
func parseXLSXExport(r io.Reader) ([]map[string]string, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX export has no sheets")
	}

	records, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read XLSX rows: %w", err)
	}
	if len(records) <= exportBannerLines {
		return nil, fmt.Errorf("XLSX export has no data rows")
	}
	records = records[exportBannerLines:]

	header := normalizeHeader(records[0])

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, key := range header {
			if key == "" {
				continue
			}
			if i < len(record) {
				row[key] = record[i]
			} else {
				row[key] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// normalizeHeader rewrites column names with spaces and hyphens replaced by
// underscores.
func normalizeHeader(columns []string) []string {
	normalized := make([]string, len(columns))
	for i, column := range columns {
		key := strings.TrimSpace(column)
		key = strings.ReplaceAll(key, " ", "_")
		key = strings.ReplaceAll(key, "-", "_")
		normalized[i] = key
	}
	return normalized
}
