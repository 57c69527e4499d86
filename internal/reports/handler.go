package reports

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DipuTony/trulyhelp-portal/internal/common"
	"github.com/DipuTony/trulyhelp-portal/internal/donation"
)

// Exporter renders a finished report as a downloadable file.
type Exporter interface {
	Export(rep *Report, format string) ([]byte, string, string, error)
}

// Snapshotter wraps a rendered screen capture into a paginated PDF.
type Snapshotter func(pngData []byte, title string) ([]byte, string, string, error)

// Handler exposes report generation, exports and the regulatory 10BD feed.
type Handler struct {
	service  *Service
	exporter Exporter
	snapshot Snapshotter
}

func NewHandler(service *Service, exporter Exporter, snapshot Snapshotter) *Handler {
	return &Handler{service: service, exporter: exporter, snapshot: snapshot}
}

func respondError(c *gin.Context, err error) {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
		return
	}
	if common.IsAuthorization(err) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired, please sign in again"})
		return
	}
	var te *common.TransportError
	if errors.As(err, &te) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "report service unavailable", "retryable": true})
		return
	}
	var ee *common.ExportError
	if errors.As(err, &ee) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": ee.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// filterFromQuery reads the report filter from query params. Explicit
// startDate/endDate and an auto type bucket are mutually exclusive; Validate
// rejects requests carrying both.
func filterFromQuery(c *gin.Context) (FilterSpec, error) {
	filter := FilterSpec{
		Bucket:       DateBucket(c.Query("type")),
		Cause:        c.Query("cause"),
		DonationType: c.Query("donationType"),
		DonorType:    c.Query("donorType"),
	}

	if raw := c.Query("paymentMethod"); raw != "" && raw != "ALL" {
		method, ok := donation.LookupPaymentMethod(raw)
		if !ok {
			return FilterSpec{}, &common.ValidationError{Field: "paymentMethod", Message: "unknown payment method: " + raw}
		}
		filter.Method = method
	}
	if raw := c.Query("paymentStatus"); raw != "" && raw != "ALL" {
		status, ok := donation.LookupPaymentStatus(raw)
		if !ok {
			return FilterSpec{}, &common.ValidationError{Field: "paymentStatus", Message: "unknown payment status: " + raw}
		}
		filter.Status = status
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"startDate", &filter.Start},
		{"endDate", &filter.End},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return FilterSpec{}, &common.ValidationError{Field: p.name, Message: "expected YYYY-MM-DD, got " + raw}
		}
		*p.dst = &t
	}

	return filter, nil
}

// Generate builds a report and returns it as JSON, or as a file download
// when the format query param asks for csv, excel or pdf.
func (h *Handler) Generate(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	rep, err := h.service.Generate(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	format := c.Query("format")
	if format == "" || format == "json" {
		c.JSON(http.StatusOK, gin.H{"data": rep, "success": true})
		return
	}

	data, filename, contentType, err := h.exporter.Export(rep, format)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, contentType, data)
}

// Raw10BD streams the regulatory 10BD file through unchanged.
func (h *Handler) Raw10BD(c *gin.Context) {
	body, contentType, err := h.service.Raw10BD(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("form_10bd_%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, contentType, body)
}

// maxSnapshotBytes bounds the uploaded capture; dashboards render well under
// this even at retina resolutions.
const maxSnapshotBytes = 16 << 20

// Snapshot accepts a PNG capture of a rendered report screen and returns it
// as a paginated PDF.
func (h *Handler) Snapshot(c *gin.Context) {
	pngData, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSnapshotBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return
	}
	if len(pngData) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a PNG image"})
		return
	}
	if len(pngData) > maxSnapshotBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "snapshot image too large"})
		return
	}

	title := c.Query("title")
	data, filename, contentType, err := h.snapshot(pngData, title)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, contentType, data)
}
