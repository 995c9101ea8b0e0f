package routes

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/rsvphub/rsvp-api/internal/metrics"
	"github.com/rsvphub/rsvp-api/internal/models"
	"github.com/rsvphub/rsvp-api/internal/storage"
	apperrors "github.com/rsvphub/rsvp-api/pkg/errors"
)

// csvHeader is the fixed export column order
var csvHeader = []string{
	"id", "first_name", "last_name", "response",
	"guest1", "guest2", "guest3", "guest4", "note", "created_at",
}

// ExportHandler produces the CSV download of all stored responses
type ExportHandler struct {
	store  *storage.Store
	dir    string
	logger *logrus.Logger
}

// NewExportHandler creates a new export handler. dir may be empty, in which
// case the OS temp directory is used.
func NewExportHandler(store *storage.Store, dir string, logger *logrus.Logger) *ExportHandler {
	return &ExportHandler{
		store:  store,
		dir:    dir,
		logger: logger,
	}
}

// Download serves all responses as a CSV attachment
// @Summary Export all responses as CSV
// @Description All records in created_at-descending order, one header row plus one row per record
// @Tags RSVP
// @Produce text/csv
// @Success 200 {file} file "rsvps.csv"
// @Router /export-csv [get]
func (h *ExportHandler) Download(c *fiber.Ctx) error {
	responses, err := h.store.ListResponses(c.Context())
	if err != nil {
		metrics.RecordExport("failure")
		h.logger.WithError(err).Error("Failed to load responses for export")
		return respondAppError(c, apperrors.NewAppError(apperrors.CodeInternalError, "Failed to export responses", err))
	}

	// Per-request temp file: concurrent exports must not truncate each
	// other. Unlinked once the response body has been written.
	tmp, err := os.CreateTemp(h.dir, "rsvps-*.csv")
	if err != nil {
		metrics.RecordExport("failure")
		h.logger.WithError(err).Error("Failed to create export file")
		return respondAppError(c, apperrors.NewAppError(apperrors.CodeInternalError, "Failed to export responses", err))
	}
	// The unlink happens before Fiber finishes streaming the file. POSIX
	// keeps the inode alive while the sendfile handle is open, so the
	// download completes; on non-POSIX filesystems the Remove may fail and
	// leave the temp file behind, which is acceptable.
	defer os.Remove(tmp.Name())

	if err := writeCSV(tmp, responses); err != nil {
		tmp.Close()
		metrics.RecordExport("failure")
		h.logger.WithError(err).Error("Failed to write export file")
		return respondAppError(c, apperrors.NewAppError(apperrors.CodeInternalError, "Failed to export responses", err))
	}
	if err := tmp.Close(); err != nil {
		metrics.RecordExport("failure")
		return respondAppError(c, apperrors.NewAppError(apperrors.CodeInternalError, "Failed to export responses", err))
	}

	metrics.RecordExport("success")
	h.logger.WithField("records", len(responses)).Info("CSV export served")

	return c.Download(tmp.Name(), "rsvps.csv")
}

// writeCSV serializes records with standard RFC 4180 quoting
func writeCSV(f *os.File, responses []models.Response) error {
	w := csv.NewWriter(f)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for i := range responses {
		rec := &responses[i]
		row := []string{
			strconv.FormatInt(rec.ID, 10),
			rec.FirstName,
			rec.LastName,
			rec.Response,
		}
		for _, guest := range rec.Guests() {
			row = append(row, derefOrEmpty(guest))
		}
		row = append(row,
			derefOrEmpty(rec.Note),
			rec.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
