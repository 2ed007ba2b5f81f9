package handlers

import (
	"errors"
	"net/http"

	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/domain"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/http/response"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/service"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/logger"
)

// ExportContacts handles POST /api/export
func (h *Handlers) ExportContacts(w http.ResponseWriter, r *http.Request) {
	var req domain.ExportRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.exportService.ExportBatch(r.Context(), &req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":          "Contacts exported successfully",
			"addedContacts":    result.Added,
			"skippedContacts":  result.Skipped,
			"rejectedContacts": result.Rejected,
		})
	case errors.Is(err, service.ErrBucketNotFound):
		response.NotFound(w, "Bucket not found")
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(w, err.Error())
	default:
		logger.ErrorContext(r.Context(), "Failed to export contacts", "error", err)
		response.InternalError(w, "Error exporting contacts")
	}
}
