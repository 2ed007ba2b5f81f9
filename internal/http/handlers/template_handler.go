package handlers

import (
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/domain"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/http/response"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/logger"
)

// ListTemplates handles GET /api/message-templates
func (h *Handlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templateRepo.List(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list templates", "error", err)
		response.InternalError(w, "Error fetching message templates")
		return
	}
	if templates == nil {
		templates = []domain.MessageTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

// CreateTemplate handles POST /api/message-templates
func (h *Handlers) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req domain.MessageTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	template, err := h.templateRepo.Create(r.Context(), &req)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to create template", "error", err)
		response.InternalError(w, "Error creating message template")
		return
	}
	writeJSON(w, http.StatusOK, template)
}

// GetTemplate handles GET /api/message-templates/{id}
func (h *Handlers) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt64(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid template id")
		return
	}

	template, err := h.templateRepo.GetByID(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to get template", "error", err)
		response.InternalError(w, "Error fetching message template")
		return
	}
	if template == nil {
		response.NotFound(w, "Message template not found")
		return
	}
	writeJSON(w, http.StatusOK, template)
}

// UpdateTemplate handles PUT /api/message-templates/{id}
func (h *Handlers) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt64(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid template id")
		return
	}

	var req domain.MessageTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	template, err := h.templateRepo.Update(r.Context(), id, &req)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to update template", "error", err)
		response.InternalError(w, "Error updating message template")
		return
	}
	if template == nil {
		response.NotFound(w, "Message template not found")
		return
	}
	writeJSON(w, http.StatusOK, template)
}

// DeleteTemplate handles DELETE /api/message-templates/{id}
func (h *Handlers) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt64(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid template id")
		return
	}

	err := h.templateRepo.Delete(r.Context(), id)
	if err == pgx.ErrNoRows {
		response.NotFound(w, "Message template not found")
		return
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to delete template", "error", err)
		response.InternalError(w, "Error deleting message template")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Template deleted successfully"})
}
