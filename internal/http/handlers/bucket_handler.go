package handlers

import (
	"net/http"

	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/domain"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/http/response"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/logger"
)

// ListBuckets handles GET /api/buckets
func (h *Handlers) ListBuckets(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.bucketRepo.List(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list buckets", "error", err)
		response.InternalError(w, "Error fetching buckets")
		return
	}
	if buckets == nil {
		buckets = []domain.Bucket{}
	}
	writeJSON(w, http.StatusOK, buckets)
}

// CreateBucket handles POST /api/buckets
func (h *Handlers) CreateBucket(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateBucketRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	var ownerID *int64
	if claims := getClaims(r); claims != nil && claims.Sub > 0 {
		ownerID = &claims.Sub
	}

	bucket, err := h.bucketRepo.Create(r.Context(), req.Name, ownerID)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to create bucket", "error", err)
		response.InternalError(w, "Error creating bucket")
		return
	}
	writeJSON(w, http.StatusOK, bucket)
}

// ListBucketContacts handles GET /api/buckets/{bucketID}/contacts
func (h *Handlers) ListBucketContacts(w http.ResponseWriter, r *http.Request) {
	bucketID, ok := urlParamInt64(r, "bucketID")
	if !ok {
		response.BadRequest(w, "Invalid bucket id")
		return
	}

	bucket, err := h.bucketRepo.GetByID(r.Context(), bucketID)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to look up bucket", "error", err)
		response.InternalError(w, "Error fetching bucket contacts")
		return
	}
	if bucket == nil {
		response.NotFound(w, "Bucket not found")
		return
	}

	contacts, err := h.contactRepo.ListByBucket(r.Context(), bucketID)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list bucket contacts", "error", err)
		response.InternalError(w, "Error fetching bucket contacts")
		return
	}
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	writeJSON(w, http.StatusOK, contacts)
}
