package interfaces

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"rule37-cloud/internal/audit"
	"rule37-cloud/internal/auth"
	"rule37-cloud/internal/rule37/application"
)

const asOnDateLayout = "2006-01-02"

// UploadHandler accepts multipart ledger uploads on
// POST /api/v1/ledgers/upload.
type UploadHandler struct {
	orchestrator    *application.UploadOrchestrator
	auditor         audit.Logger
	defaultTenantID string
	logger          *log.Logger
}

// NewUploadHandler constructs the handler.
func NewUploadHandler(orchestrator *application.UploadOrchestrator, auditor audit.Logger, defaultTenantID string, logger *log.Logger) (*UploadHandler, error) {
	if orchestrator == nil {
		return nil, errors.New("upload handler: nil orchestrator")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &UploadHandler{
		orchestrator:    orchestrator,
		auditor:         auditor,
		defaultTenantID: defaultTenantID,
		logger:          logger,
	}, nil
}

// ServeHTTP handles /api/v1/ledgers/upload.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/v1/ledgers/upload" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	asOnDateValue := r.FormValue("asOnDate")
	if asOnDateValue == "" {
		http.Error(w, "asOnDate is required", http.StatusBadRequest)
		return
	}
	asOnDate, err := time.Parse(asOnDateLayout, asOnDateValue)
	if err != nil {
		http.Error(w, "asOnDate must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	var fileHeaders []*multipart.FileHeader
	if r.MultipartForm != nil {
		fileHeaders = r.MultipartForm.File["files"]
	}
	files := make([]application.UploadFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		fh := fh
		files = append(files, application.UploadFile{
			Filename: fh.Filename,
			Size:     fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}

	identity := auth.IdentityFromContext(r.Context())
	tenantID := identity.TenantID
	if tenantID == "" {
		tenantID = h.defaultTenantID
	}
	createdBy := identity.Subject
	if createdBy == "" {
		createdBy = "anonymous"
	}

	result, err := h.orchestrator.ProcessUpload(r.Context(), tenantID, createdBy, files, asOnDate)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.logAudit(r, tenantID, identity, result)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(result)
}

func (h *UploadHandler) logAudit(r *http.Request, tenantID string, identity auth.Identity, result *application.UploadResult) {
	if h.auditor == nil {
		return
	}
	metadata, _ := json.Marshal(map[string]any{
		"filename":  result.Filename,
		"fileCount": len(result.Results),
		"errors":    len(result.Errors),
	})
	err := h.auditor.Log(r.Context(), audit.Entry{
		TenantID:     tenantID,
		Actor:        identity.Subject,
		Role:         string(identity.Role),
		Action:       "rule37.upload",
		ResourceType: "calculation_run",
		ResourceID:   result.RunID,
		Metadata:     metadata,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
	if err != nil {
		h.logger.Printf("upload handler: audit log failed: %v", err)
	}
}
