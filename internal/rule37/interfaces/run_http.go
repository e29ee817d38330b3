package interfaces

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rule37-cloud/internal/audit"
	"rule37-cloud/internal/auth"
	"rule37-cloud/internal/observability/metrics"
	"rule37-cloud/internal/rule37/application"
	rule37 "rule37-cloud/internal/rule37/domain"
)

const runsBasePath = "/api/v1/rule37/runs"

// RunHandler serves stored calculation runs: listing, retrieval, deletion
// and workbook export.
type RunHandler struct {
	service         *application.RunService
	excelStrategy   ExportStrategy
	pdfStrategy     ExportStrategy
	auditor         audit.Logger
	defaultTenantID string
	logger          *log.Logger
}

// NewRunHandler constructs the handler.
func NewRunHandler(service *application.RunService, excelStrategy, pdfStrategy ExportStrategy, auditor audit.Logger, defaultTenantID string, logger *log.Logger) (*RunHandler, error) {
	if service == nil {
		return nil, errors.New("run handler: nil run service")
	}
	if excelStrategy == nil {
		return nil, errors.New("run handler: nil excel strategy")
	}
	if pdfStrategy == nil {
		return nil, errors.New("run handler: nil pdf strategy")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &RunHandler{
		service:         service,
		excelStrategy:   excelStrategy,
		pdfStrategy:     pdfStrategy,
		auditor:         auditor,
		defaultTenantID: defaultTenantID,
		logger:          logger,
	}, nil
}

// ServeHTTP handles /api/v1/rule37/runs and subroutes.
func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == runsBasePath:
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleList(w, r)
	case strings.HasPrefix(r.URL.Path, runsBasePath+"/"):
		h.handleRun(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *RunHandler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 0)
	offset := parseIntQuery(r, "offset", 0)
	tenantID := h.tenantID(r)

	runs, err := h.service.List(r.Context(), tenantID, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	responses := make([]runResponse, 0, len(runs))
	for i := range runs {
		responses = append(responses, toRunResponse(&runs[i], false))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(responses)
}

func (h *RunHandler) handleRun(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, runsBasePath+"/")
	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r, parts[0])
		case http.MethodDelete:
			h.handleDelete(w, r, parts[0])
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case len(parts) == 2 && parts[1] == "export":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleExport(w, r, parts[0])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *RunHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	run, err := h.service.Get(r.Context(), id, h.tenantID(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toRunResponse(run, true))
}

func (h *RunHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	tenantID := h.tenantID(r)
	if err := h.service.Delete(r.Context(), id, tenantID); err != nil {
		respondServiceError(w, err)
		return
	}
	h.logAudit(r, tenantID, "rule37.run.delete", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *RunHandler) handleExport(w http.ResponseWriter, r *http.Request, id string) {
	started := time.Now()
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "excel"
	}

	var strategy ExportStrategy
	switch format {
	case "excel":
		strategy = h.excelStrategy
	case "pdf":
		strategy = h.pdfStrategy
	default:
		http.Error(w, "format must be excel or pdf", http.StatusBadRequest)
		return
	}

	tenantID := h.tenantID(r)
	run, err := h.service.Get(r.Context(), id, tenantID)
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(started))
		respondServiceError(w, err)
		return
	}

	payload, err := strategy.Generate(run.CalculationData)
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(started))
		h.logger.Printf("run handler: export %q failed: %v", id, err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	metrics.ObserveExport(format, metrics.ResultSuccess, time.Since(started))
	metadata, _ := json.Marshal(map[string]string{"format": format})
	h.logAudit(r, tenantID, "rule37.run.export", id, metadata)

	filename := fmt.Sprintf("%s_Interest_Calculation.%s", run.Filename, strategy.FileExtension())
	w.Header().Set("Content-Type", strategy.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(payload)
}

func (h *RunHandler) tenantID(r *http.Request) string {
	if tenantID := auth.TenantIDFromContext(r.Context()); tenantID != "" {
		return tenantID
	}
	return h.defaultTenantID
}

func (h *RunHandler) logAudit(r *http.Request, tenantID, action, resourceID string, metadata json.RawMessage) {
	if h.auditor == nil {
		return
	}
	identity := auth.IdentityFromContext(r.Context())
	err := h.auditor.Log(r.Context(), audit.Entry{
		TenantID:     tenantID,
		Actor:        identity.Subject,
		Role:         string(identity.Role),
		Action:       action,
		ResourceType: "calculation_run",
		ResourceID:   resourceID,
		Metadata:     metadata,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
	if err != nil {
		h.logger.Printf("run handler: audit log failed: %v", err)
	}
}

// runResponse is the wire form of a stored run. Results are omitted in
// listings.
type runResponse struct {
	ID               string                        `json:"id"`
	Filename         string                        `json:"filename"`
	AsOnDate         string                        `json:"asOnDate"`
	TotalInterest    string                        `json:"totalInterest"`
	TotalItcReversal string                        `json:"totalItcReversal"`
	Results          []application.LedgerResultDTO `json:"results,omitempty"`
	CreatedAt        time.Time                     `json:"createdAt"`
	CreatedBy        string                        `json:"createdBy"`
	ExpiresAt        time.Time                     `json:"expiresAt"`
}

func toRunResponse(run *rule37.CalculationRun, includeResults bool) runResponse {
	response := runResponse{
		ID:               run.ID,
		Filename:         run.Filename,
		AsOnDate:         run.AsOnDate.Format(asOnDateLayout),
		TotalInterest:    run.TotalInterest.StringFixed(2),
		TotalItcReversal: run.TotalItcReversal.StringFixed(2),
		CreatedAt:        run.CreatedAt,
		CreatedBy:        run.CreatedBy,
		ExpiresAt:        run.ExpiresAt,
	}
	if includeResults {
		response.Results = application.ToLedgerResultDTOs(run.CalculationData)
	}
	return response
}

func parseIntQuery(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
