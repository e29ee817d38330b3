package entry

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"rule37-cloud/internal/auth"
)

const basePath = "/api/v1/entries"

// Handler provides entry CRUD endpoints.
type Handler struct {
	service         *Service
	defaultTenantID string
}

// NewHandler constructs a handler.
func NewHandler(service *Service, defaultTenantID string) (*Handler, error) {
	if service == nil {
		return nil, errors.New("entry handler: nil service")
	}
	return &Handler{service: service, defaultTenantID: defaultTenantID}, nil
}

type entryRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ServeHTTP handles /api/v1/entries and subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == basePath:
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case strings.HasPrefix(r.URL.Path, basePath+"/"):
		id := strings.TrimPrefix(r.URL.Path, basePath+"/")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r, id)
		case http.MethodPut:
			h.handleUpdate(w, r, id)
		case http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var request entryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	identity := auth.IdentityFromContext(r.Context())
	created, err := h.service.Create(r.Context(), h.tenantID(r), request.Key, request.Value, identity.Subject)
	if err != nil {
		respondEntryError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit")
	offset := parseIntQuery(r, "offset")
	entries, err := h.service.List(r.Context(), h.tenantID(r), limit, offset)
	if err != nil {
		respondEntryError(w, err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	e, err := h.service.Get(r.Context(), id, h.tenantID(r))
	if err != nil {
		respondEntryError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(e)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var request entryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	identity := auth.IdentityFromContext(r.Context())
	updated, err := h.service.Update(r.Context(), id, h.tenantID(r), request.Key, request.Value, identity.Subject)
	if err != nil {
		respondEntryError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.Delete(r.Context(), id, h.tenantID(r)); err != nil {
		respondEntryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) tenantID(r *http.Request) string {
	if tenantID := auth.TenantIDFromContext(r.Context()); tenantID != "" {
		return tenantID
	}
	return h.defaultTenantID
}

func respondEntryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "entry not found", http.StatusNotFound)
	case errors.Is(err, ErrDuplicateKey):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func parseIntQuery(r *http.Request, key string) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return parsed
}
