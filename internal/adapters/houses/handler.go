// Package houses exposes the house record service over HTTP.
package houses

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"housingapi/internal/core"
	"housingapi/pkg/domain"
	"io"
	"net/http"
	"strconv"
	"strings"
)

const (
	collectionPath = "/houses"
	itemPrefix     = collectionPath + "/"

	// DefaultMaxBodyBytes bounds request bodies on create and update.
	DefaultMaxBodyBytes int64 = 1 << 20

	formatJSON = "json"
	formatCSV  = "csv"
)

// Service is the record service consumed by the handler.
type Service interface {
	ListHouses(ctx context.Context, params domain.ListParams) ([]domain.House, error)
	GetHouse(ctx context.Context, id int) (domain.House, error)
	CreateHouse(ctx context.Context, h domain.House) (domain.House, error)
	UpdateHouse(ctx context.Context, id int, h domain.House) (domain.House, error)
	DeleteHouse(ctx context.Context, id int) error
}

var _ Service = (*core.Service)(nil)

// Handler serves /houses and /houses/{id}.
type Handler struct {
	Service      Service
	MaxBodyBytes int64
}

// NewHandler constructs a house HTTP handler.
func NewHandler(svc Service) *Handler {
	return &Handler{Service: svc, MaxBodyBytes: DefaultMaxBodyBytes}
}

type detailResponse struct {
	Detail any `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeDetail(w, http.StatusInternalServerError, "house service not configured")
		return
	}

	path := r.URL.Path
	if path != itemPrefix {
		path = strings.TrimSuffix(path, "/")
	}
	switch {
	case path == collectionPath || path == itemPrefix:
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	case strings.HasPrefix(path, itemPrefix):
		raw := strings.TrimPrefix(path, itemPrefix)
		if strings.Contains(raw, "/") {
			writeDetail(w, http.StatusNotFound, "Not Found")
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r, raw)
		case http.MethodPut:
			h.handleUpdate(w, r, raw)
		case http.MethodDelete:
			h.handleDelete(w, r, raw)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
		}
	default:
		writeDetail(w, http.StatusNotFound, "Not Found")
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	params, err := domain.ParseListParams(r.URL.Query())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	format := negotiateFormat(r)
	if format == "" {
		writeDetail(w, http.StatusNotAcceptable, "requested format not supported")
		return
	}
	houses, err := h.Service.ListHouses(r.Context(), params)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if format == formatCSV {
		streamCSV(w, params, houses)
		return
	}
	if houses == nil {
		houses = []domain.House{}
	}
	writeJSON(w, http.StatusOK, houses)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, raw string) {
	id, err := domain.ParsePathID(raw)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	house, err := h.Service.GetHouse(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, house)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	house, err := domain.DecodeHouse(body)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	created, err := h.Service.CreateHouse(r.Context(), house)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, raw string) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	id, pathErr := domain.ParsePathID(raw)
	house, bodyErr := domain.DecodeHouse(body)
	if err := domain.MergeValidation(pathErr, bodyErr); err != nil {
		writeServiceError(w, err)
		return
	}
	updated, err := h.Service.UpdateHouse(r.Context(), id, house)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, raw string) {
	id, err := domain.ParsePathID(raw)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.Service.DeleteHouse(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "House deleted"})
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeDetail(w, http.StatusBadRequest, "unable to read request body")
		}
		return nil, false
	}
	return body, true
}

// negotiateFormat picks json or csv from the format query parameter or the
// Accept header. An unknown format yields "".
func negotiateFormat(r *http.Request) string {
	wanted := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if wanted == "" {
		if strings.Contains(r.Header.Get("Accept"), "text/csv") {
			return formatCSV
		}
		return formatJSON
	}
	switch wanted {
	case formatJSON, formatCSV:
		return wanted
	}
	return ""
}

func streamCSV(w http.ResponseWriter, params domain.ListParams, houses []domain.House) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"houses-page-%d.csv\"", params.Page))
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(append([]string{"id"}, domain.FieldNames()...)); err != nil {
		return
	}
	record := make([]string, len(domain.Fields)+1)
	for _, house := range houses {
		record[0] = strconv.Itoa(house.ID)
		for i, f := range domain.Fields {
			record[i+1] = f.Format(house)
		}
		if err := writer.Write(record); err != nil {
			return
		}
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	var (
		verr *domain.ValidationError
		nf   core.ErrNotFound
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, detailResponse{Detail: verr.Errors})
	case errors.As(err, &nf):
		writeDetail(w, http.StatusNotFound, "House not found")
	default:
		writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
