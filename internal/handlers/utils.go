package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/jjudge-oj/userservice/internal/apperrors"
	"github.com/jjudge-oj/userservice/internal/services"
)

const (
	defaultPage    = 0
	maxJSONBody    = 1 << 20
	formFieldImage = "image"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Status:  status,
	})
}

// writeAppError maps the error kind assigned by the services to a status.
func writeAppError(w http.ResponseWriter, err error) {
	writeError(w, statusForKind(apperrors.KindOf(err)), apperrors.MessageOf(err))
}

func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindInvalidInput:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a single JSON document from the request body. An empty
// body leaves dst untouched and reports false.
func decodeJSON(r *http.Request, dst any) (bool, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, errors.New("Malformed JSON request body")
	}
	return true, nil
}

func parsePagination(r *http.Request) (services.ListUsersParams, error) {
	query := r.URL.Query()
	params := services.ListUsersParams{
		Page:      defaultPage,
		Size:      services.DefaultPageSize,
		Username:  strings.TrimSpace(query.Get("username")),
		Email:     strings.TrimSpace(query.Get("email")),
		FirstName: strings.TrimSpace(query.Get("first_name")),
		LastName:  strings.TrimSpace(query.Get("last_name")),
		Status:    strings.TrimSpace(query.Get("status")),
	}

	var err error
	if raw := strings.TrimSpace(query.Get("page")); raw != "" {
		params.Page, err = strconv.Atoi(raw)
		if err != nil || params.Page < 0 {
			return services.ListUsersParams{}, errors.New("Invalid page: " + raw)
		}
	}
	if raw := strings.TrimSpace(query.Get("size")); raw != "" {
		params.Size, err = strconv.Atoi(raw)
		if err != nil || params.Size < 1 {
			return services.ListUsersParams{}, errors.New("Invalid size: " + raw)
		}
	}
	if params.Size > services.MaxPageSize {
		params.Size = services.MaxPageSize
	}
	return params, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("Failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("Uploaded file too large")
	}
	return data, nil
}

// NotFound answers unknown routes with a JSON error.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "No route for "+r.Method+" "+r.URL.Path)
}

// MethodNotAllowed answers unsupported methods with a JSON error.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method "+r.Method+" not allowed on "+r.URL.Path)
}
