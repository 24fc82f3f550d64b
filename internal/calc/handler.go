package calc

import (
	"encoding/json"
	"io"
	"math"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultMaxArgument bounds factorial and fibonacci arguments.
const DefaultMaxArgument = 10000

type successResponse struct {
	Result any `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler routes requests by hand: GET /factorial?n=, GET /fibonacci/{n}
// and GET /mean with a JSON array body. Everything else is a JSON 404.
type Handler struct {
	maxArgument int64
	log         logrus.FieldLogger
}

// NewHandler returns the calc handler. A non-positive maxArgument falls back
// to DefaultMaxArgument.
func NewHandler(maxArgument int64, log logrus.FieldLogger) *Handler {
	if maxArgument <= 0 {
		maxArgument = DefaultMaxArgument
	}
	return &Handler{maxArgument: maxArgument, log: log}
}

// ServeHTTP dispatches by method and path.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch {
	case r.Method == http.MethodGet && path == "/factorial":
		h.factorial(w, r)
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/fibonacci/"):
		h.fibonacci(w, path)
	case r.Method == http.MethodGet && path == "/mean":
		h.mean(w, r)
	default:
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not Found"})
	}
}

func (h *Handler) factorial(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("n") {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "Missing parameter 'n'"})
		return
	}
	n, err := strconv.ParseInt(query.Get("n"), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "Invalid parameter 'n'"})
		return
	}
	if n < 0 {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Negative number"})
		return
	}
	h.writeBig(w, n, Factorial)
}

func (h *Handler) fibonacci(w http.ResponseWriter, path string) {
	parts := strings.Split(path, "/")
	if len(parts) < 3 || parts[2] == "" {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "Missing index"})
		return
	}
	n, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "Invalid index"})
		return
	}
	if n < 0 {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Negative index"})
		return
	}
	h.writeBig(w, n, Fibonacci)
}

func (h *Handler) writeBig(w http.ResponseWriter, n int64, compute func(int64) (*big.Int, error)) {
	if n > h.maxArgument {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Argument too large"})
		return
	}
	result, err := compute(n)
	if err != nil {
		h.log.WithError(err).Error("calc failed")
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal error"})
		return
	}
	h.writeJSON(w, http.StatusOK, successResponse{Result: result})
}

func (h *Handler) mean(w http.ResponseWriter, r *http.Request) {
	values, err := decodeNumbers(r.Body)
	if err != nil {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "Invalid input"})
		return
	}
	result, err := Mean(values)
	if errors.Is(err, ErrEmptyInput) {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Empty array"})
		return
	}
	if math.IsInf(result, 0) || math.IsNaN(result) {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "Invalid input"})
		return
	}
	h.writeJSON(w, http.StatusOK, successResponse{Result: result})
}

// decodeNumbers accepts only a JSON array whose elements are all numbers.
func decodeNumbers(body io.Reader) ([]float64, error) {
	dec := json.NewDecoder(body)
	var raw []*float64
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode body")
	}
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after array")
	}
	if raw == nil {
		return nil, errors.New("body is not an array")
	}
	values := make([]float64, 0, len(raw))
	for _, v := range raw {
		if v == nil {
			return nil, errors.New("null element")
		}
		values = append(values, *v)
	}
	return values, nil
}

// writeJSON encodes data before the status line is written; an unencodable
// value is reported as a 500.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.log.WithError(err).Error("encode response")
		status = http.StatusInternalServerError
		payload = []byte(`{"error":"Internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		h.log.WithError(err).Warn("write response")
	}
}
