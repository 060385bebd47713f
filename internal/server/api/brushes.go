// Package api provides the HTTP API handlers for the collaborative gesture
// surface: live brushes and session history.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/arbiter"
	"github.com/ayusman/mudra/internal/interact"
)

// BrushHandler handles HTTP requests for sticky brushes. Reads come from
// the live replicated document; deletes go through the arbiter so they
// follow the same rules as gesture deletes.
type BrushHandler struct {
	arb *arbiter.Arbiter
}

// NewBrushHandler creates a BrushHandler over the given arbiter.
func NewBrushHandler(a *arbiter.Arbiter) *BrushHandler {
	return &BrushHandler{arb: a}
}

// ServeHTTP routes /api/brushes and /api/brushes/{id}.
func (h *BrushHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/brushes")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type brushResponse struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Kind   string  `json:"kind"`
}

type listBrushesResponse struct {
	Viz     string          `json:"viz"`
	Brushes []brushResponse `json:"brushes"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toBrushResponse(b interact.Brush) brushResponse {
	return brushResponse{ID: b.ID, X: b.X, Y: b.Y, Radius: b.Radius, Kind: b.Kind}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/brushes and returns the live brushes.
func (h *BrushHandler) list(w http.ResponseWriter, r *http.Request) {
	brushes := h.arb.Brushes()

	response := listBrushesResponse{
		Viz:     h.arb.Viz(),
		Brushes: make([]brushResponse, 0, len(brushes)),
	}
	for _, b := range brushes {
		response.Brushes = append(response.Brushes, toBrushResponse(b))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/brushes/{id}.
func (h *BrushHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	for _, b := range h.arb.Brushes() {
		if b.ID == id {
			writeJSON(w, http.StatusOK, toBrushResponse(b))
			return
		}
	}
	writeError(w, http.StatusNotFound, "Brush not found")
}

// delete handles DELETE /api/brushes/{id}.
func (h *BrushHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	found := false
	for _, b := range h.arb.Brushes() {
		if b.ID == id {
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "Brush not found")
		return
	}

	h.arb.RemoveBrush(id)
	w.WriteHeader(http.StatusNoContent)
}
