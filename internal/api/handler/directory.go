package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mobileid/portal/internal/api/response"
	"github.com/mobileid/portal/internal/directory"
)

// DirectoryHandler serves the static portal content.
type DirectoryHandler struct {
	dir *directory.Directory
}

// NewDirectoryHandler creates a new DirectoryHandler.
func NewDirectoryHandler(dir *directory.Directory) *DirectoryHandler {
	return &DirectoryHandler{dir: dir}
}

// listBody is the shape of the static list endpoints.
type listBody[T any] struct {
	Success bool `json:"success"`
	Data    []T  `json:"data"`
	Count   int  `json:"count"`
}

func writeList[T any](w http.ResponseWriter, r *http.Request, items []T) {
	if items == nil {
		items = []T{}
	}
	response.JSON(w, r, http.StatusOK, listBody[T]{Success: true, Data: items, Count: len(items)})
}

// IssuanceLinks handles GET /api/issuance-links.
func (h *DirectoryHandler) IssuanceLinks(w http.ResponseWriter, r *http.Request) {
	writeList(w, r, h.dir.IssuanceLinks())
}

// Menu handles GET /api/menu, the full main-screen card list.
func (h *DirectoryHandler) Menu(w http.ResponseWriter, r *http.Request) {
	writeList(w, r, h.dir.Cards())
}

// SearchPlaces handles GET /api/places?q=.
func (h *DirectoryHandler) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	writeList(w, r, h.dir.SearchPlaces(r.URL.Query().Get("q")))
}

// GetPlace handles GET /api/places/{placeID}.
func (h *DirectoryHandler) GetPlace(w http.ResponseWriter, r *http.Request) {
	place, ok := h.dir.Place(chi.URLParam(r, "placeID"))
	if !ok {
		response.NotFound(w, r, "place not found")
		return
	}
	response.JSON(w, r, http.StatusOK, place)
}

// CommunityPosts handles GET /api/community/posts.
func (h *DirectoryHandler) CommunityPosts(w http.ResponseWriter, r *http.Request) {
	writeList(w, r, h.dir.Posts())
}
