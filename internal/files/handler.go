package files

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docket-th/docket/internal/platform/httpx"
)

// Handler exposes upload endpoints.
type Handler struct {
	logger *slog.Logger
	store  *Store
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, store *Store) *Handler {
	return &Handler{logger: logger, store: store}
}

// MountRoutes registers upload routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/upload", func(r chi.Router) {
		r.Post("/single", h.UploadSingle)
		r.Post("/multiple", h.UploadMultiple)
		r.Delete("/{filename}", h.Delete)
	})
}

func (h *Handler) UploadSingle(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	path, err := h.store.SaveMultipart(file, header)
	if err != nil {
		h.logger.Error("upload failed", slog.String("name", header.Filename), slog.Any("error", err))
		httpx.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	httpx.Data(w, http.StatusCreated, map[string]string{"path": path})
}

func (h *Handler) UploadMultiple(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httpx.Message(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		httpx.Message(w, http.StatusBadRequest, "missing files field")
		return
	}

	paths := make([]string, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			httpx.Message(w, http.StatusBadRequest, "unreadable upload")
			return
		}
		path, err := h.store.SaveMultipart(file, header)
		file.Close()
		if err != nil {
			// Earlier files in the batch stay; the client retries the rest.
			h.logger.Error("upload failed", slog.String("name", header.Filename), slog.Any("error", err))
			httpx.Message(w, http.StatusBadRequest, err.Error())
			return
		}
		paths = append(paths, path)
	}
	httpx.Data(w, http.StatusCreated, map[string][]string{"paths": paths})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if err := h.store.Remove(name); err != nil {
		httpx.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	httpx.Data(w, http.StatusOK, map[string]string{"filename": name})
}
