package handlers

import (
	"net/http"
	"strings"

	"dispatch-console/core/storage"
	"dispatch-console/core/utils"
)

// FilesHandler serves locally stored attachments addressed by signed link
// tokens. It is only wired when the local storage backend is active.
type FilesHandler struct {
	resolver *storage.LocalResolver
	logger   *utils.Logger
}

func NewFilesHandler(resolver *storage.LocalResolver, logger *utils.Logger) *FilesHandler {
	return &FilesHandler{resolver: resolver, logger: logger}
}

func (h *FilesHandler) Serve(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	full, err := h.resolver.Open(token)
	if err != nil {
		h.logger.Printf("file link rejected: %v", err)
		writeError(w, http.StatusForbidden, "invalid or expired link")
		return
	}
	// reset the json content type set by middleware
	w.Header().Del("Content-Type")
	http.ServeFile(w, r, full)
}
