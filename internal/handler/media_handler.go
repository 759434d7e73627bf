package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/response"
	"github.com/sensoryplay/portal-backend/internal/service"
)

// MediaHandler handles class and location image uploads.
type MediaHandler struct {
	mediaService *service.MediaService
	log          zerolog.Logger
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService *service.MediaService, log zerolog.Logger) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		log:          log.With().Str("component", "media_handler").Logger(),
	}
}

// UploadMedia godoc
// POST /api/v1/admin/media/upload
// Multipart fields: kind ("class" or "location") and file. Returns the URL to
// put in the image_url of that class or location.
func (h *MediaHandler) UploadMedia(c *gin.Context) {
	kind := c.PostForm("kind")

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	url, err := h.mediaService.SaveUpload(kind, file, header)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownMediaKind):
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"kind": "kind must be one of class, location"})
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		default:
			h.log.Error().Err(err).Str("kind", kind).Msg("upload failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	h.log.Info().Str("kind", kind).Str("url", url).Int64("size", header.Size).Msg("image stored")
	response.Success(c, http.StatusCreated, gin.H{"url": url, "kind": kind})
}
