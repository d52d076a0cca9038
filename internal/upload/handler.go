package upload

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vladpavlovski/phm-sub006/internal/api/respond"
)

// MissingFieldsMessage is the 400 body message when filename or filetype is absent.
const MissingFieldsMessage = "Missing fileName or fileType on body"

// Request is the JSON body accepted by the endpoint. Field matching is
// case-insensitive, so fileName/fileType are accepted as well.
type Request struct {
	Filename string `json:"filename"`
	Filetype string `json:"filetype"`
}

// Response carries the pre-signed PUT URL and the public object URL.
type Response struct {
	SignedRequest string `json:"signedRequest"`
	URL           string `json:"url"`
}

// MessageResponse is the error body of the endpoint.
type MessageResponse struct {
	Message string `json:"message"`
}

// Handler serves POST /upload.
type Handler struct {
	signer Signer
	bucket string
	logger *slog.Logger
}

// NewHandler creates the upload handler for bucket.
func NewHandler(signer Signer, bucket string, logger *slog.Logger) *Handler {
	return &Handler{signer: signer, bucket: bucket, logger: logger}
}

// ObjectURL is the public URL of key in the bucket.
func ObjectURL(bucket, key string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key)
}

// ServeHTTP signs an upload URL.
// @Summary Sign an S3 upload
// @Description Returns a pre-signed PUT URL and the resulting public URL for a file.
// @Tags upload
// @Accept json
// @Produce json
// @Param body body upload.Request true "File to upload"
// @Success 200 {object} upload.Response
// @Failure 400 {object} upload.MessageResponse
// @Router /upload [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	// An undecodable body is treated the same as missing fields.
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Filename == "" || req.Filetype == "" {
		respond.WriteJSONObject(w, http.StatusBadRequest, MessageResponse{Message: MissingFieldsMessage})
		return
	}

	signed, err := h.signer.SignPut(r.Context(), req.Filename, req.Filetype)
	if err != nil {
		h.logger.Error("Failed to sign upload", "filename", req.Filename, "error", err)
		respond.WriteJSONObject(w, http.StatusBadRequest, MessageResponse{Message: "Could not sign upload request"})
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, Response{
		SignedRequest: signed,
		URL:           ObjectURL(h.bucket, req.Filename),
	})
}
