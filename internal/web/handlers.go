package web

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ironsheep/stego-tools-mcp/internal/imaging"
	"github.com/ironsheep/stego-tools-mcp/internal/stego"
)

// Response is the JSON body of every non-file reply.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CapacityResponse is returned by the capacity endpoint.
type CapacityResponse struct {
	Success  bool                `json:"success"`
	Capacity *stego.CapacityInfo `json:"capacity"`
}

// Handler serves the API routes.
type Handler struct {
	cfg Config
}

func NewHandler(cfg Config) *Handler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{cfg: cfg}
}

// requestError carries the HTTP status for a failed request.
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(message string) error {
	return &requestError{status: http.StatusBadRequest, message: message}
}

// fail writes err as a JSON error reply. Codec and validation errors are
// the client's fault; anything else is a 500.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		status = reqErr.status
	case isClientError(err):
		status = http.StatusBadRequest
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		message = "internal error"
	}

	c.JSON(status, Response{Success: false, Message: message})
}

func isClientError(err error) bool {
	for _, target := range []error{
		stego.ErrInvalidImage,
		stego.ErrInvalidImageMode,
		stego.ErrMessageTooLarge,
		stego.ErrNoMessageFound,
		stego.ErrInvalidKey,
		stego.ErrEmptyMessage,
		stego.ErrUnencodableMessage,
		stego.ErrAmbiguousMessage,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Steganography API is running",
		"version": h.cfg.Version,
	})
}

// allowedFile reports whether name has a .png extension.
func allowedFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".png")
}

// sanitizeFilename reduces an uploaded filename to a safe base name made of
// [A-Za-z0-9._-]. Directory parts are dropped and spaces become '_'.
func sanitizeFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}

	safe := strings.Trim(b.String(), "._")
	if safe == "" || strings.EqualFold(safe, "png") {
		return "image.png"
	}
	return safe
}

// upload is a decoded image file from a multipart request.
type upload struct {
	name  string
	image image.Image
}

// parseForm bounds the request body and parses the multipart form in memory.
func (h *Handler) parseForm(c *gin.Context) error {
	limit := h.cfg.MaxUploadBytes
	if c.Request.ContentLength > limit {
		return &requestError{
			status:  http.StatusRequestEntityTooLarge,
			message: fmt.Sprintf("upload exceeds %d bytes", limit),
		}
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	if err := c.Request.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &requestError{
				status:  http.StatusRequestEntityTooLarge,
				message: fmt.Sprintf("upload exceeds %d bytes", limit),
			}
		}
		return badRequest(fmt.Sprintf("failed to parse form: %v", err))
	}
	return nil
}

// readUpload reads and decodes the "file" field. The form must already be
// parsed.
func (h *Handler) readUpload(c *gin.Context) (*upload, error) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		return nil, badRequest("No file selected")
	}
	defer file.Close()

	if !allowedFile(header.Filename) {
		return nil, badRequest("Invalid file type")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	img, _, err := imaging.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	return &upload{name: sanitizeFilename(header.Filename), image: img}, nil
}

// formKey parses the "key" field, falling back to the configured default.
func (h *Handler) formKey(c *gin.Context) (stego.Key, error) {
	text := strings.TrimSpace(c.PostForm("key"))
	if text == "" {
		return h.cfg.DefaultKey, nil
	}
	key, err := stego.ParseKey(text)
	if err != nil {
		return 0, badRequest("Invalid encryption key format")
	}
	return key, nil
}

func hasFile(c *gin.Context) bool {
	form := c.Request.MultipartForm
	return form != nil && len(form.File["file"]) > 0
}

func (h *Handler) cleanupForm(c *gin.Context) {
	if c.Request.MultipartForm != nil {
		_ = c.Request.MultipartForm.RemoveAll()
	}
}

// Embed hides the "message" field in the uploaded PNG and returns the
// result as an attachment named encoded_<name>.
func (h *Handler) Embed(c *gin.Context) {
	if err := h.parseForm(c); err != nil {
		h.fail(c, err)
		return
	}
	defer h.cleanupForm(c)

	if !hasFile(c) {
		h.fail(c, badRequest("No file selected"))
		return
	}

	message := c.PostForm("message")
	if message == "" {
		h.fail(c, badRequest("No message provided"))
		return
	}

	key, err := h.formKey(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	up, err := h.readUpload(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	stegoImg, err := stego.EmbedMessage(up.image, message, key)
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := imaging.EncodePNG(&buf, stegoImg); err != nil {
		h.fail(c, err)
		return
	}

	b := stegoImg.Bounds()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", "encoded_"+up.name))
	c.Header("X-Stego-Key", key.String())
	c.Header("X-Stego-Bits", fmt.Sprintf("%d", stego.EncodedBits(message)))
	c.Header("X-Stego-Capacity", fmt.Sprintf("%d", b.Dx()*b.Dy()*3))
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// Extract recovers the message hidden in the uploaded PNG.
func (h *Handler) Extract(c *gin.Context) {
	if err := h.parseForm(c); err != nil {
		h.fail(c, err)
		return
	}
	defer h.cleanupForm(c)

	if !hasFile(c) {
		h.fail(c, badRequest("No file selected"))
		return
	}

	key, err := h.formKey(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	up, err := h.readUpload(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	message, err := stego.ExtractMessage(up.image, key)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

// Capacity reports how much the uploaded PNG can carry.
func (h *Handler) Capacity(c *gin.Context) {
	if err := h.parseForm(c); err != nil {
		h.fail(c, err)
		return
	}
	defer h.cleanupForm(c)

	up, err := h.readUpload(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	info, err := stego.Capacity(up.image)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, CapacityResponse{Success: true, Capacity: info})
}
