package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jasonbahil/portfolio/internal/blob"
	"github.com/jasonbahil/portfolio/internal/types"
)

const (
	imagePrefix = "images/"
	imageRoute  = "/images/"

	// multipartOverhead leaves room for boundaries and the filename field
	multipartOverhead = 64 << 10
)

var (
	filenameInvalid = regexp.MustCompile(`[^a-z0-9._-]+`)
	filenameDashes  = regexp.MustCompile(`-{2,}`)
)

// splitFilename returns the sanitized stem and extension (without the dot) of
// name. Both keep only [a-z0-9._-]; the stem never starts with a dot or dash.
func splitFilename(name string) (stem, ext string) {
	name = strings.ToLower(strings.TrimSpace(path.Base(strings.ReplaceAll(name, `\`, "/"))))
	ext = path.Ext(name)
	stem = cleanFilenamePart(strings.TrimSuffix(name, ext))
	ext = strings.TrimRight(cleanFilenamePart(ext), ".-")
	return stem, ext
}

func cleanFilenamePart(s string) string {
	s = filenameInvalid.ReplaceAllString(s, "-")
	s = filenameDashes.ReplaceAllString(s, "-")
	return strings.TrimLeft(s, ".-")
}

func joinFilename(stem, ext string) string {
	if ext == "" {
		return stem
	}
	return stem + "." + ext
}

// sanitizeFilename returns the stored form of name, or "" when nothing usable
// is left of its stem.
func sanitizeFilename(name string) string {
	stem, ext := splitFilename(name)
	if stem == "" {
		return ""
	}
	return joinFilename(stem, ext)
}

// uploadFilename picks the stored name: the explicit filename field, else the
// uploaded file's name. A random stem replaces one that sanitizes to nothing,
// keeping the original extension.
func uploadFilename(requested, original string) string {
	if name := sanitizeFilename(requested); name != "" {
		return name
	}
	stem, ext := splitFilename(original)
	if stem == "" {
		stem = uuid.NewString()
	}
	return joinFilename(stem, ext)
}

func (s *Server) uploadLimitMessage() string {
	if s.cfg.UploadMaxBytes < 1<<20 {
		return fmt.Sprintf("File size must be less than %dKB", s.cfg.UploadMaxBytes>>10)
	}
	return fmt.Sprintf("File size must be less than %dMB", s.cfg.UploadMaxBytes>>20)
}

// handleUpload stores an image under images/<filename>. An existing file
// with the same name is replaced.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.UploadMaxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.rejectUpload(w, s.uploadLimitMessage())
			return
		}
		s.rejectUpload(w, "Invalid upload")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.rejectUpload(w, "No file uploaded")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		s.rejectUpload(w, "Only image files are allowed")
		return
	}
	if header.Size > s.cfg.UploadMaxBytes {
		s.rejectUpload(w, s.uploadLimitMessage())
		return
	}

	filename := uploadFilename(r.FormValue("filename"), header.Filename)
	info, err := s.blobs.Put(r.Context(), imagePrefix+filename, io.LimitReader(file, s.cfg.UploadMaxBytes), blob.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"original-filename": header.Filename},
	})
	if err != nil {
		s.metrics.UploadFinished("failed")
		s.logger.Error("failed to store upload", zap.String("filename", filename), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	s.metrics.UploadFinished("stored")
	s.logger.Info("image uploaded",
		zap.String("filename", filename),
		zap.Int64("size", info.Size),
		zap.String("driver", string(s.blobs.Driver())))

	s.jsonResponse(w, http.StatusOK, types.UploadResponse{
		Success:   true,
		ImagePath: imageRoute + filename,
		Filename:  filename,
		Size:      info.Size,
		Type:      contentType,
	})
}

func (s *Server) rejectUpload(w http.ResponseWriter, message string) {
	s.metrics.UploadFinished("rejected")
	s.errorResponse(w, http.StatusBadRequest, message)
}

// handleServeImage streams an uploaded image
func (s *Server) handleServeImage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" || sanitizeFilename(name) != name {
		s.errorResponse(w, http.StatusNotFound, "Image not found")
		return
	}

	info, body, err := s.blobs.Get(r.Context(), imagePrefix+name)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Image not found")
			return
		}
		s.logger.Error("failed to read image", zap.String("name", name), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Failed to read image")
		return
	}
	defer body.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.FormatInt(info.Size, 10))
	h.Set("Cache-Control", "public, max-age=86400")
	if info.ETag != "" {
		h.Set("ETag", `"`+info.ETag+`"`)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		s.logger.Debug("image stream interrupted", zap.String("name", name), zap.Error(err))
	}
}

// handleCheckImage reports whether an uploaded image exists.
// ?path=/images/<name>
func (s *Server) handleCheckImage(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query().Get("path")
	name, ok := strings.CutPrefix(p, imageRoute)
	if !ok || name == "" || sanitizeFilename(name) != name {
		s.errorResponse(w, http.StatusBadRequest, "Invalid image path")
		return
	}

	_, err := s.blobs.Head(r.Context(), imagePrefix+name)
	switch {
	case err == nil:
		s.jsonResponse(w, http.StatusOK, types.ImageCheckResponse{Path: p, Exists: true})
	case errors.Is(err, blob.ErrNotFound):
		s.jsonResponse(w, http.StatusOK, types.ImageCheckResponse{Path: p, Exists: false})
	default:
		s.logger.Error("failed to check image", zap.String("path", p), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Failed to check image")
	}
}
