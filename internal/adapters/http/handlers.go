package httpadapter

import (
	"errors"
	"mime/multipart"
	"net/http"

	"stemsplit/internal/config"
	"stemsplit/internal/core/services"
)

// handleHealth reports service identity and the deployed model.
// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": config.ServiceName,
		"model":   s.cfg.Model,
	})
}

// handleSeparateVocals runs the full pipeline and streams the extracted
// vocal stem back as a binary attachment.
// POST /separate-vocals, multipart field "audio"
func (s *Server) handleSeparateVocals(w http.ResponseWriter, r *http.Request) {
	up, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer up.file.Close()

	result, err := s.pipeline.Process(r.Context(), up.name, up.file, services.ProcessOptions{})
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	s.streamArtifact(w, result)
}

// handleAnalyzeVocals runs the same pipeline but returns a JSON summary of
// the separation instead of the stem bytes.
// POST /analyze-vocals, multipart field "audio"
func (s *Server) handleAnalyzeVocals(w http.ResponseWriter, r *http.Request) {
	up, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer up.file.Close()

	result, err := s.pipeline.Process(r.Context(), up.name, up.file,
		services.ProcessOptions{AllowMissingStem: true})
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	s.summaryReport(w, result)
}

type upload struct {
	name string
	file multipart.File
}

// readUpload validates the multipart request and extracts the audio part.
// The size ceiling is enforced at the transport layer before anything is
// staged; on failure the error response has already been written.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (upload, bool) {
	if r.ContentLength > s.cfg.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large", "")
		return upload{}, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("audio")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large", "")
			return upload{}, false
		}
		writeError(w, http.StatusBadRequest, "No audio file provided", "")
		return upload{}, false
	}
	if header.Filename == "" {
		file.Close()
		writeError(w, http.StatusBadRequest, "No file selected", "")
		return upload{}, false
	}
	return upload{name: header.Filename, file: file}, true
}
