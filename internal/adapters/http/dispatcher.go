package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"

	"stemsplit/internal/core/domain"
	"stemsplit/internal/core/services"
)

// streamArtifact sends the primary stem as an audio/mpeg attachment.
// Workspace release is deferred until the transfer has fully completed or
// the client aborted; releasing earlier would truncate the transfer.
func (s *Server) streamArtifact(w http.ResponseWriter, result *services.JobResult) {
	defer result.Release()

	f, err := os.Open(result.Primary.Path)
	if err != nil {
		s.logger.Error("failed to open vocal stem", "path", result.Primary.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.FormatInt(result.Primary.SizeBytes, 10))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="vocals_%s.mp3"`, result.Job.InputName))

	if _, err := io.Copy(w, f); err != nil {
		// Client abort mid-transfer; nothing to send anymore, cleanup
		// still runs through the deferred Release.
		s.logger.Warn("stem transfer interrupted", "job_id", result.Job.ID, "error", err)
	}
}

type summary struct {
	Success             bool    `json:"success"`
	Model               string  `json:"model"`
	InputFile           string  `json:"input_file"`
	InputSizeMB         float64 `json:"input_size_mb"`
	VocalSizeMB         float64 `json:"vocal_size_mb"`
	AccompanimentSizeMB float64 `json:"accompaniment_size_mb"`
	VocalExtracted      bool    `json:"vocal_extracted"`
	ProcessingTime      string  `json:"processing_time"`
}

// summaryReport releases the workspace synchronously (no further file
// access is needed) and returns the separation statistics.
func (s *Server) summaryReport(w http.ResponseWriter, result *services.JobResult) {
	var vocalSize, accompanimentSize int64
	if result.Primary != nil {
		vocalSize = result.Primary.SizeBytes
	}
	if result.Secondary != nil {
		accompanimentSize = result.Secondary.SizeBytes
	}
	result.Release()

	writeJSON(w, http.StatusOK, summary{
		Success:             true,
		Model:               result.Job.Model,
		InputFile:           result.Job.InputName,
		InputSizeMB:         toMB(result.Job.InputSize),
		VocalSizeMB:         toMB(vocalSize),
		AccompanimentSizeMB: toMB(accompanimentSize),
		VocalExtracted:      result.Primary != nil,
		ProcessingTime:      fmt.Sprintf("%.2fs", result.ProcessingTime.Seconds()),
	})
}

// respondPipelineError maps the pipeline error taxonomy onto the HTTP
// surface. The workspace was already released by the pipeline.
func (s *Server) respondPipelineError(w http.ResponseWriter, err error) {
	var toolErr *domain.ToolFailureError
	switch {
	case errors.Is(err, domain.ErrSeparationTimeout):
		writeError(w, http.StatusRequestTimeout, "Processing timeout - file too large", "")
	case errors.As(err, &toolErr):
		writeError(w, http.StatusInternalServerError, "Vocal separation failed", toolErr.Stderr)
	case errors.Is(err, domain.ErrArtifactNotFound):
		writeError(w, http.StatusInternalServerError, "Vocal stem extraction failed", "")
	default:
		s.logger.Error("unexpected pipeline error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorBody{Error: msg, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// toMB reports bytes as megabytes rounded to two decimal places.
func toMB(bytes int64) float64 {
	return math.Round(float64(bytes)/(1024*1024)*100) / 100
}
