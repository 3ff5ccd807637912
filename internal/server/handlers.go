package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/spigell/resume-rank/internal/logger"
	"github.com/spigell/resume-rank/internal/screening"
)

const maxBodyBytes = 1 << 20

var requiredJobFields = []string{"job_id", "title", "description", "required_skills", "preferred_skills", "experience_level"}

type handlers struct {
	extractor ResumeExtractor
	ranker    CandidateRanker
	logger    *zap.Logger
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type parseRequest struct {
	FilePath string `json:"file_path"`
}

type rankResponse struct {
	Rankings []screening.RankingScore `json:"rankings"`
}

func (h *handlers) health(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_ = writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Service: service})
	}
}

func (h *handlers) logFor(r *http.Request) *zap.Logger {
	return logger.WithRequestID(h.logger, middleware.GetReqID(r.Context()))
}

func (h *handlers) parse(w http.ResponseWriter, r *http.Request) {
	log := h.logFor(r)

	fields, err := readObject(r)
	if err != nil {
		h.writeError(w, log, err)
		return
	}

	var req parseRequest
	if raw, ok := fields["file_path"]; ok {
		if err := json.Unmarshal(raw, &req.FilePath); err != nil {
			h.writeError(w, log, invalid("file_path must be a string"))
			return
		}
	}
	if strings.TrimSpace(req.FilePath) == "" {
		h.writeError(w, log, invalid("file_path is required"))
		return
	}

	log.Info("parsing resume", zap.String(logger.FieldFileRef, req.FilePath))

	resume, err := h.extractor.Extract(r.Context(), req.FilePath)
	if err != nil {
		h.writeError(w, log, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, resume); err != nil {
		log.Error("writing parse response", zap.Error(err))
	}
}

func (h *handlers) rank(w http.ResponseWriter, r *http.Request) {
	log := h.logFor(r)

	fields, err := readObject(r)
	if err != nil {
		h.writeError(w, log, err)
		return
	}

	job, candidates, err := DecodeRankRequest(fields)
	if err != nil {
		h.writeError(w, log, err)
		return
	}

	log.Info("ranking resumes",
		zap.String(logger.FieldJobID, job.JobID),
		zap.String("title", job.Title),
		zap.Int("resumes", len(candidates)),
	)

	scores, err := h.ranker.Rank(r.Context(), job, candidates)
	if err != nil {
		h.writeError(w, log, err)
		return
	}

	log.Info("ranked resumes", zap.Int("rankings", len(scores)))

	if err := writeJSON(w, http.StatusOK, rankResponse{Rankings: scores}); err != nil {
		log.Error("writing rank response", zap.Error(err))
	}
}

func readObject(r *http.Request) (map[string]json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return ParseObject(body)
}

// ParseObject decodes a request body into its top-level fields.
func ParseObject(body []byte) (map[string]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, invalid("Request body is required")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, invalid("Request body must be a JSON object")
	}

	return fields, nil
}

// DecodeRankRequest validates a ranking request body and converts it into
// core types. The checks and messages match the ones returned over HTTP.
func DecodeRankRequest(fields map[string]json.RawMessage) (screening.JobPosting, []screening.CandidateProfile, error) {
	var job screening.JobPosting

	resumesRaw, ok := fields["resumes"]
	if !ok || isNull(resumesRaw) {
		return job, nil, invalid("resumes field is required")
	}

	jobRaw, ok := fields["job"]
	if !ok || isNull(jobRaw) {
		return job, nil, invalid("job field is required")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(resumesRaw, &items); err != nil || len(items) == 0 {
		return job, nil, invalid("resumes must be a non-empty list")
	}

	candidates := make([]screening.CandidateProfile, 0, len(items))
	for _, item := range items {
		var present map[string]json.RawMessage
		if err := json.Unmarshal(item, &present); err != nil {
			return job, nil, invalid("Each resume must be an object")
		}
		if _, ok := present["resume_id"]; !ok {
			return job, nil, invalid("Each resume must have a resume_id")
		}
		if _, ok := present["candidate_name"]; !ok {
			return job, nil, invalid("Each resume must have a candidate_name")
		}

		var candidate screening.CandidateProfile
		if err := json.Unmarshal(item, &candidate); err != nil {
			return job, nil, invalid(fmt.Sprintf("invalid resume: %v", err))
		}
		candidates = append(candidates, candidate)
	}

	var jobFields map[string]json.RawMessage
	if err := json.Unmarshal(jobRaw, &jobFields); err != nil {
		return job, nil, invalid("job must be an object")
	}
	for _, field := range requiredJobFields {
		if _, ok := jobFields[field]; !ok {
			return job, nil, invalid(fmt.Sprintf("job.%s is required", field))
		}
	}

	if err := json.Unmarshal(jobRaw, &job); err != nil {
		return job, nil, invalid(fmt.Sprintf("invalid job: %v", err))
	}

	return job, candidates, nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
