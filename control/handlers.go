package control

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sayandeep-bot/spectosoft/record"
	"github.com/sayandeep-bot/spectosoft/types"
)

// serviceResponse reports the outcome of a start/stop request.
// Running reflects the slot state after the operation; Changed is
// false when the request was an idempotent no-op.
type serviceResponse struct {
	Service string `json:"service"`
	Running bool   `json:"running"`
	Changed bool   `json:"changed"`
}

// errorResponse is the JSON body of non-2xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// recordingRequest overrides the configured recording parameters.
// Unset fields keep their configured values.
type recordingRequest struct {
	Width          *int    `json:"width"`
	Height         *int    `json:"height"`
	FPS            *int    `json:"fps"`
	SegmentSeconds *int    `json:"segment_seconds"`
	Container      *string `json:"container"`
	BitrateKbps    *int    `json:"bitrate_kbps"`
	FlipVertical   *bool   `json:"flip_vertical"`
	IncludeAudio   *bool   `json:"include_audio"`
}

func (s *Server) handleRecordingStart(w http.ResponseWriter, r *http.Request) {
	params, err := s.recordingParams(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	changed := s.cfg.Agent.StartRecording(params)
	writeJSON(w, http.StatusOK, serviceResponse{
		Service: "recording",
		Running: true,
		Changed: changed,
	})
}

// recordingParams merges a request body over the configured defaults.
// An empty body starts with the defaults untouched.
func (s *Server) recordingParams(body io.Reader) (record.Params, error) {
	params := s.cfg.Recording

	var req recordingRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return params, nil
		}
		return record.Params{}, fmt.Errorf("invalid request body: %w", err)
	}

	if req.Width != nil {
		params.Width = *req.Width
	}
	if req.Height != nil {
		params.Height = *req.Height
	}
	if req.FPS != nil {
		params.FPS = *req.FPS
	}
	if req.SegmentSeconds != nil {
		params.SegmentDuration = time.Duration(*req.SegmentSeconds) * time.Second
	}
	if req.Container != nil {
		container, err := types.ParseContainer(*req.Container)
		if err != nil {
			return record.Params{}, err
		}
		params.Container = container
	}
	if req.BitrateKbps != nil {
		params.BitrateKbps = *req.BitrateKbps
	}
	if req.FlipVertical != nil {
		params.FlipVertical = *req.FlipVertical
	}
	if req.IncludeAudio != nil {
		params.IncludeAudio = *req.IncludeAudio
	}
	return params, nil
}

// handleStart wraps a parameterless service start.
func (s *Server) handleStart(service string, start func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		changed := start()
		writeJSON(w, http.StatusOK, serviceResponse{
			Service: service,
			Running: true,
			Changed: changed,
		})
	}
}

// handleStop wraps a service stop.
func (s *Server) handleStop(service string, stop func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		changed := stop()
		writeJSON(w, http.StatusOK, serviceResponse{
			Service: service,
			Running: false,
			Changed: changed,
		})
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.cfg.Agent.Status()
	if err != nil {
		s.cfg.Logger.Error("status report failed", map[string]any{
			"error": err.Error(),
		})
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "status unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	// Status code is already on the wire; an encode failure here can
	// only truncate the body.
	_ = json.NewEncoder(w).Encode(v)
}
