// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	markitdown "github.com/conductor-oss/markitdown-go"
)

const headerFileExtension = "X-File-Extension"

// ConvertResponse is the body of a successful conversion.
type ConvertResponse struct {
	Title    string `json:"title,omitempty"`
	Markdown string `json:"markdown"`
}

// ConvertURLRequest is the body of POST /v1/convert/url.
type ConvertURLRequest struct {
	URL                string `json:"url"`
	YouTubeTranscript  *bool  `json:"youtube_transcript,omitempty"`
	TranscriptLanguage string `json:"transcript_language,omitempty"`
}

var reHTTPURL = regexp.MustCompile(`^https?://\S+$`)

// Validate checks the request fields.
func (r ConvertURLRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.URL, validation.Required, validation.Match(reHTTPURL).Error("must be an http or https URL")),
	)
}

// handleConvert converts the raw request body. The extension comes from the
// ext query parameter or the X-File-Extension header; url optionally names
// the page the body was fetched from.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	opts := s.defaults
	opts.FileExtension = r.URL.Query().Get("ext")
	if opts.FileExtension == "" {
		opts.FileExtension = r.Header.Get(headerFileExtension)
	}
	opts.URL = r.URL.Query().Get("url")

	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	s.logger.Debug("convert request", zap.String("ext", opts.FileExtension), zap.String("url", opts.URL))
	result, err := s.converter.ConvertReader(r.Context(), body, opts)
	if err != nil {
		s.respondConversionError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ConvertResponse{Title: result.Title, Markdown: result.Markdown})
}

func (s *Server) handleConvertURL(w http.ResponseWriter, r *http.Request) {
	var req ConvertURLRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := s.defaults
	if req.YouTubeTranscript != nil {
		opts.EnableYouTubeTranscript = *req.YouTubeTranscript
	}
	if req.TranscriptLanguage != "" {
		opts.YouTubeTranscriptLanguage = req.TranscriptLanguage
	}

	s.logger.Debug("convert url request", zap.String("url", req.URL))
	result, err := s.converter.ConvertURL(r.Context(), req.URL, opts)
	if err != nil {
		s.respondConversionError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ConvertResponse{Title: result.Title, Markdown: result.Markdown})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		validationErr  *markitdown.ValidationError
		unresolvedErr  *markitdown.UnresolvedTypeError
		missingTypeErr *markitdown.MissingContentTypeError
		unsupportedErr *markitdown.UnsupportedFormatError
		conversionErr  *markitdown.ConversionError
		fetchErr       *markitdown.FetchError
		tooLargeErr    *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLargeErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &validationErr), errors.As(err, &unresolvedErr):
		return http.StatusBadRequest
	case errors.As(err, &unsupportedErr):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &conversionErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fetchErr), errors.As(err, &missingTypeErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) respondConversionError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("conversion failed", zap.Error(err))
	} else {
		s.logger.Debug("conversion rejected", zap.Int("status", status), zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
