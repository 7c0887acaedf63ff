// Package server exposes the merge pipeline over HTTP: upload many
// statement files, get back per-group merge summaries, download the merged
// workbooks.
package server

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/minhlq/saoke/pkg/config"
	"github.com/minhlq/saoke/pkg/merge"
	"github.com/minhlq/saoke/pkg/models"
	"github.com/minhlq/saoke/pkg/profile"
	"github.com/minhlq/saoke/pkg/reader"
	"github.com/minhlq/saoke/pkg/writer"
)

// Server handles HTTP requests for statement merging.
type Server struct {
	config   *config.Config
	logger   *log.Logger
	mux      *http.ServeMux
	template *template.Template
	profiles *profile.Set
	merger   *merge.Merger
	results  sync.Map // filename -> *models.Result
}

// New creates a new HTTP server.
func New(cfg *config.Config, profiles *profile.Set, logger *log.Logger) *Server {
	tmpl := template.Must(template.ParseGlob("templates/*.html"))
	return &Server{
		config:   cfg,
		logger:   logger,
		mux:      http.NewServeMux(),
		template: tmpl,
		profiles: profiles,
		merger:   merge.New(profiles, logger),
	}
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	s.setupRoutes()
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/", s.withLogging(s.handleHome))
	s.mux.HandleFunc("/api/merge", s.withLogging(s.handleMerge))
	s.mux.HandleFunc("/api/files/", s.withLogging(s.handleFiles))
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if err := s.template.ExecuteTemplate(w, "index.html", nil); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to render page", err)
	}
}

// groupSummary is the JSON view of one merged group.
type groupSummary struct {
	Group             string `json:"group"`
	File              string `json:"file"`
	Transactions      int    `json:"transactions"`
	DuplicatesRemoved int    `json:"duplicates_removed"`
	TotalInput        int    `json:"total_input"`
	DateFrom          string `json:"date_from"`
	DateTo            string `json:"date_to"`
}

type unitError struct {
	Unit   string `json:"unit"`
	Reason string `json:"reason"`
}

// handleMerge accepts a multipart upload of statement files, classifies and
// merges them per group, and reports per-unit errors alongside the
// successes. One bad file or group never fails the request.
func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to parse upload", err)
		return
	}
	files := r.MultipartForm.File["statements"]
	if len(files) == 0 {
		s.respondError(w, r, http.StatusBadRequest, "no files uploaded", nil)
		return
	}

	var docs []models.Document
	var errs []unitError
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			errs = append(errs, unitError{Unit: fh.Filename, Reason: "failed to open upload"})
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			errs = append(errs, unitError{Unit: fh.Filename, Reason: "failed to read upload"})
			continue
		}
		doc, err := reader.Read(data, fh.Filename)
		if err != nil {
			errs = append(errs, unitError{Unit: fh.Filename, Reason: err.Error()})
			continue
		}
		docs = append(docs, doc)
	}

	groups, classifyErrs := merge.GroupDocuments(s.profiles, docs, s.logger)
	for _, ce := range classifyErrs {
		errs = append(errs, unitError{Unit: ce.Filename, Reason: ce.Reason})
	}

	results, failures := s.merger.Run(groups)
	for _, fail := range failures {
		errs = append(errs, unitError{Unit: fail.Group, Reason: fail.Err.Error()})
	}

	summaries := make([]groupSummary, 0, len(results))
	for _, res := range results {
		s.results.Store(res.Filename(), res)
		summaries = append(summaries, groupSummary{
			Group:             res.Key(),
			File:              res.Filename(),
			Transactions:      len(res.Rows),
			DuplicatesRemoved: res.DuplicatesRemoved,
			TotalInput:        res.TotalInput,
			DateFrom:          res.MinDate.Format("02/01/2006"),
			DateTo:            res.MaxDate.Format("02/01/2006"),
		})
	}

	if err := s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"groups": summaries,
		"errors": errs,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// handleFiles serves the rendered workbook for a previously merged group.
func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/api/files/")
	value, ok := s.results.Load(name)
	if !ok {
		s.respondError(w, r, http.StatusNotFound, "unknown file", nil)
		return
	}
	res := value.(*models.Result)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := writer.Write(w, res); err != nil {
		s.logger.Warn("failed to stream workbook", "file", name, "err", err)
	}
}

func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path)
		next(w, r)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	if err != nil {
		s.logger.Warn(msg, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Warn(msg, "path", r.URL.Path)
	}
	if jsonErr := s.writeJSON(w, status, map[string]string{"status": "error", "error": msg}); jsonErr != nil {
		s.logger.Warn("failed to write error response", "err", jsonErr)
	}
}
