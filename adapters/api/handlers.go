package api

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"waferplot/app"
	"waferplot/domain/measurement"
	"waferplot/internal/aggregation"
	"waferplot/internal/config"
	"waferplot/internal/errors"
)

// uploadField is the multipart field carrying the workbook
const uploadField = "file"

var allowedExtensions = map[string]bool{".xlsx": true, ".xlsm": true, ".csv": true}

type groupsResponse struct {
	RunID      string                    `json:"run_id"`
	Stats      aggregation.Stats         `json:"stats"`
	Groups     []measurement.DeviceGroup `json:"groups"`
	Boxes      []measurement.SpecBox     `json:"boxes"`
	Incomplete map[string]int            `json:"incomplete"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGroups aggregates an uploaded sheet and returns its paired device groups
func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	result, err := s.aggregateUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := groupsResponse{
		RunID:      uuid.NewString(),
		Stats:      result.Stats,
		Groups:     make([]measurement.DeviceGroup, 0, len(result.Groups)),
		Boxes:      []measurement.SpecBox{},
		Incomplete: make(map[string]int, len(result.Groups)),
	}
	for _, code := range result.Codes() {
		resp.Groups = append(resp.Groups, result.Groups[code])
		if box, ok := result.Boxes[code]; ok {
			resp.Boxes = append(resp.Boxes, box)
		}
		resp.Incomplete[code] = result.Incomplete(code)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleScatter aggregates an uploaded sheet and answers with the scatter chart PNG
func (s *Server) handleScatter(w http.ResponseWriter, r *http.Request) {
	result, err := s.aggregateUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts, err := s.scatterOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	sel, err := s.service.RenderScatter(r.Context(), &buf, result, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	labels := make([]string, len(sel.Tracked))
	for i, l := range sel.Tracked {
		labels[i] = l.String()
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Run-ID", uuid.NewString())
	w.Header().Set("X-Plotted-Codes", strings.Join(sel.Codes, ","))
	w.Header().Set("X-Tracked-Labels", strings.Join(labels, ","))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[API] failed to write scatter response: %v", err)
	}
}

func (s *Server) aggregateUpload(w http.ResponseWriter, r *http.Request) (*aggregation.Result, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.InvalidInput(fmt.Sprintf("upload exceeds %d MB", s.config.MaxUploadBytes>>20))
		}
		return nil, errors.InvalidInput("expected a multipart form upload")
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("no file uploaded in field %q", uploadField))
	}
	defer file.Close()

	if !allowedExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		return nil, errors.InvalidInput("only Excel (.xlsx, .xlsm) and CSV (.csv) files are allowed")
	}

	layout := s.config.Layout
	if v := r.FormValue("index_row"); v != "" {
		row, err := strconv.Atoi(v)
		if err != nil || row < 0 {
			return nil, errors.InvalidInput("index_row must be a non-negative integer")
		}
		layout.IndexRow = row
	}

	log.Printf("[API] aggregating upload %s (%d bytes)", header.Filename, header.Size)
	return s.service.AggregateUpload(r.Context(), header.Filename, file, r.FormValue("sheet"), layout)
}

// scatterOptions overlays request parameters on the configured defaults
func (s *Server) scatterOptions(r *http.Request) (app.ScatterOptions, error) {
	opts := s.config.Scatter
	if v := r.FormValue("codes"); v != "" {
		opts.Codes = config.SplitList(v)
	}
	if v := r.FormValue("tracked"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil || k < 1 {
			return opts, errors.InvalidInput("tracked must be a positive integer")
		}
		opts.TrackedCapacity = k
	}
	if v := r.FormValue("max_index"); v != "" {
		m, err := strconv.ParseFloat(v, 64)
		if err != nil || m < 0 {
			return opts, errors.InvalidInput("max_index must be a non-negative number")
		}
		opts.MaxIndex = m
	}
	if v := r.FormValue("title"); v != "" {
		opts.Style.Title = v
	}
	return opts, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	if !errors.IsAppError(err) {
		err = errors.WithCode(errors.CodeInternalError, err)
	}
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeReadError:
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		log.Printf("[API] request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}
