package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zombor/inventory-updater/internal/inventory"
)

const (
	maxFormSize      = int64(50 << 20)
	defaultScanLimit = 50
	maxScanLimit     = 500
)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// jsonError writes {"error": message}
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// jsonRenderer presents an outcome as the body of an HTTP response
type jsonRenderer struct {
	w http.ResponseWriter
}

func (j jsonRenderer) Render(outcome *inventory.Outcome) error {
	j.w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(j.w).Encode(outcome)
}

var _ inventory.Renderer = jsonRenderer{}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		corsError(w, "Not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleScan runs one barcode through the workflow
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Barcode string `json:"barcode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// a dropped client must not abort a lookup or update halfway
	outcome := s.service.Scan(context.WithoutCancel(r.Context()), strings.TrimRight(req.Barcode, "\r\n"))
	if err := (jsonRenderer{w: w}).Render(outcome); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleListScans returns the most recent journaled scans
func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	limit := defaultScanLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			jsonError(w, "limit must be a positive number", http.StatusBadRequest)
			return
		}
		limit = min(n, maxScanLimit)
	}

	scans := []*inventory.Outcome{}
	if s.journal != nil {
		recent, err := s.journal.RecentScans(limit)
		if err != nil {
			slog.Error("Error listing scans", "error", err)
			corsError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if recent != nil {
			scans = recent
		}
	}

	writeJSON(w, http.StatusOK, scans)
}

// handleCapture reads barcodes from an uploaded photo or PDF and scans each
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if s.reader == nil {
		jsonError(w, "Barcode capture is not configured", http.StatusNotImplemented)
		return
	}

	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		if err.Error() == "http: request body too large" {
			errorMsg = "File is too large. Maximum size is 50MB."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		jsonError(w, "No file was selected. Please choose a file to upload.", http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > maxFormSize {
		jsonError(w, "File is too large. Maximum size is 50MB.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	contentType := detectContentType(header.Header.Get("Content-Type"), header.Filename)
	found, err := s.reader.ReadBarcodes(data, contentType)
	if err != nil {
		slog.Error("Error reading barcodes", "filename", header.Filename, "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	slog.Info("Barcodes captured", "filename", header.Filename, "count", len(found.Barcodes))

	outcomes := s.service.ScanBatch(context.WithoutCancel(r.Context()), found.Barcodes)
	writeJSON(w, http.StatusOK, map[string]any{
		"barcodes": found.Barcodes,
		"outcomes": outcomes,
	})
}

// detectContentType falls back to the file extension when the part has no type
func detectContentType(contentType, filename string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	return "application/octet-stream"
}

// handleSettings returns what the page needs to present outcomes
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	cfg := s.service.Config()
	writeJSON(w, http.StatusOK, map[string]any{
		"default_message": cfg.DefaultMessage,
		"policy":          cfg.Policy,
		"theme":           cfg.Theme,
		"statuses":        cfg.Statuses,
		"capture":         s.reader != nil,
		"idle":            s.service.Idle(),
	})
}

// handleListReports returns stored report names, newest first
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	names := []string{}
	if s.reports != nil {
		list, err := s.reports.List()
		if err != nil {
			slog.Error("Error listing reports", "error", err)
			corsError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		names = append(names, list...)
	}
	writeJSON(w, http.StatusOK, names)
}

// handleGetReport returns one report as text
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if s.reports == nil || name == "" {
		corsError(w, "Report not found", http.StatusNotFound)
		return
	}
	data, err := s.reports.Get(name)
	if err != nil {
		corsError(w, "Report not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(data)
}

// handleStaticCSS serves the CSS file
func (s *Server) handleStaticCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css")
	w.Write(appCSS)
}

// handleStaticJS serves the JavaScript file
func (s *Server) handleStaticJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(appJS)
}
