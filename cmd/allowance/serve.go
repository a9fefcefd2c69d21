// serve.go implements the web interface: an upload form that accepts a
// rate file and returns the generated document as a download.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/reecedigiacomo/allowance/allowance"
	"github.com/reecedigiacomo/allowance/document"
	"github.com/reecedigiacomo/allowance/internal/config"
	"github.com/reecedigiacomo/allowance/web"
)

// maxUploadBytes caps an uploaded rate file at 10 MB.
const maxUploadBytes = 10 << 20

// columnHint is surfaced with loader failures so users can fix their file.
const columnHint = "required columns: class, ageFrom; optional: ageTo, EE, ES, EC1, EC2, ECmax, FA1, FA2, FAmax"

// server holds the state shared by the HTTP handlers.
type server struct {
	banner   []byte
	basePath string
}

// cmdServe starts the HTTP server and blocks until shutdown.
func cmdServe(cfg config.Config, port, basePath string) {
	basePath = strings.TrimSuffix(basePath, "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	// The banner is server configuration, loaded once at startup. A
	// missing banner demotes to a warning and documents render
	// without a banner region.
	banner, err := document.LoadBanner(cfg.Banner)
	if err != nil {
		slog.Warn("banner image unavailable, documents will have no banner", "ref", cfg.Banner, "err", err)
		banner = nil
	}

	s := &server{banner: banner, basePath: basePath}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/info", s.handleInfo)
	mux.HandleFunc("/api/generate", s.handleGenerate)

	staticFS, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: embedded static files missing: %v\n", err)
		os.Exit(1)
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	setupRelease(mux, shutdown)

	handler := http.Handler(mux)
	if basePath != "" {
		handler = http.StripPrefix(basePath, mux)
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("allowance web interface listening", "port", port, "base_path", basePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-shutdown
	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Warn("shutdown incomplete", "err", err)
	}
}

// handleIndex serves the upload form.
func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	page, err := web.StaticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "index page missing", http.StatusInternalServerError)
		return
	}
	html := strings.ReplaceAll(string(page), "{{BASE_PATH}}", s.basePath)
	html = strings.ReplaceAll(html, "{{VERSION}}", version)
	html = injectReleaseScript(html)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

// handleInfo reports the application name, version, and output formats.
func (s *server) handleInfo(w http.ResponseWriter, r *http.Request) {
	type formatInfo struct {
		Name string `json:"name"`
		Ext  string `json:"ext"`
	}
	var formats []formatInfo
	for _, renderer := range document.All() {
		formats = append(formats, formatInfo{Name: renderer.Name(), Ext: renderer.Ext()})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "allowance",
		"version": version,
		"formats": formats,
	})
}

// handleGenerate accepts an uploaded rate file and streams back the
// generated document as an attachment.
func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "POST required", "")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSONError(w, http.StatusRequestEntityTooLarge, "upload too large or malformed", "")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "no file uploaded", columnHint)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "could not read upload", "")
		return
	}

	format := r.FormValue("format")
	if format == "" {
		format = ".pdf"
	}
	renderer := document.ForExt(format)
	if renderer == nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("unsupported output format: %s", format), "")
		return
	}

	classes, table, err := allowance.Load(data)
	if err != nil {
		slog.Warn("rejected upload", "file", header.Filename, "err", err)
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error(), columnHint)
		return
	}

	out, err := renderer.Render(document.Spec{
		Title:   document.DefaultTitle,
		Classes: classes,
		Table:   table,
		Banner:  s.banner,
	})
	if err != nil {
		slog.Error("document generation failed", "file", header.Filename, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "document generation failed", "")
		return
	}

	name := strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	if name == "" || name == "." {
		name = "ICHRA_Allowance_Model"
	}
	filename := document.SanitizeFilename(name + renderer.Ext())

	slog.Info("document generated", "file", header.Filename, "format", renderer.Ext(),
		"classes", len(classes), "bytes", len(out))

	w.Header().Set("Content-Type", renderer.MimeType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(out)))
	w.Write(out)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg, hint string) {
	body := map[string]string{"error": msg}
	if hint != "" {
		body["hint"] = hint
	}
	writeJSON(w, status, body)
}
