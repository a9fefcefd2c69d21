package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func uploadRequest(t *testing.T, filename, contents, format string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte(contents)); err != nil {
			t.Fatal(err)
		}
	}
	if format != "" {
		if err := w.WriteField("format", format); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/generate", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHandleGenerateXlsx(t *testing.T) {
	s := &server{}
	csv := "class,ageFrom,EE\nA,18,100\nB,64,200\n"
	rec := httptest.NewRecorder()
	s.handleGenerate(rec, uploadRequest(t, "rates.csv", csv, ".xlsx"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("Content-Type = %q", ct)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.Contains(cd, `attachment`) || !strings.Contains(cd, "rates.xlsx") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	// XLSX files are ZIP archives.
	if body := rec.Body.Bytes(); len(body) < 4 || body[0] != 'P' || body[1] != 'K' {
		t.Error("response body is not an xlsx file")
	}
}

func TestHandleGenerateRejectsGet(t *testing.T) {
	s := &server{}
	rec := httptest.NewRecorder()
	s.handleGenerate(rec, httptest.NewRequest(http.MethodGet, "/api/generate", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestHandleGenerateMissingFile(t *testing.T) {
	s := &server{}
	rec := httptest.NewRecorder()
	s.handleGenerate(rec, uploadRequest(t, "", "", ".xlsx"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleGenerateBadHeader(t *testing.T) {
	s := &server{}
	rec := httptest.NewRecorder()
	s.handleGenerate(rec, uploadRequest(t, "rates.csv", "state,EE\nCA,100\n", ".xlsx"))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["error"] == "" {
		t.Error("error message missing from response")
	}
	if !strings.Contains(resp["hint"], "class") || !strings.Contains(resp["hint"], "ageFrom") {
		t.Errorf("hint = %q, want required column names", resp["hint"])
	}
}

func TestHandleGenerateUnsupportedFormat(t *testing.T) {
	s := &server{}
	rec := httptest.NewRecorder()
	s.handleGenerate(rec, uploadRequest(t, "rates.csv", "class,ageFrom\nA,18\n", ".docx"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleInfo(t *testing.T) {
	s := &server{}
	rec := httptest.NewRecorder()
	s.handleInfo(rec, httptest.NewRequest(http.MethodGet, "/api/info", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Name    string `json:"name"`
		Version string `json:"version"`
		Formats []struct {
			Ext string `json:"ext"`
		} `json:"formats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Name != "allowance" || resp.Version != version {
		t.Errorf("unexpected info payload: %+v", resp)
	}
	exts := make(map[string]bool)
	for _, f := range resp.Formats {
		exts[f.Ext] = true
	}
	if !exts[".pdf"] || !exts[".xlsx"] {
		t.Errorf("formats = %v, want .pdf and .xlsx", exts)
	}
}

func TestHandleIndex(t *testing.T) {
	s := &server{basePath: "/allowance"}
	rec := httptest.NewRecorder()
	s.handleIndex(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "{{BASE_PATH}}") || strings.Contains(body, "{{VERSION}}") {
		t.Error("template placeholders not substituted")
	}
	if !strings.Contains(body, "/allowance/static/app.js") {
		t.Error("base path not applied to asset URLs")
	}

	rec = httptest.NewRecorder()
	s.handleIndex(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status for unknown path = %d, want 404", rec.Code)
	}
}
