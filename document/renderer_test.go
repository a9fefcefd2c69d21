package document

import "testing"

func TestForExt(t *testing.T) {
	tests := []struct {
		ext  string
		want string // expected renderer extension, "" for nil
	}{
		{".pdf", ".pdf"},
		{"pdf", ".pdf"},
		{"PDF", ".pdf"},
		{".xlsx", ".xlsx"},
		{"xlsx", ".xlsx"},
		{".docx", ""},
		{"", ""},
	}
	for _, tt := range tests {
		r := ForExt(tt.ext)
		if tt.want == "" {
			if r != nil {
				t.Errorf("ForExt(%q) = %v, want nil", tt.ext, r.Name())
			}
			continue
		}
		if r == nil {
			t.Fatalf("ForExt(%q) = nil, want %q renderer", tt.ext, tt.want)
		}
		if r.Ext() != tt.want {
			t.Errorf("ForExt(%q).Ext() = %q, want %q", tt.ext, r.Ext(), tt.want)
		}
	}
}

func TestAllIncludesBothFormats(t *testing.T) {
	exts := make(map[string]bool)
	for _, r := range All() {
		exts[r.Ext()] = true
		if r.Name() == "" || r.MimeType() == "" {
			t.Errorf("renderer %q has empty metadata", r.Ext())
		}
	}
	if !exts[".pdf"] || !exts[".xlsx"] {
		t.Fatalf("registry missing a built-in renderer: %v", exts)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"normal.pdf", "normal.pdf"},
		{"path/to/file.pdf", "path_to_file.pdf"},
		{"", "unnamed"},
		{"a:b*c?d", "a_b_c_d"},
	}
	for _, tt := range tests {
		got := SanitizeFilename(tt.input)
		if got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
