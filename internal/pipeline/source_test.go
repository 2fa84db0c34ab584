package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "order.txt")
	if err := os.WriteFile(path, []byte("\ufeff예약자명 홍길동\nKimchi 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := ReadSource(path, 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if src.IsHTML {
		t.Error("Expected plain text source")
	}
	if strings.HasPrefix(src.Text, "\ufeff") {
		t.Error("Expected BOM stripped")
	}
	if src.Name != path {
		t.Errorf("Expected name %s, got %s", path, src.Name)
	}
}

func TestReadSource_Missing(t *testing.T) {
	if _, err := ReadSource(filepath.Join(t.TempDir(), "nope.txt"), 0); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestReadFrom_SizeLimit(t *testing.T) {
	src, err := ReadFrom("big.txt", strings.NewReader("Kimchi 2\nSpinach Namul 3"), 8)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if src.Text != "Kimchi 2" {
		t.Errorf("Expected text truncated to limit, got %q", src.Text)
	}
}

func TestNewSource_HTML(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		isHTML bool
		want   bool
	}{
		{"plain", "Kimchi 2", false, false},
		{"detected", "<div>Kimchi 2</div><br>", false, true},
		{"declared", "Kimchi 2", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource("x", tt.raw, tt.isHTML)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if src.IsHTML != tt.want {
				t.Errorf("Expected IsHTML %v, got %v", tt.want, src.IsHTML)
			}
			if !strings.Contains(src.Text, "Kimchi 2") {
				t.Errorf("Expected visible text, got %q", src.Text)
			}
		})
	}
}

func TestNewSource_Empty(t *testing.T) {
	for _, raw := range []string{"", "   ", "<html><body><script>x()</script></body></html>"} {
		if _, err := NewSource("x", raw, false); !errors.Is(err, ErrEmptySource) {
			t.Errorf("Expected ErrEmptySource for %q, got %v", raw, err)
		}
	}
}

func TestSourceName(t *testing.T) {
	tests := map[string]string{
		"/tmp/orders/jan 30.txt": "jan-30",
		"mail.html":              "mail",
		"stdin":                  "stdin",
		"":                       "order",
	}
	for in, want := range tests {
		if got := SourceName(in); got != want {
			t.Errorf("SourceName(%q): expected %s, got %s", in, want, got)
		}
	}
}
