package codes

import (
	"strings"
	"testing"
)

func TestGenerateIdentifier(t *testing.T) {
	for _, prefix := range []string{"PROD", "ORD", "PUR"} {
		id, err := GenerateIdentifier(prefix)
		if err != nil {
			t.Fatalf("GenerateIdentifier(%q) error = %v", prefix, err)
		}
		if !strings.HasPrefix(id, prefix+"-") {
			t.Errorf("GenerateIdentifier(%q) = %q, missing prefix", prefix, id)
		}
		if len(id) != len(prefix)+1+IdentifierLength {
			t.Errorf("GenerateIdentifier(%q) = %q, unexpected length", prefix, id)
		}
		if !IsIdentifier(prefix, id) {
			t.Errorf("IsIdentifier(%q, %q) = false", prefix, id)
		}
	}
}

func TestGenerateIdentifierEmptyPrefix(t *testing.T) {
	if _, err := GenerateIdentifier(""); err == nil {
		t.Error("GenerateIdentifier(\"\") expected error")
	}
}

func TestIsIdentifier(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		in     string
		want   bool
	}{
		{"valid", "ORD", "ORD-AB12CD34", true},
		{"wrong prefix", "PUR", "ORD-AB12CD34", false},
		{"lowercase token", "ORD", "ORD-ab12cd34", false},
		{"short token", "ORD", "ORD-AB12", false},
		{"no dash", "ORD", "ORDAB12CD34", false},
		{"symbol", "ORD", "ORD-AB12CD3!", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsIdentifier(tt.prefix, tt.in); got != tt.want {
				t.Errorf("IsIdentifier(%q, %q) = %v, want %v", tt.prefix, tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateCode(t *testing.T) {
	if _, err := GenerateCode(0, "AB"); err != ErrInvalidLength {
		t.Errorf("GenerateCode(0) error = %v, want ErrInvalidLength", err)
	}
	if _, err := GenerateCode(4, ""); err != ErrEmptyCharset {
		t.Errorf("GenerateCode(empty charset) error = %v, want ErrEmptyCharset", err)
	}

	code, err := GenerateCode(32, "X")
	if err != nil {
		t.Fatalf("GenerateCode() error = %v", err)
	}
	if code != strings.Repeat("X", 32) {
		t.Errorf("GenerateCode() = %q", code)
	}
}

func TestGenerateIdentifierUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id, err := GenerateIdentifier("PROD")
		if err != nil {
			t.Fatalf("GenerateIdentifier() error = %v", err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate identifier %q after %d draws", id, i)
		}
		seen[id] = struct{}{}
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  prod-ab12cd34 "); got != "PROD-AB12CD34" {
		t.Errorf("NormalizeCode() = %q", got)
	}
}
