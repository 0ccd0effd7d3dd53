package compose

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDeclaredTags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docker-compose.yml")
	content := `
services:
  web:
    image: registry.local:5000/shop/web:v2.3
  worker:
    image: shop/worker
  db:
    image: postgres:16
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	tags, err := DeclaredTags(path)
	if err != nil {
		t.Fatalf("DeclaredTags: %v", err)
	}

	if tags["web"] != "v2.3" {
		t.Errorf("web tag = %q, want v2.3", tags["web"])
	}
	if tags["db"] != "16" {
		t.Errorf("db tag = %q, want 16", tags["db"])
	}
	if _, ok := tags["worker"]; ok {
		t.Error("untagged worker image should be omitted")
	}
}

func TestDeclaredTagsMissingFileIsNonEvent(t *testing.T) {
	tags, err := DeclaredTags(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("tags = %v, want empty", tags)
	}
}

func TestDeclaredTagsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docker-compose.yml")
	if err := os.WriteFile(path, []byte("services: [bad"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := DeclaredTags(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestImageTag(t *testing.T) {
	cases := []struct{ image, want string }{
		{"nginx", ""},
		{"nginx:1.27", "1.27"},
		{"registry.local:5000/app", ""},
		{"registry.local:5000/app:v1", "v1"},
	}
	for _, tc := range cases {
		if got := imageTag(tc.image); got != tc.want {
			t.Errorf("imageTag(%q) = %q, want %q", tc.image, got, tc.want)
		}
	}
}
