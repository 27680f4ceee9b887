package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrations_Embedded(t *testing.T) {
	files, err := fs.Glob(Migrations, "*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no migrations embedded")
	}
	for _, name := range files {
		b, err := fs.ReadFile(Migrations, name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		s := string(b)
		if !strings.Contains(s, "-- +goose Up") || !strings.Contains(s, "-- +goose Down") {
			t.Fatalf("%s: missing goose annotations", name)
		}
	}
}

func TestMigrations_InitCreatesTables(t *testing.T) {
	b, err := fs.ReadFile(Migrations, "00001_init.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, table := range []string{"users", "blog_posts", "projects", "contact_messages", "revoked_tokens", "media"} {
		if !strings.Contains(string(b), "CREATE TABLE "+table+" (") {
			t.Errorf("table %s not created", table)
		}
	}
}
