package catalog_repo

import (
	"context"
	"testing"

	"facturago/internal/core/apperror"
)

type testEntity struct{}

func (testEntity) Validate(context.Context) error { return nil }

func newTestRepo() *BaseCatalogRepo[testEntity] {
	return NewBaseCatalogRepo(nil, "test_table",
		[]string{"id", "owner_id", "version", "name", "code", "created_at"},
		func() testEntity { return testEntity{} })
}

func TestParseOrderBy(t *testing.T) {
	repo := newTestRepo()

	tests := []struct {
		name    string
		orderBy string
		want    string
		wantErr bool
	}{
		{name: "empty defaults to name", orderBy: "", want: "name ASC"},
		{name: "plain column ascending", orderBy: "code", want: "code ASC"},
		{name: "dash prefix descending", orderBy: "-created_at", want: "created_at DESC"},
		{name: "unknown column rejected", orderBy: "evil; DROP TABLE", wantErr: true},
		{name: "unknown descending rejected", orderBy: "-nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.parseOrderBy(tt.orderBy)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseOrderBy(%q) expected error, got %q", tt.orderBy, got)
				}
				if !apperror.IsAppError(err) {
					t.Errorf("parseOrderBy(%q) error is not an AppError: %v", tt.orderBy, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseOrderBy(%q) failed: %v", tt.orderBy, err)
			}
			if got != tt.want {
				t.Errorf("parseOrderBy(%q)\nwant: %s\ngot:  %s", tt.orderBy, tt.want, got)
			}
		})
	}
}

func TestColumnValues(t *testing.T) {
	repo := newTestRepo()

	data := map[string]any{
		"id":       "some-id",
		"owner_id": "owner",
		"version":  3,
		"name":     "Acme",
		"stray":    "not a column",
	}

	got := repo.columnValues(data, "id", "owner_id", "version")
	if len(got) != 1 {
		t.Fatalf("columnValues returned %d entries, want 1: %v", len(got), got)
	}
	if got["name"] != "Acme" {
		t.Errorf("name = %v, want Acme", got["name"])
	}

	// Without skips: stray keys still dropped, known columns kept.
	got = repo.columnValues(data)
	if _, ok := got["stray"]; ok {
		t.Error("stray key survived column filtering")
	}
	if len(got) != 4 {
		t.Errorf("columnValues returned %d entries, want 4: %v", len(got), got)
	}
}
