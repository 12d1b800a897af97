package infra

import (
	"strings"
	"testing"
)

func TestExtractMarker(t *testing.T) {
	query := `--sql 338921b9-1f4c-423b-a7d3-fce21e93b373
select 1;
`
	marker, trimmed, err := extractMarker(query)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marker != "338921b9-1f4c-423b-a7d3-fce21e93b373" {
		t.Fatalf("unexpected marker: %s", marker)
	}
	if strings.TrimSpace(trimmed) != "select 1;" {
		t.Fatalf("unexpected query body: %q", trimmed)
	}
}

func TestExtractMarkerRejectsUntaggedQuery(t *testing.T) {
	if _, _, err := extractMarker("select 1;"); err == nil {
		t.Fatal("expected error for missing marker")
	}
}
