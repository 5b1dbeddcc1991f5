package auditlog

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestExportCSV(t *testing.T) {
	trail := tempTrail(t)
	ctx := context.Background()

	at := time.Date(2026, 8, 28, 9, 30, 15, 0, time.UTC)
	trail.now = func() time.Time { return at }
	trail.Log(ctx, Entry{
		Action:       ActionDisable,
		EntityType:   EntityPrincipal,
		EntityID:     "asmith",
		EntityName:   "Alice Smith",
		Result:       ResultFailure,
		ErrorMessage: `account locked, said "try later"`,
	})

	var buf strings.Builder
	if err := trail.ExportCSV(ctx, &buf, nil, nil); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("parsing export failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(rows))
	}

	if diff := cmp.Diff(csvHeader, rows[0]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	want := []string{
		"2026-08-28 09:30:15",
		"testadmin",
		ActionDisable,
		EntityPrincipal,
		"asmith",
		"Alice Smith",
		ResultFailure,
		`account locked, said "try later"`,
	}
	if diff := cmp.Diff(want, rows[1]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestExportCSV_DateRange(t *testing.T) {
	trail := tempTrail(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		at := base.AddDate(0, 0, i)
		trail.now = func() time.Time { return at }
		trail.Log(ctx, Entry{Action: ActionSignIn})
	}

	start := base.AddDate(0, 0, 1)
	var buf strings.Builder
	if err := trail.ExportCSV(ctx, &buf, &start, nil); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("parsing export failed: %v", err)
	}
	if len(rows) != 3 { // header + 2 records
		t.Fatalf("expected 2 exported records, got %d", len(rows)-1)
	}
}

func TestExportCSV_StorageFailurePropagates(t *testing.T) {
	trail := brokenTrail(t)

	var buf strings.Builder
	if err := trail.ExportCSV(context.Background(), &buf, nil, nil); err == nil {
		t.Error("expected error exporting from broken storage")
	}
}
