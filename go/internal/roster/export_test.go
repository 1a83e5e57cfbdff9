package roster

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

func TestExportRoster(t *testing.T) {
	f := newFixture(t)
	eventID := f.event(intPtr(2), false)
	a, b, c, d := f.member("a"), f.member("b"), f.member("c"), f.member("d")
	f.join(eventID, a)
	f.join(eventID, b)
	f.join(eventID, c)
	f.join(eventID, d)
	if _, err := f.app.SetLinePosition(f.ctx, f.admin, eventID, b.UserID, LinePositionUpdate{Line: intPtr(1), AssignedPosition: strPtr("G")}); err != nil {
		t.Fatalf("SetLinePosition() error = %v", err)
	}

	if _, err := f.app.ExportRoster(f.ctx, c, eventID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("member ExportRoster() error = %v, want ErrForbidden", err)
	}

	export, err := f.app.ExportRoster(f.ctx, f.admin, eventID)
	if err != nil {
		t.Fatalf("ExportRoster() error = %v", err)
	}
	if export.Filename != "roster_c_2026-03-03.xlsx" {
		t.Fatalf("filename = %q", export.Filename)
	}

	wb, err := excelize.OpenReader(export.Data)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer wb.Close()

	rows, err := wb.GetRows(rosterSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	want := [][]string{
		{"Status", "Line", "Position", "Name", "Nickname", "Email"},
		{"going", "1", "G", "b", "", "b@example.com"},
		{"going", "", "", "a", "", "a@example.com"},
		{"waitlist", "", "", "c", "", "c@example.com"},
		{"waitlist", "", "", "d", "", "d@example.com"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("export rows mismatch (-want +got):\n%s", diff)
	}
}
