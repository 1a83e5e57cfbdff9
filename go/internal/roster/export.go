package roster

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mcdev12/icetime/go/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const rosterSheet = "Roster"

var exportHeaders = []string{"Status", "Line", "Position", "Name", "Nickname", "Email"}

// RosterExport is a generated workbook ready to be served as a download
type RosterExport struct {
	Filename string
	Data     *bytes.Buffer
}

// ExportRoster builds the xlsx roster of an event. Admins and event captains only.
func (a *App) ExportRoster(ctx context.Context, actor models.Actor, eventID uuid.UUID) (*RosterExport, error) {
	event, err := a.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		isCaptain, err := a.store.IsCaptain(ctx, eventID, actor.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to check captain: %w", err)
		}
		if !isCaptain {
			return nil, fmt.Errorf("%w: admin or event captain role required", ErrForbidden)
		}
	}

	entries, err := a.store.ListRoster(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}
	SortRosterEntries(entries)

	buf, err := BuildRosterWorkbook(entries)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("roster_%s_%s.xlsx",
		strings.ToLower(strings.ReplaceAll(event.League, " ", "_")),
		event.StartTime.In(a.loc).Format("2006-01-02"))
	return &RosterExport{Filename: filename, Data: buf}, nil
}

// BuildRosterWorkbook writes going and waitlisted entries, in the order given, to a
// single-sheet workbook. Requested entries are not part of the roster.
func BuildRosterWorkbook(entries []models.RosterEntry) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close roster workbook")
		}
	}()

	if err := f.SetSheetName("Sheet1", rosterSheet); err != nil {
		return nil, fmt.Errorf("failed to set sheet name: %w", err)
	}

	for i, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve header cell: %w", err)
		}
		if err := f.SetCellValue(rosterSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell: %w", err)
		}
	}

	row := 2
	for _, entry := range entries {
		if entry.Status != models.StatusGoing && entry.Status != models.StatusWaitlist {
			continue
		}
		for i, value := range exportRow(entry) {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve cell: %w", err)
			}
			if err := f.SetCellValue(rosterSheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to set cell value: %w", err)
			}
		}
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write roster workbook: %w", err)
	}
	return &buf, nil
}

func exportRow(entry models.RosterEntry) []any {
	var line, position, nickname any = "", "", ""
	if entry.Line != nil {
		line = *entry.Line
	}
	if entry.AssignedPosition != nil {
		position = *entry.AssignedPosition
	}
	if entry.Nickname != nil {
		nickname = *entry.Nickname
	}
	return []any{string(entry.Status), line, position, entry.FullName(), nickname, entry.Email}
}
