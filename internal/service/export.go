package service

import (
	"bytes"
	"context"
	"fmt"

	"absence-tracker/internal/access"
	"absence-tracker/pkg/period"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Absences"

var exportHeader = []any{"Nom", "Prénom", "Email", "Début", "Fin", "Jours", "Jours ouvrés", "Motif", "Statut"}

// ExportService выгружает заявки всех сотрудников в XLSX
type ExportService struct {
	absences *AbsenceService
	calendar *CalendarService
}

func NewExportService(absences *AbsenceService, calendar *CalendarService) *ExportService {
	return &ExportService{absences: absences, calendar: calendar}
}

// AbsencesXLSX возвращает книгу с одной строкой на заявку (только для админов)
func (s *ExportService) AbsencesXLSX(ctx context.Context, grant access.AdminGrant) ([]byte, error) {
	groups, err := s.absences.ListAll(ctx, grant)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, g := range groups {
		for _, a := range g.Absences {
			p := a.Period()
			workingDays, err := s.calendar.WorkingDays(ctx, p)
			if err != nil {
				return nil, err
			}
			values := []any{
				g.User.Name,
				g.User.FirstName,
				g.User.Email,
				p.Start.Format(period.ISOLayout),
				p.End.Format(period.ISOLayout),
				p.Days(),
				workingDays,
				a.Reason,
				a.StatusLabel(),
			}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row, err)
			}
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
