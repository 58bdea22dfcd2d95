package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/sssohn/pointsd/internal/models"
	"github.com/sssohn/pointsd/internal/points"
)

const ledgerSheet = "상벌점 내역"

var ledgerHeader = []string{"일시", "구분", "점수", "사유", "비고", "상태 라벨"}

// LedgerWorkbook renders one student's full ledger to a single-sheet xlsx.
func LedgerWorkbook(student *models.Account, entries []points.LedgerEntry) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for col, h := range ledgerHeader {
		cell := colName(col+1) + "1"
		if err := f.SetCellStr(ledgerSheet, cell, h); err != nil {
			return nil, fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	end := colName(len(ledgerHeader)) + "1"
	_ = f.SetCellStyle(ledgerSheet, "A1", end, bold)
	_ = f.AutoFilter(ledgerSheet, "A1:"+end, nil)

	for i, e := range entries {
		row := strconv.Itoa(i + 2)
		desc := ""
		if e.Description != nil {
			desc = *e.Description
		}
		cells := []string{
			e.CreatedAt.Format("2006-01-02 15:04"),
			string(e.Type),
			strconv.Itoa(e.Points),
			e.Reason,
			desc,
			e.Label,
		}
		for c, val := range cells {
			if err := f.SetCellStr(ledgerSheet, colName(c+1)+row, val); err != nil {
				return nil, fmt.Errorf("set row %d: %w", i+2, err)
			}
		}
	}

	// width heuristic: header length vs first rows
	for c := 1; c <= len(ledgerHeader); c++ {
		w := float64(len(ledgerHeader[c-1])) * 1.6
		if w < 12 {
			w = 12
		}
		if w > 40 {
			w = 40
		}
		_ = f.SetColWidth(ledgerSheet, colName(c), colName(c), w)
	}

	title := fmt.Sprintf("%s (%s)", student.Name, derefStr(student.StudentNo))
	_ = f.SetDocProps(&excelize.DocProperties{Title: title})
	return f, nil
}

func WorkbookBytes(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func colName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
