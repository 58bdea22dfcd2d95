package points

import (
	"testing"

	"github.com/sssohn/pointsd/internal/models"
)

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(7, nil)
	if s.StudentID != 7 || s.TotalMerit != 0 || s.TotalDemerit != 0 || s.NetScore != 0 || s.RecordCount != 0 {
		t.Fatalf("unexpected summary for empty ledger: %+v", s)
	}
}

func TestSummarizeMixedLedger(t *testing.T) {
	records := []models.PointRecord{
		{Type: models.PointMerit, Points: 5},
		{Type: models.PointDemerit, Points: -3},
		{Type: models.PointMerit, Points: 2},
		{Type: models.PointDemerit, Points: -1},
	}
	s := Summarize(1, records)
	if s.TotalMerit != 7 {
		t.Errorf("TotalMerit = %d, want 7", s.TotalMerit)
	}
	if s.TotalDemerit != 4 {
		t.Errorf("TotalDemerit = %d, want 4", s.TotalDemerit)
	}
	if s.NetScore != 3 {
		t.Errorf("NetScore = %d, want 3", s.NetScore)
	}
	if s.RecordCount != 4 {
		t.Errorf("RecordCount = %d, want 4", s.RecordCount)
	}
}

func TestSummarizeOrderIndependent(t *testing.T) {
	records := []models.PointRecord{
		{Type: models.PointMerit, Points: 10},
		{Type: models.PointDemerit, Points: -4},
		{Type: models.PointMerit, Points: 1},
	}
	reversed := []models.PointRecord{records[2], records[1], records[0]}

	a := Summarize(1, records)
	b := Summarize(1, reversed)
	if a != b {
		t.Fatalf("summary depends on record order: %+v vs %+v", a, b)
	}
}

func TestSummarizeDemeritSignNormalized(t *testing.T) {
	// The store keeps demerits negative, but the fold must tolerate a
	// positive magnitude too.
	for _, pts := range []int{-3, 3} {
		s := Summarize(1, []models.PointRecord{{Type: models.PointDemerit, Points: pts}})
		if s.TotalDemerit != 3 {
			t.Errorf("points=%d: TotalDemerit = %d, want 3", pts, s.TotalDemerit)
		}
		if s.NetScore != -3 {
			t.Errorf("points=%d: NetScore = %d, want -3", pts, s.NetScore)
		}
	}
}
