package points

import "github.com/sssohn/pointsd/internal/models"

// Summarize folds a ledger slice into the derived summary. Merit records
// contribute their points to TotalMerit, demerit records their absolute value
// to TotalDemerit. Record order does not matter.
func Summarize(studentID int64, records []models.PointRecord) models.Summary {
	s := models.Summary{StudentID: studentID}
	for _, r := range records {
		switch r.Type {
		case models.PointMerit:
			s.TotalMerit += r.Points
		case models.PointDemerit:
			p := r.Points
			if p < 0 {
				p = -p
			}
			s.TotalDemerit += p
		}
		s.RecordCount++
	}
	s.NetScore = s.TotalMerit - s.TotalDemerit
	return s
}
