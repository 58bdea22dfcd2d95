package points

import (
	"context"
	"database/sql"

	"github.com/sssohn/pointsd/internal/db"
	"github.com/sssohn/pointsd/internal/models"
)

const (
	labelOtherMerit   = "other merit"
	labelOtherDemerit = "other demerit"
)

// Catalog maps free-text reasons to display labels. Reasons outside the
// catalog fall back to a generic label per category; the raw reason text is
// kept on the record either way.
type Catalog struct {
	byText map[string]models.Reason
}

func NewCatalog(reasons []models.Reason) *Catalog {
	m := make(map[string]models.Reason, len(reasons))
	for _, r := range reasons {
		if r.IsActive {
			m[r.Text] = r
		}
	}
	return &Catalog{byText: m}
}

func LoadCatalog(ctx context.Context, database *sql.DB) (*Catalog, error) {
	reasons, err := db.ListReasons(ctx, database, false)
	if err != nil {
		return nil, err
	}
	return NewCatalog(reasons), nil
}

func (c *Catalog) Label(reason string, typ models.PointType) string {
	if r, ok := c.byText[reason]; ok && r.Type == typ {
		return r.Label
	}
	if typ == models.PointDemerit {
		return labelOtherDemerit
	}
	return labelOtherMerit
}
