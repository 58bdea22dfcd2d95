package points

import (
	"testing"

	"github.com/sssohn/pointsd/internal/models"
)

func testCatalog() *Catalog {
	return NewCatalog([]models.Reason{
		{Text: "지각", Type: models.PointDemerit, Label: "지각", IsActive: true},
		{Text: "선행", Type: models.PointMerit, Label: "선행", IsActive: true},
		{Text: "구두 경고", Type: models.PointDemerit, Label: "구두 경고", IsActive: false},
	})
}

func TestCatalogLabel(t *testing.T) {
	c := testCatalog()
	if got := c.Label("지각", models.PointDemerit); got != "지각" {
		t.Errorf("Label(지각) = %q", got)
	}
	if got := c.Label("선행", models.PointMerit); got != "선행" {
		t.Errorf("Label(선행) = %q", got)
	}
}

func TestCatalogFallback(t *testing.T) {
	c := testCatalog()
	if got := c.Label("없는 사유", models.PointDemerit); got != labelOtherDemerit {
		t.Errorf("unknown demerit reason = %q, want %q", got, labelOtherDemerit)
	}
	if got := c.Label("없는 사유", models.PointMerit); got != labelOtherMerit {
		t.Errorf("unknown merit reason = %q, want %q", got, labelOtherMerit)
	}
}

func TestCatalogTypeMismatchFallsBack(t *testing.T) {
	// A reason filed under the wrong category must not borrow the other
	// category's label.
	c := testCatalog()
	if got := c.Label("지각", models.PointMerit); got != labelOtherMerit {
		t.Errorf("Label(지각, merit) = %q, want %q", got, labelOtherMerit)
	}
}

func TestCatalogExcludesInactive(t *testing.T) {
	c := testCatalog()
	if got := c.Label("구두 경고", models.PointDemerit); got != labelOtherDemerit {
		t.Errorf("inactive reason resolved to %q, want fallback", got)
	}
}
