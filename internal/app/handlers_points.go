package app

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sssohn/pointsd/internal/db"
	"github.com/sssohn/pointsd/internal/export"
	"github.com/sssohn/pointsd/internal/models"
	"github.com/sssohn/pointsd/internal/points"
)

type submitRequestReq struct {
	StudentID   int64   `json:"student_id" validate:"required,gt=0"`
	Type        string  `json:"type" validate:"required,oneof=merit demerit"`
	Points      int     `json:"points" validate:"required,gt=0"`
	Reason      string  `json:"reason" validate:"required"`
	Description *string `json:"description"`
}

type disposeRequestReq struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
}

func (a *api) roster(c echo.Context) error {
	act := actor(c)
	if !act.Role.IsTeacher() {
		return echo.NewHTTPError(http.StatusForbidden, "roster is teacher-only")
	}
	classes, err := a.svc.RosterForTeacher(c.Request().Context(), act.ID)
	if err != nil {
		return err
	}
	students, err := a.svc.StudentsForTeacher(c.Request().Context(), act.ID)
	if err != nil {
		return err
	}
	views := make([]accountView, 0, len(students))
	for i := range students {
		views = append(views, viewOf(&students[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"classes": classes, "students": views})
}

func (a *api) reasons(c echo.Context) error {
	reasons, err := db.ListReasons(c.Request().Context(), a.database, false)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"reasons": reasons})
}

func (a *api) studentSummary(c echo.Context) error {
	id, err := a.studentAccess(c)
	if err != nil {
		return err
	}
	summary, err := a.svc.Summary(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

func (a *api) studentRecords(c echo.Context) error {
	id, err := a.studentAccess(c)
	if err != nil {
		return err
	}
	entries, err := a.svc.Ledger(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"records": entries})
}

func (a *api) studentRecordsExport(c echo.Context) error {
	act := actor(c)
	if !act.Role.IsTeacher() {
		return echo.NewHTTPError(http.StatusForbidden, "export is teacher-only")
	}
	id, err := a.studentAccess(c)
	if err != nil {
		return err
	}
	student, err := db.GetStudentByID(c.Request().Context(), a.database, id)
	if err != nil {
		return err
	}
	if student == nil {
		return points.ErrNoSuchStudent
	}
	entries, err := a.svc.Ledger(c.Request().Context(), id)
	if err != nil {
		return err
	}
	wb, err := export.LedgerWorkbook(student, entries)
	if err != nil {
		return err
	}
	b, err := export.WorkbookBytes(wb)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="ledger.xlsx"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", b)
}

func (a *api) submitRequest(c echo.Context) error {
	act := actor(c)
	if act.Role != models.RoleSubjectTeacher {
		return points.ErrNotAssignedToClass
	}
	var req submitRequestReq
	if err := a.bindAndValidate(c, &req); err != nil {
		return err
	}
	created, err := a.svc.SubmitRequest(c.Request().Context(), act, points.SubmitInput{
		StudentID:   req.StudentID,
		Type:        models.PointType(req.Type),
		Points:      req.Points,
		Reason:      req.Reason,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// listRequests is role-shaped: subject teachers see what they filed, homeroom
// teachers what awaits them.
func (a *api) listRequests(c echo.Context) error {
	act := actor(c)
	ctx := c.Request().Context()
	switch act.Role {
	case models.RoleSubjectTeacher:
		reqs, err := a.svc.RequestsByTeacher(ctx, act.ID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"requests": reqs})
	case models.RoleHomeroomTeacher:
		reqs, err := a.svc.PendingForHomeroom(ctx, act.ID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"requests": reqs})
	default:
		return echo.NewHTTPError(http.StatusForbidden, "requests are teacher-only")
	}
}

func (a *api) disposeRequest(c echo.Context) error {
	act := actor(c)
	if act.Role != models.RoleHomeroomTeacher && act.Role != models.RoleAdmin {
		return points.ErrNotHomeroom
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bad request id")
	}
	var req disposeRequestReq
	if err := a.bindAndValidate(c, &req); err != nil {
		return err
	}
	disposed, err := a.svc.DisposeRequest(c.Request().Context(), act, id, points.Decision(req.Decision))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, disposed)
}

func (a *api) auditLog(c echo.Context) error {
	if actor(c).Role != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "audit log is admin-only")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	entries, err := db.ListAuditEntries(c.Request().Context(), a.database, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"entries": entries})
}

// studentAccess parses the :id param and enforces the read-scoping rules.
func (a *api) studentAccess(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "bad student id")
	}
	ok, err := a.svc.CanAccessStudent(c.Request().Context(), actor(c), id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, echo.NewHTTPError(http.StatusForbidden, "no access to this student")
	}
	return id, nil
}
