package app

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sssohn/pointsd/internal/auth"
	"github.com/sssohn/pointsd/internal/models"
)

type studentLoginReq struct {
	Name      string `json:"name" validate:"required"`
	BirthDate string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	StudentNo string `json:"student_no" validate:"required,len=5,numeric"`
}

type teacherLoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type accountView struct {
	ID        int64   `json:"id"`
	Role      string  `json:"role"`
	Name      string  `json:"name"`
	StudentNo *string `json:"student_no,omitempty"`
	Grade     *int    `json:"grade,omitempty"`
	ClassNum  *int    `json:"class_num,omitempty"`
	Email     *string `json:"email,omitempty"`
	Subject   *string `json:"subject,omitempty"`
}

func viewOf(a *models.Account) accountView {
	return accountView{
		ID:        a.ID,
		Role:      string(a.Role),
		Name:      a.Name,
		StudentNo: a.StudentNo,
		Grade:     a.Grade,
		ClassNum:  a.ClassNum,
		Email:     a.Email,
		Subject:   a.Subject,
	}
}

func sessionResponse(s *auth.Session) echo.Map {
	return echo.Map{
		"token":      s.Token,
		"expires_at": s.ExpiresAt,
		"account":    viewOf(s.Account),
	}
}

func (a *api) studentLogin(c echo.Context) error {
	var req studentLoginReq
	if err := a.bindAndValidate(c, &req); err != nil {
		return err
	}
	s, err := a.gate.StudentLogin(c.Request().Context(), req.Name, req.BirthDate, req.StudentNo)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse(s))
}

func (a *api) teacherLogin(c echo.Context) error {
	var req teacherLoginReq
	if err := a.bindAndValidate(c, &req); err != nil {
		return err
	}
	s, err := a.gate.TeacherLogin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse(s))
}

// restoreSession never errors toward the client: a bad, expired or slow
// lookup all come back as logged-out.
func (a *api) restoreSession(c echo.Context) error {
	token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if token == "" {
		return c.JSON(http.StatusOK, echo.Map{"authenticated": false})
	}
	s, err := a.gate.Restore(c.Request().Context(), token)
	if err != nil || s == nil {
		return c.JSON(http.StatusOK, echo.Map{"authenticated": false})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"authenticated": true,
		"account":       viewOf(s.Account),
	})
}

func (a *api) logout(c echo.Context) error {
	a.gate.Logout(c.Request().Context(), actor(c))
	return c.NoContent(http.StatusNoContent)
}
