package app

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sssohn/pointsd/internal/db"
	"github.com/sssohn/pointsd/internal/live"
	"github.com/sssohn/pointsd/internal/models"
)

// The stream endpoints are SSE views: one snapshot on connect, then a fresh
// snapshot after every store push for the subscribed topic. Subscription
// lifetime is the request lifetime; when the client goes away the hub
// subscription is released with it.

func (a *api) studentStream(c echo.Context) error {
	id, err := a.studentAccess(c)
	if err != nil {
		return err
	}
	return a.streamSnapshots(c, live.TopicRecords(id), func() (any, error) {
		summary, err := a.svc.Summary(c.Request().Context(), id)
		if err != nil {
			return nil, err
		}
		entries, err := a.svc.Ledger(c.Request().Context(), id)
		if err != nil {
			return nil, err
		}
		return echo.Map{"summary": summary, "records": entries}, nil
	})
}

// rosterStream re-derives the teacher's roster whenever class assignments or
// account rows change, so membership edits show up without a re-query.
func (a *api) rosterStream(c echo.Context) error {
	act := actor(c)
	if !act.Role.IsTeacher() {
		return echo.NewHTTPError(http.StatusForbidden, "roster is teacher-only")
	}
	return a.streamSnapshots(c, live.TopicRoster, func() (any, error) {
		classes, err := a.svc.RosterForTeacher(c.Request().Context(), act.ID)
		if err != nil {
			return nil, err
		}
		students, err := a.svc.StudentsForTeacher(c.Request().Context(), act.ID)
		if err != nil {
			return nil, err
		}
		views := make([]accountView, 0, len(students))
		for i := range students {
			views = append(views, viewOf(&students[i]))
		}
		return echo.Map{"classes": classes, "students": views}, nil
	})
}

func (a *api) requestStream(c echo.Context) error {
	act := actor(c)
	switch act.Role {
	case models.RoleHomeroomTeacher:
		return a.streamSnapshots(c, live.TopicHomeroom(act.ID), func() (any, error) {
			reqs, err := a.svc.PendingForHomeroom(c.Request().Context(), act.ID)
			return echo.Map{"requests": reqs}, err
		})
	case models.RoleSubjectTeacher:
		return a.streamSnapshots(c, live.TopicTeacher(act.ID), func() (any, error) {
			reqs, err := a.svc.RequestsByTeacher(c.Request().Context(), act.ID)
			return echo.Map{"requests": reqs}, err
		})
	default:
		return echo.NewHTTPError(http.StatusForbidden, "request stream is teacher-only")
	}
}

func (a *api) auditStream(c echo.Context) error {
	if actor(c).Role != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "audit log is admin-only")
	}
	return a.streamSnapshots(c, live.TopicAudit, func() (any, error) {
		entries, err := db.ListAuditEntries(c.Request().Context(), a.database, 100)
		return echo.Map{"entries": entries}, err
	})
}

func (a *api) streamSnapshots(c echo.Context, topic string, snapshot func() (any, error)) error {
	events, cancel := a.hub.Subscribe(topic, 32)
	defer cancel()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	if err := writeSnapshot(resp, snapshot); err != nil {
		return nil
	}
	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-events:
			if !ok {
				return nil
			}
			if err := writeSnapshot(resp, snapshot); err != nil {
				return nil
			}
		}
	}
}

func writeSnapshot(resp *echo.Response, snapshot func() (any, error)) error {
	data, err := snapshot()
	if err != nil {
		return err
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(resp, "data: %s\n\n", b); err != nil {
		return err
	}
	resp.Flush()
	return nil
}
