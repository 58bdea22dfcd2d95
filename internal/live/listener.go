package live

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const notifyChannel = "pointsd_events"

// Topic names consumed by the API's stream endpoints.
func TopicRecords(studentID int64) string  { return fmt.Sprintf("records:%d", studentID) }
func TopicHomeroom(teacherID int64) string { return fmt.Sprintf("requests:homeroom:%d", teacherID) }
func TopicTeacher(teacherID int64) string  { return fmt.Sprintf("requests:teacher:%d", teacherID) }

const (
	TopicAudit  = "audit"
	TopicRoster = "roster"
)

// Listen holds one dedicated connection on LISTEN and republishes every
// committed change into the hub. Reconnects with a flat backoff until the
// context ends.
func Listen(ctx context.Context, dsn string, hub *Hub, log *zap.Logger) {
	for {
		if err := listenOnce(ctx, dsn, hub, log); err != nil && ctx.Err() == nil {
			log.Warn("listener connection lost", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(3 * time.Second):
		}
	}
}

func listenOnce(ctx context.Context, dsn string, hub *Hub, log *zap.Logger) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close(context.Background()) }()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return err
	}
	log.Info("listening for store notifications")

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		var e Event
		if err := json.Unmarshal([]byte(n.Payload), &e); err != nil {
			log.Warn("bad notification payload", zap.Error(err))
			continue
		}
		topics, err := topicsFor(e)
		if err != nil {
			log.Warn("bad notification row", zap.String("table", e.Table), zap.Error(err))
			continue
		}
		for _, topic := range topics {
			hub.Publish(topic, e)
		}
	}
}

func topicsFor(e Event) ([]string, error) {
	switch e.Table {
	case "audit_log":
		return []string{TopicAudit}, nil
	case "class_teachers", "accounts":
		return []string{TopicRoster}, nil
	}

	var ids struct {
		StudentID         int64 `json:"student_id"`
		HomeroomTeacherID int64 `json:"homeroom_teacher_id"`
		RequestingTeacher int64 `json:"requesting_teacher_id"`
	}
	if err := json.Unmarshal(e.Row, &ids); err != nil {
		return nil, err
	}

	switch e.Table {
	case "point_records":
		return []string{TopicRecords(ids.StudentID)}, nil
	case "point_requests":
		return []string{
			TopicHomeroom(ids.HomeroomTeacherID),
			TopicTeacher(ids.RequestingTeacher),
		}, nil
	}
	return nil, nil
}
