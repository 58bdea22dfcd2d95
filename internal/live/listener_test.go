package live

import (
	"encoding/json"
	"testing"
)

func TestTopicsForRouting(t *testing.T) {
	cases := []struct {
		table string
		row   string
		want  []string
	}{
		{"point_records", `{"student_id":7}`, []string{"records:7"}},
		{"point_requests", `{"homeroom_teacher_id":3,"requesting_teacher_id":5}`,
			[]string{"requests:homeroom:3", "requests:teacher:5"}},
		{"audit_log", "", []string{TopicAudit}},
		{"class_teachers", "", []string{TopicRoster}},
		{"accounts", "", []string{TopicRoster}},
	}
	for _, tc := range cases {
		got, err := topicsFor(Event{Table: tc.table, Row: json.RawMessage(tc.row)})
		if err != nil {
			t.Errorf("topicsFor(%s): %v", tc.table, err)
			continue
		}
		if len(got) != len(tc.want) {
			t.Errorf("topicsFor(%s) = %v, want %v", tc.table, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("topicsFor(%s)[%d] = %q, want %q", tc.table, i, got[i], tc.want[i])
			}
		}
	}
}

func TestTopicsForMalformedRow(t *testing.T) {
	// a broken row must surface as an error, not route to zero-id topics
	_, err := topicsFor(Event{Table: "point_records", Row: json.RawMessage(`{"student_id":`)})
	if err == nil {
		t.Fatal("malformed row was routed without error")
	}
	_, err = topicsFor(Event{Table: "point_requests", Row: nil})
	if err == nil {
		t.Fatal("empty row was routed without error")
	}
}
