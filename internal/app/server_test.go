package app

import (
	"net/http"
	"testing"
)

// Every live view the API promises has a stream route: per-student records,
// the roster, the request queues, and the audit log.
func TestStreamRoutesRegistered(t *testing.T) {
	s := NewServer(&Options{Addr: ":0", Env: "dev", DisableReqLogs: true})

	want := map[string]bool{
		"/v1/students/:id/stream": false,
		"/v1/roster/stream":       false,
		"/v1/requests/stream":     false,
		"/v1/audit/stream":        false,
	}
	for _, r := range s.app.Routes() {
		if r.Method != http.MethodGet {
			continue
		}
		if _, ok := want[r.Path]; ok {
			want[r.Path] = true
		}
	}
	for path, seen := range want {
		if !seen {
			t.Errorf("no GET route registered for %s", path)
		}
	}
}
