// Package fake provides test helpers shared by the packages of the module.
package fake

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// LogRecorder keeps the entries printed by a JSON logger so that a test can
// check what has been logged.
type LogRecorder struct {
	sync.Mutex
	buffer bytes.Buffer
}

// NewLogRecorder returns a recorder and a logger writing to it at the given
// level.
func NewLogRecorder(lvl zerolog.Level) (*LogRecorder, zerolog.Logger) {
	rec := &LogRecorder{}

	return rec, zerolog.New(rec).Level(lvl)
}

// Write implements io.Writer.
func (r *LogRecorder) Write(p []byte) (int, error) {
	r.Lock()
	defer r.Unlock()

	return r.buffer.Write(p)
}

// Entries returns the decoded entries in the order they have been printed.
func (r *LogRecorder) Entries(t *testing.T) []map[string]interface{} {
	r.Lock()
	defer r.Unlock()

	var entries []map[string]interface{}

	for _, line := range strings.Split(r.buffer.String(), "\n") {
		if line == "" {
			continue
		}

		entry := make(map[string]interface{})
		require.NoError(t, json.Unmarshal([]byte(line), &entry))

		entries = append(entries, entry)
	}

	return entries
}

// CheckMessage fails the test if no entry has the message with the given
// fields.
func (r *LogRecorder) CheckMessage(t *testing.T, msg string, fields map[string]interface{}) {
	for _, entry := range r.Entries(t) {
		if entry[zerolog.MessageFieldName] != msg {
			continue
		}

		match := true
		for k, v := range fields {
			if entry[k] != v {
				match = false
				break
			}
		}

		if match {
			return
		}
	}

	t.Fatalf("log %q with %v not found in %s", msg, fields, r.buffer.String())
}
