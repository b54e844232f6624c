package workers

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ asynq.Logger = (*AsynqLogger)(nil)

func TestAsynqLogger_TagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewAsynqLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	l.Debug("hidden")
	l.Warn("queue ", "default", " paused")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "asynq", entry["component"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "queue default paused", entry["message"])
}
