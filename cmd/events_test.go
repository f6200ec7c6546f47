package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jjudge-oj/userservice/internal/mq"
	"github.com/jjudge-oj/userservice/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestPrintEvent(t *testing.T) {
	var out bytes.Buffer
	handle := printEvent(&out, zaptest.NewLogger(t))

	userID := uuid.MustParse("937758e0-abe0-4dd4-827d-b868169bc160")
	data, err := json.Marshal(services.UserEvent{EventType: services.EventUserCreated, UserID: userID})
	require.NoError(t, err)

	require.NoError(t, handle(context.Background(), mq.Message{ID: "1", Data: data}))
	require.NoError(t, handle(context.Background(), mq.Message{ID: "2", Data: []byte("not json")}))

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var got services.UserEvent
	require.NoError(t, json.Unmarshal(lines[0], &got))
	assert.Equal(t, services.EventUserCreated, got.EventType)
	assert.Equal(t, userID, got.UserID)
}
