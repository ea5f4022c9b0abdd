package notify_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/nikolayk812/lpg-cart/internal/notify"
)

func TestMulti_FansOut(t *testing.T) {
	var buf bytes.Buffer
	recorder := &notify.Recorder{}
	n := notify.Multi{notify.NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil))), nil, recorder}

	n.Notify(t.Context(), domain.Notification{Level: domain.LevelError, Kind: domain.KindSyncFailed, Message: "sync failed"})
	n.Notify(t.Context(), domain.Notification{Level: domain.LevelBlocking, Kind: domain.KindValidationFailed, Message: "address missing"})

	assert.Equal(t, 1, recorder.Count(domain.KindSyncFailed))
	assert.Equal(t, 1, recorder.Count(domain.KindValidationFailed))
	assert.Len(t, recorder.Notifications(), 2)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))

	assert.Equal(t, "ERROR", first["level"])
	assert.Equal(t, "sync_failed", first["notification.kind"])
	assert.Equal(t, "WARN", second["level"])
	assert.Equal(t, "address missing", second["msg"])
}
