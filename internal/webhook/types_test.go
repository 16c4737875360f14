package webhook

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGamesListID(t *testing.T) {
	assert.Equal(t, "U1_GamesList", GamesListID("U1"))
}

func TestRoomRecord_EntriesRoundTrip(t *testing.T) {
	record := &RoomRecord{
		Env:         EnvSnapshot{Region: "EU", AppId: "app-1", WebhooksVersion: "1.2"},
		RoomOptions: []byte(`{"MaxPlayers":4}`),
		Creation:    Creation{Timestamp: "ts", UserId: "U1", Type: TypeCreate},
		Actors:      map[int]Actor{1: {UserId: "U1"}},
		NextActorNr: 2,
		LoadEvents:  map[string]LoadEvent{"ts2": {ActorNr: 2, UserId: "U2"}},
		State:       `{"score":1}`,
	}

	entries := record.Entries()
	// State是字符串，作为条目值原样下行
	assert.Equal(t, `{"score":1}`, entries["State"])

	// 经存储编码再还原
	encoded := make(map[string]string, len(entries))
	for key, value := range entries {
		if s, ok := value.(string); ok {
			encoded[key] = s
			continue
		}
		data, err := json.Marshal(value)
		require.NoError(t, err)
		encoded[key] = string(data)
	}

	parsed, err := ParseRecordEntries(encoded)
	require.NoError(t, err)
	assert.Equal(t, record.Env, parsed.Env)
	assert.JSONEq(t, string(record.RoomOptions), string(parsed.RoomOptions))
	assert.Equal(t, record.Creation, parsed.Creation)
	assert.Equal(t, record.Actors, parsed.Actors)
	assert.Equal(t, record.NextActorNr, parsed.NextActorNr)
	assert.Equal(t, record.LoadEvents, parsed.LoadEvents)
	assert.Equal(t, record.State, parsed.State)
}

func TestRoomRecord_EntriesOmitAbsentFields(t *testing.T) {
	record := &RoomRecord{NextActorNr: 2}
	entries := record.Entries()
	assert.NotContains(t, entries, "LoadEvents")
	assert.NotContains(t, entries, "State")
}

func TestRoomWebhookRequest_StateText(t *testing.T) {
	req := &RoomWebhookRequest{}
	assert.Empty(t, req.StateText())

	req.State = []byte(`"blob"`)
	assert.Equal(t, "blob", req.StateText())

	req.State = []byte(`{"score":1}`)
	assert.Equal(t, `{"score":1}`, req.StateText())
}

func TestLeaveReasons_Table(t *testing.T) {
	assert.Len(t, LeaveReasons, 12)
	assert.Equal(t, "0", LeaveReasons["ClientDisconnect"])
	assert.Equal(t, "105", LeaveReasons["PluginFailedJoin"])
}
