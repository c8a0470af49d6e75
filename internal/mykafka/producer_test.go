package mykafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Skotchmaster/diamond_shop/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_Validation(t *testing.T) {
	_, err := NewProducer(nil, "topic")
	require.Error(t, err)
	_, err = NewProducer([]string{"localhost:9092"}, "")
	require.Error(t, err)

	p, err := NewProducer([]string{"localhost:9092"}, "diamond.activity")
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestEncode(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msg, err := encode(events.Event{Name: events.OrderPlaced, Key: "u-1", UserID: "u-1", Attributes: map[string]any{"orderId": "o-9"}, At: at})
	require.NoError(t, err)

	assert.Equal(t, []byte("u-1"), msg.Key)
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "order.placed", string(msg.Headers[0].Value))

	var back events.Event
	require.NoError(t, json.Unmarshal(msg.Value, &back))
	assert.Equal(t, "o-9", back.Attributes["orderId"])
}

func TestEncode_StampsTime(t *testing.T) {
	msg, err := encode(events.Event{Name: events.LoggedOut, Key: "u-1"})
	require.NoError(t, err)
	assert.False(t, msg.Time.IsZero())
}
