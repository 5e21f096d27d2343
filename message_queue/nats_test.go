package message_queue

import (
	"context"
	"errors"
	"testing"
	"time"

	nkapi "github.com/heroiclabs/nakama-common/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRoundTrip(t *testing.T) {
	ts := time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)
	in := NewEvent("vip_wager", map[string]string{
		"user_id": "548b7190-b8e3-47d6-8b2f-6321c35cacb2",
		"amount":  "1500",
		"loss":    "200",
	}, ts)
	data, err := EncodeEvent(in)
	require.NoError(t, err)

	out, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, "vip_wager", out.GetName())
	assert.Equal(t, "1500", out.GetProperties()["amount"])
	assert.Equal(t, ts.Unix(), out.GetTimestamp().AsTime().Unix())
	assert.True(t, out.GetExternal())
}

func TestDecodeEventInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not_json", data: "hello"},
		{name: "no_name", data: `{"properties":{"a":"b"}}`},
		{name: "bad_properties", data: `{"name":"x","properties":[1,2]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEvent([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestDecodeEventIgnoresUnknownFields(t *testing.T) {
	evt, err := DecodeEvent([]byte(`{"name":"vip_wager","extra":1}`))
	require.NoError(t, err)
	assert.Equal(t, "vip_wager", evt.GetName())
}

func TestProcessMessage(t *testing.T) {
	svc := NewNatsService("")
	var got *nkapi.Event
	svc.Handle("vip.wager.completed", func(ctx context.Context, evt *nkapi.Event) error {
		got = evt
		return errors.New("handler errors are logged")
	})
	data, err := EncodeEvent(NewEvent("vip_wager", map[string]string{"amount": "10"}, time.Now()))
	require.NoError(t, err)

	svc.processMessage("other.subject", data)
	assert.Nil(t, got)

	svc.processMessage("vip.wager.completed", []byte("garbage"))
	assert.Nil(t, got)

	svc.processMessage("vip.wager.completed", data)
	require.NotNil(t, got)
	assert.Equal(t, "10", got.GetProperties()["amount"])
}

func TestNotConnected(t *testing.T) {
	svc := NewNatsService("")
	assert.False(t, svc.Connected())
	assert.ErrorIs(t, svc.Publish("a", []byte("b")), ErrNotConnected)
	assert.ErrorIs(t, svc.RegisterAllSubject(), ErrNotConnected)
	svc.PublishEvent("a", "b", nil)
	svc.Disconnect()
}
