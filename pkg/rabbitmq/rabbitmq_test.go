package rabbitmq

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	body, err := Encode("post.created", map[string]interface{}{"id": "p1"}, at)
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(body, &ev))
	assert.Equal(t, "post.created", ev.Name)
	assert.True(t, at.Equal(ev.OccurredAt))
	assert.Equal(t, "p1", ev.Data["id"])
}

func TestAuditHandler(t *testing.T) {
	log, hook := test.NewNullLogger()
	var seen []string
	handler := AuditHandler(log, func(name string) { seen = append(seen, name) })

	body, err := Encode("user.created", map[string]interface{}{"id": "u1"}, time.Now())
	require.NoError(t, err)

	require.NoError(t, handler(amqp.Delivery{Body: body, RoutingKey: "user.created"}))
	assert.Equal(t, []string{"user.created"}, seen)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "audit", hook.LastEntry().Message)
	assert.Equal(t, "user.created", hook.LastEntry().Data["event"])
}

func TestAuditHandler_RejectsGarbage(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	err := AuditHandler(log, nil)(amqp.Delivery{Body: []byte("not json")})
	assert.Error(t, err)
}
