//go:build integration

package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"veriport/pkg/testutil/containers"

	"veriport/internal/platform/config"
)

func TestKafkaSinkProducesAuditEvents(t *testing.T) {
	rp := containers.GetManager().GetRedpanda(t)

	topic := "veriport.audit.test"
	ctx := context.Background()

	sink, err := NewKafkaSink(ctx, config.Kafka{Brokers: rp.Brokers, Topic: topic})
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })

	verifierID := uuid.New()
	event := NewEvent(EventPresentationVerified, verifierID, uuid.NewString(), map[string]any{
		"path": "v2",
	})
	require.NoError(t, sink.Write(ctx, event))

	consumer, err := rp.NewConsumer("audit-test-"+uuid.NewString(), topic)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	record := rp.WaitForRecord(ctx, consumer, 15*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == verifierID.String()
	})
	require.NotNil(t, record, "audit event never arrived")

	var decoded Event
	require.NoError(t, json.Unmarshal(record.Value, &decoded))
	assert.Equal(t, EventPresentationVerified, decoded.Kind)
	assert.Equal(t, verifierID, decoded.VerifierID)

	require.Len(t, record.Headers, 1)
	assert.Equal(t, "kind", record.Headers[0].Key)
	assert.Equal(t, string(EventPresentationVerified), string(record.Headers[0].Value))
}

func TestKafkaSinkToleratesExistingTopic(t *testing.T) {
	rp := containers.GetManager().GetRedpanda(t)
	ctx := context.Background()

	cfg := config.Kafka{Brokers: rp.Brokers, Topic: "veriport.audit.existing"}
	first, err := NewKafkaSink(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewKafkaSink(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}
