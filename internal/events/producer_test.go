package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewProducer_Defaults(t *testing.T) {
	p := NewProducer(ProducerConfig{})

	assert.Equal(t, []string{"localhost:9092"}, p.config.Brokers)
	assert.Equal(t, "codeclinic-events", p.config.Topic)
	assert.Equal(t, 100, p.config.BatchSize)
	assert.Equal(t, time.Second, p.config.BatchTimeout)
}

func TestPublish_NotConnected(t *testing.T) {
	p := NewProducer(ProducerConfig{})

	err := p.Publish(context.Background(), string(AnalysisCompletedEvent), "user-1", nil)
	assert.Error(t, err)
}

func TestClose_Idempotent(t *testing.T) {
	p := NewProducer(ProducerConfig{})

	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())
}
