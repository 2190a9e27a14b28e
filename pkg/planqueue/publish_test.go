package planqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LambdaTest/forkplan/pkg/allocator"
	"github.com/LambdaTest/forkplan/pkg/core"
	errs "github.com/LambdaTest/forkplan/pkg/errors"
	"github.com/LambdaTest/forkplan/pkg/lumber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	messages []*core.PlanMessage
	failOn   int
}

func (r *recordingProducer) Enqueue(payload interface{}) error {
	if r.failOn > 0 && len(r.messages)+1 == r.failOn {
		return errors.New("broker unavailable")
	}
	r.messages = append(r.messages, payload.(*core.PlanMessage))
	return nil
}

func (r *recordingProducer) Close() error { return nil }

func newLogger(t *testing.T) lumber.Logger {
	t.Helper()
	logger, err := lumber.NewLogger(&lumber.LoggingConfig{ConsoleLevel: lumber.Debug}, false, lumber.InstanceZapLogger)
	require.NoError(t, err)
	return logger
}

func generatedPlan(t *testing.T, logger lumber.Logger) *allocator.BucketingAllocator {
	t.Helper()
	store := core.TimingStoreFunc(func(ctx context.Context) ([]core.TestTiming, error) {
		return nil, nil
	})
	a, err := allocator.New(2, store, logger)
	require.NoError(t, err)
	require.NoError(t, a.AddSource(func() []string { return []string{"A", "B", "C"} }, "unit"))
	require.NoError(t, a.GenerateTestPlan(context.Background()))
	return a
}

func TestPublishOneMessagePerForkAndTask(t *testing.T) {
	logger := newLogger(t)
	producer := &recordingProducer{}
	publisher := NewPublisher(producer, logger)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	publisher.now = func() time.Time { return fixed }

	planID, err := publisher.Publish(generatedPlan(t, logger), []core.TaskID{"unit", "integration"})
	require.NoError(t, err)
	assert.Len(t, planID, 32)
	require.Len(t, producer.messages, 4)

	want := []struct {
		fork  int
		task  core.TaskID
		tests []string
	}{
		{0, "unit", []string{"A", "C"}},
		{0, "integration", []string{}},
		{1, "unit", []string{"B"}},
		{1, "integration", []string{}},
	}
	for i, w := range want {
		msg := producer.messages[i]
		assert.Equal(t, planID, msg.PlanID)
		assert.Equal(t, 2, msg.ForkCount)
		assert.Equal(t, fixed, msg.CreatedAt)
		assert.Equal(t, w.fork, msg.Fork)
		assert.Equal(t, w.task, msg.Task)
		assert.Equal(t, 0, msg.Part)
		assert.Equal(t, 1, msg.Parts)
		assert.ElementsMatch(t, w.tests, msg.Tests)
	}
}

func TestPublishSplitsLongTestLists(t *testing.T) {
	logger := newLogger(t)
	producer := &recordingProducer{}
	publisher := NewPublisher(producer, logger)
	publisher.batchSize = 1

	planID, err := publisher.Publish(generatedPlan(t, logger), []core.TaskID{"unit", "integration"})
	require.NoError(t, err)
	require.Len(t, producer.messages, 5)

	want := []struct {
		fork  int
		task  core.TaskID
		part  int
		parts int
		tests []string
	}{
		{0, "unit", 0, 2, []string{"A"}},
		{0, "unit", 1, 2, []string{"C"}},
		{0, "integration", 0, 1, []string{}},
		{1, "unit", 0, 1, []string{"B"}},
		{1, "integration", 0, 1, []string{}},
	}
	for i, w := range want {
		msg := producer.messages[i]
		assert.Equal(t, planID, msg.PlanID)
		assert.Equal(t, w.fork, msg.Fork, "message %d", i)
		assert.Equal(t, w.task, msg.Task, "message %d", i)
		assert.Equal(t, w.part, msg.Part, "message %d", i)
		assert.Equal(t, w.parts, msg.Parts, "message %d", i)
		assert.Equal(t, w.tests, msg.Tests, "message %d", i)
	}
}

func TestPublishRequiresGeneratedPlan(t *testing.T) {
	logger := newLogger(t)
	store := core.TimingStoreFunc(func(ctx context.Context) ([]core.TestTiming, error) { return nil, nil })
	a, err := allocator.New(2, store, logger)
	require.NoError(t, err)

	_, err = NewPublisher(&recordingProducer{}, logger).Publish(a, []core.TaskID{"unit"})
	assert.ErrorIs(t, err, errs.ErrPlanNotGenerated)
}

func TestPublishStopsOnProducerError(t *testing.T) {
	logger := newLogger(t)
	producer := &recordingProducer{failOn: 2}

	_, err := NewPublisher(producer, logger).Publish(generatedPlan(t, logger), []core.TaskID{"unit"})
	assert.EqualError(t, err, "broker unavailable")
	assert.Len(t, producer.messages, 1)
}
