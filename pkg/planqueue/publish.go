package planqueue

import (
	"time"

	"github.com/LambdaTest/forkplan/pkg/constants"
	"github.com/LambdaTest/forkplan/pkg/core"
	"github.com/LambdaTest/forkplan/pkg/lumber"
	"github.com/LambdaTest/forkplan/pkg/utils"
)

// Publisher fans a generated plan out as one message per fork and task.
type Publisher struct {
	producer  core.QueueProducer
	logger    lumber.Logger
	now       func() time.Time
	batchSize int
}

// NewPublisher returns a Publisher writing to producer.
func NewPublisher(producer core.QueueProducer, logger lumber.Logger) *Publisher {
	return &Publisher{
		producer:  producer,
		logger:    logger,
		now:       time.Now,
		batchSize: constants.MaxTestsPerPlanMessage,
	}
}

// Publish enqueues the tests of every (fork, task) pair of a generated plan
// and returns the plan id shared by all messages. Forks without tests for a
// task still get a message so every worker hears about the plan.
func (p *Publisher) Publish(allocator core.TestAllocator, tasks []core.TaskID) (string, error) {
	summary, err := allocator.Summary()
	if err != nil {
		return "", err
	}
	planID := utils.GenerateUUID()
	createdAt := p.now()
	messages := 0
	for fork := 0; fork < summary.ForkCount; fork++ {
		for _, task := range tasks {
			tests, err := allocator.TestsForForkAndTestTask(fork, task)
			if err != nil {
				return "", err
			}
			template := core.PlanMessage{
				PlanID:    planID,
				Fork:      fork,
				ForkCount: summary.ForkCount,
				Task:      task,
				CreatedAt: createdAt,
			}
			sent, err := p.enqueueParts(template, tests)
			if err != nil {
				return "", err
			}
			messages += sent
		}
	}
	p.logger.Infof("published plan %s for %d forks and %d tasks in %d messages", planID, summary.ForkCount, len(tasks), messages)
	return planID, nil
}

// enqueueParts sends tests in messages of at most batchSize tests.
func (p *Publisher) enqueueParts(template core.PlanMessage, tests []string) (int, error) {
	parts := (len(tests) + p.batchSize - 1) / p.batchSize
	if parts == 0 {
		msg := template
		msg.Parts = 1
		msg.Tests = tests
		return 1, p.producer.Enqueue(&msg)
	}
	part := 0
	err := utils.Chunk(p.batchSize, len(tests), func(start, end int) error {
		msg := template
		msg.Part = part
		msg.Parts = parts
		msg.Tests = tests[start:end]
		part++
		return p.producer.Enqueue(&msg)
	})
	return part, err
}
