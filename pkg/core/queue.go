package core

import "time"

// QueueProducer represents the queue producer.
type QueueProducer interface {
	// Enqueue inserts payload in queue.
	Enqueue(payload interface{}) error
	// Close closes the queue producer.
	Close() error
}

// PlanMessage tells the worker running Fork which tests of Task it owns.
// Long test lists are split into Parts messages numbered from 0.
type PlanMessage struct {
	PlanID    string    `json:"plan_id"`
	Fork      int       `json:"fork"`
	ForkCount int       `json:"fork_count"`
	Task      TaskID    `json:"task"`
	Part      int       `json:"part"`
	Parts     int       `json:"parts"`
	Tests     []string  `json:"tests"`
	CreatedAt time.Time `json:"created_at"`
}
