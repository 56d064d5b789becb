// Package coordinator hands optimize-and-evaluate task pairs to concurrent
// agents through a shared FIFO queue and aggregates their outcomes.
package coordinator

import (
	"time"

	"semforge/internal/evaluate"
	"semforge/internal/optimize"
)

// TaskStatus is the lifecycle state of an AgentTask. PENDING moves to
// RUNNING on dequeue and ends in COMPLETED or FAILED; terminal states are
// final.
type TaskStatus string

const (
	TaskPending   TaskStatus = "PENDING"
	TaskRunning   TaskStatus = "RUNNING"
	TaskCompleted TaskStatus = "COMPLETED"
	TaskFailed    TaskStatus = "FAILED"
)

// AgentInfo identifies one registered agent. Immutable after registration;
// names are not deduplicated, the generated id is the identity.
type AgentInfo struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Capabilities []string  `json:"capabilities,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// AgentTask pairs one optimization request with the evaluation request that
// gates it. AgentID is set when an agent dequeues the task and never
// reassigned; there is no re-queue path for abandoned tasks.
type AgentTask struct {
	ID           string           `json:"id"`
	AgentID      string           `json:"agentId,omitempty"`
	Optimization optimize.Request `json:"optimization"`
	Evaluation   evaluate.Request `json:"evaluation"`
	Status       TaskStatus       `json:"status"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// CampaignRequest carries parallel request lists; entries are paired by
// index and the shorter list bounds the campaign.
type CampaignRequest struct {
	Optimizations []optimize.Request `json:"optimizations"`
	Evaluations   []evaluate.Request `json:"evaluations"`
}

// TaskResult is the recorded outcome of one executed task. Results are
// write-once: the coordinator never mutates a stored result.
type TaskResult struct {
	TaskID       string           `json:"taskId"`
	Baseline     *evaluate.Result `json:"baseline,omitempty"`
	After        *evaluate.Result `json:"after,omitempty"`
	Optimization *optimize.Result `json:"optimization,omitempty"`
	DeltaF1      float64          `json:"deltaF1"`
	Persisted    bool             `json:"persisted"`
	Notes        string           `json:"notes,omitempty"`
	CompletedAt  time.Time        `json:"completedAt"`
}

// Scoreboard is a point-in-time aggregate over the coordinator's state.
// DeltaF1Sum adds up raw per-task deltas; it signals fleet-wide drift, not
// a normalized score.
type Scoreboard struct {
	Agents     int     `json:"agents"`
	QueueDepth int     `json:"queueDepth"`
	Tasks      int     `json:"tasks"`
	DeltaF1Sum float64 `json:"deltaF1Sum"`
}
