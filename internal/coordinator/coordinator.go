package coordinator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"semforge/internal/evaluate"
	"semforge/internal/gate"
	"semforge/internal/logging"
	"semforge/internal/optimize"
)

// Executor runs one gated optimize-and-evaluate cycle. *gate.Gate is the
// production implementation.
type Executor interface {
	OptimizeAndEval(ctx context.Context, optReq optimize.Request, evalReq evaluate.Request) (*gate.Outcome, error)
}

// Coordinator owns the shared task queue, the agent registry and the
// results store. Agents drive it concurrently: parallelism comes purely
// from multiple agents calling NextTask/ExecuteTask, there is no internal
// worker pool. Dispatch is at-most-once; a dequeued task belongs to its
// agent for good.
type Coordinator struct {
	executor Executor
	metrics  *Metrics
	logger   logging.Logger

	mu      sync.Mutex
	agents  map[string]AgentInfo
	queue   []*AgentTask
	results map[string]*TaskResult
}

func New(executor Executor, metrics *Metrics, logger logging.Logger) *Coordinator {
	if metrics == nil {
		metrics = defaultMetrics()
	}
	return &Coordinator{
		executor: executor,
		metrics:  metrics,
		logger:   logging.OrNop(logger),
		agents:   make(map[string]AgentInfo),
		results:  make(map[string]*TaskResult),
	}
}

// RegisterAgent adds an agent under a fresh id. Names are informational
// only and may repeat.
func (c *Coordinator) RegisterAgent(name string, capabilities []string) AgentInfo {
	agent := AgentInfo{
		ID:           uuid.NewString(),
		Name:         name,
		Capabilities: append([]string(nil), capabilities...),
		RegisteredAt: time.Now(),
	}

	c.mu.Lock()
	c.agents[agent.ID] = agent
	c.mu.Unlock()

	c.metrics.IncAgents()
	c.logger.Info("registered agent %s (%s)", agent.Name, agent.ID)
	return agent
}

// SubmitCampaign pairs the request lists by index and enqueues
// min(len(opts), len(evals)) pending tasks on the shared queue. Returned
// ids follow queue order.
func (c *Coordinator) SubmitCampaign(req CampaignRequest) []string {
	n := len(req.Optimizations)
	if len(req.Evaluations) < n {
		n = len(req.Evaluations)
	}

	now := time.Now()
	ids := make([]string, 0, n)

	c.mu.Lock()
	for i := 0; i < n; i++ {
		task := &AgentTask{
			ID:           uuid.NewString(),
			Optimization: req.Optimizations[i],
			Evaluation:   req.Evaluations[i],
			Status:       TaskPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		c.queue = append(c.queue, task)
		ids = append(ids, task.ID)
	}
	depth := len(c.queue)
	c.mu.Unlock()

	c.metrics.SetQueueDepth(depth)
	c.logger.Info("campaign submitted: %d tasks enqueued, queue depth %d", n, depth)
	return ids
}

// NextTask pops the queue head for the calling agent, marking it RUNNING.
// The second return is false when the queue is empty.
func (c *Coordinator) NextTask(agentID string) (*AgentTask, bool) {
	c.mu.Lock()
	if len(c.queue) == 0 {
		c.mu.Unlock()
		return nil, false
	}
	task := c.queue[0]
	c.queue = c.queue[1:]
	task.AgentID = agentID
	task.Status = TaskRunning
	task.UpdatedAt = time.Now()
	depth := len(c.queue)
	c.mu.Unlock()

	c.metrics.SetQueueDepth(depth)
	return task, true
}

// ExecuteTask runs the full baseline-optimize-reevaluate-gate cycle for one
// task and records its result. It never returns an error or panics to the
// caller: any failure, including a panic below, marks the task FAILED with
// an error note so one poisoned task cannot take an agent down.
func (c *Coordinator) ExecuteTask(ctx context.Context, task *AgentTask) (result *TaskResult) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = c.record(task, &TaskResult{
				TaskID: task.ID,
				Notes:  fmt.Sprintf("error: panic: %v", r),
			}, TaskFailed, started)
		}
	}()

	outcome, err := c.executor.OptimizeAndEval(ctx, task.Optimization, task.Evaluation)
	if err != nil {
		return c.record(task, &TaskResult{
			TaskID: task.ID,
			Notes:  fmt.Sprintf("error: %v", err),
		}, TaskFailed, started)
	}

	notes := "rollback"
	if outcome.Persisted {
		notes = "kept"
	}
	return c.record(task, &TaskResult{
		TaskID:       task.ID,
		Baseline:     outcome.Baseline,
		After:        outcome.After,
		Optimization: outcome.Optimization,
		DeltaF1:      outcome.DeltaF1,
		Persisted:    outcome.Persisted,
		Notes:        notes,
	}, TaskCompleted, started)
}

func (c *Coordinator) record(task *AgentTask, result *TaskResult, status TaskStatus, started time.Time) *TaskResult {
	now := time.Now()
	result.CompletedAt = now
	task.Status = status
	task.UpdatedAt = now

	c.mu.Lock()
	c.results[result.TaskID] = result
	c.mu.Unlock()

	c.metrics.ObserveTask(status, now.Sub(started))
	c.logger.Info("task %s %s: %s", task.ID, status, result.Notes)
	return result
}

// Results lists recorded task results ordered by completion time.
func (c *Coordinator) Results() []*TaskResult {
	c.mu.Lock()
	out := make([]*TaskResult, 0, len(c.results))
	for _, r := range c.results {
		out = append(out, r)
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].TaskID < out[j].TaskID
		}
		return out[i].CompletedAt.Before(out[j].CompletedAt)
	})
	return out
}

// Scoreboard aggregates the coordinator's current state.
func (c *Coordinator) Scoreboard() Scoreboard {
	c.mu.Lock()
	defer c.mu.Unlock()

	board := Scoreboard{
		Agents:     len(c.agents),
		QueueDepth: len(c.queue),
		Tasks:      len(c.results),
	}
	for _, r := range c.results {
		board.DeltaF1Sum += r.DeltaF1
	}
	return board
}
