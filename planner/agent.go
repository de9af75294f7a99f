package planner

// AgentKind declares how the workflow schedules an agent
type AgentKind string

const (
	AgentSequential AgentKind = "sequential"
	AgentParallel   AgentKind = "parallel"
)

// AgentResult is the immutable record one agent invocation produces.
// Results accumulate into the workflow timeline in actual phase order;
// parallel results land in completion order.
type AgentResult struct {
	Agent   string         `json:"agent"`
	Stage   string         `json:"stage"`
	Payload map[string]any `json:"payload"`
}

// agentBase carries the identity every concrete agent shares
type agentBase struct {
	name string
	kind AgentKind
}

// Name returns the agent's name as it appears in timeline entries
func (a agentBase) Name() string { return a.name }

// Kind returns the agent's declared execution class
func (a agentBase) Kind() AgentKind { return a.kind }
