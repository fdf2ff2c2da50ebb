package contract

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// StepRecord is one completed reasoning step: the tool call the planner
// chose and the observation it produced. Failed calls are observations too.
type StepRecord struct {
	Request ToolRequest `json:"request"`
	Result  ToolResult  `json:"result"`
}

type PlannerRequest struct {
	Question string       `json:"question"`
	Steps    []StepRecord `json:"steps,omitempty"`
}

// PlannerDecision carries exactly one of: a tool call to execute next, or
// the final answer text.
type PlannerDecision struct {
	ToolCall *ToolRequest `json:"tool_call,omitempty"`
	Answer   string       `json:"answer,omitempty"`
}
