package support

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/contract"
	toolx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/tool"
	openrouterx "github.com/tanpawarit/Chative-Customer-Support-Agent/pkg/openrouter"
)

type plannerImpl struct {
	runner       compose.Runnable[[]*schema.Message, *schema.Message]
	systemPrompt string
	allowedTools map[string]struct{}
}

// NewPlanner binds the tool catalog to a chat model and wraps it in the
// planner contract: one tool call or a final answer per invocation.
func NewPlanner(ctx context.Context, builder openrouterx.LLMBuilder, systemPrompt string) (contractx.Planner, error) {
	if builder == nil {
		return nil, fmt.Errorf("%w: llm builder is required", contractx.ErrValidation)
	}
	systemPrompt = strings.TrimSpace(systemPrompt)
	if systemPrompt == "" {
		return nil, fmt.Errorf("%w: system prompt is required", contractx.ErrValidation)
	}

	chatModel, err := builder.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create planner model: %v", contractx.ErrModelInvoke, err)
	}

	infos := toolx.Infos()
	toolModel, err := chatModel.WithTools(infos)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools to planner model: %v", contractx.ErrModelInvoke, err)
	}

	runner, err := compilePlannerGraph(ctx, toolModel)
	if err != nil {
		return nil, err
	}

	allowedTools := make(map[string]struct{}, len(infos))
	for _, info := range infos {
		if info == nil || strings.TrimSpace(info.Name) == "" {
			continue
		}
		allowedTools[info.Name] = struct{}{}
	}

	return &plannerImpl{
		runner:       runner,
		systemPrompt: systemPrompt,
		allowedTools: allowedTools,
	}, nil
}

func (p *plannerImpl) Decide(ctx context.Context, req contractx.PlannerRequest) (contractx.PlannerDecision, error) {
	if strings.TrimSpace(req.Question) == "" {
		return contractx.PlannerDecision{}, fmt.Errorf("%w: question is required", contractx.ErrValidation)
	}

	msg, err := p.runner.Invoke(ctx, buildMessages(p.systemPrompt, req))
	if err != nil {
		return contractx.PlannerDecision{}, fmt.Errorf("%w: planner invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return contractx.PlannerDecision{}, fmt.Errorf("%w: empty planner response", contractx.ErrSchemaViolation)
	}

	if len(msg.ToolCalls) > 0 {
		// One tool per step; extra calls are dropped and re-planned.
		call := msg.ToolCalls[0]
		tool := strings.TrimSpace(call.Function.Name)
		if tool == "" {
			return contractx.PlannerDecision{}, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}
		if _, ok := p.allowedTools[tool]; !ok {
			return contractx.PlannerDecision{}, fmt.Errorf("%w: tool=%s is not in the catalog", contractx.ErrSchemaViolation, tool)
		}

		args := map[string]any{}
		if rawArgs := strings.TrimSpace(call.Function.Arguments); rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return contractx.PlannerDecision{}, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
			}
		}

		return contractx.PlannerDecision{
			ToolCall: &contractx.ToolRequest{Tool: tool, Args: args},
		}, nil
	}

	answer := strings.TrimSpace(msg.Content)
	if answer == "" {
		return contractx.PlannerDecision{}, fmt.Errorf("%w: planner returned neither tool call nor answer", contractx.ErrSchemaViolation)
	}
	return contractx.PlannerDecision{Answer: answer}, nil
}

// buildMessages replays the question and the completed steps as a
// tool-calling transcript. Observations are serialized whole, so the model
// sees reported errors the same way it sees results.
func buildMessages(systemPrompt string, req contractx.PlannerRequest) []*schema.Message {
	msgs := make([]*schema.Message, 0, 2+2*len(req.Steps))
	msgs = append(msgs,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(req.Question),
	)

	for i, step := range req.Steps {
		callID := fmt.Sprintf("call_%d", i)

		args := "{}"
		if step.Request.Args != nil {
			if raw, err := json.Marshal(step.Request.Args); err == nil {
				args = string(raw)
			}
		}
		msgs = append(msgs, &schema.Message{
			Role: schema.Assistant,
			ToolCalls: []schema.ToolCall{
				{
					ID: callID,
					Function: schema.FunctionCall{
						Name:      step.Request.Tool,
						Arguments: args,
					},
				},
			},
		})

		observation, err := json.Marshal(step.Result)
		if err != nil {
			observation = []byte(`{"error":"unserializable observation"}`)
		}
		msgs = append(msgs, schema.ToolMessage(string(observation), callID))
	}

	return msgs
}
