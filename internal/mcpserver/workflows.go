package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nexuscore/nexus/internal/lifecycle"
)

// WorkflowsListInput takes no arguments; it's a catalog read.
type WorkflowsListInput struct{}

// WorkflowSummary is one catalog entry, matching spec.md §6's "workflow
// catalog" read-only endpoint.
type WorkflowSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	App          string `json:"app,omitempty"`
	StepCount    int    `json:"step_count"`
	SuccessCount int    `json:"success_count"`
	FailCount    int    `json:"fail_count"`
}

// WorkflowsListOutput wraps the catalog.
type WorkflowsListOutput struct {
	Workflows []WorkflowSummary `json:"workflows"`
}

// WorkflowGetInput identifies one workflow to read in full.
type WorkflowGetInput struct {
	ID string `json:"id" jsonschema:"required,Workflow id as returned by workflows_list."`
}

// WorkflowStepView is one recorded step, matching spec.md §6's "per-workflow
// reader" endpoint.
type WorkflowStepView struct {
	StepNum      int    `json:"step_num"`
	Action       string `json:"action"`
	ExpectedHash string `json:"expected_hash,omitempty"`
}

// WorkflowGetOutput is a workflow's metadata plus its ordered steps.
type WorkflowGetOutput struct {
	ID    string             `json:"id"`
	Name  string             `json:"name"`
	App   string             `json:"app,omitempty"`
	Steps []WorkflowStepView `json:"steps"`
}

func registerWorkflowTools(server *mcp.Server, rt *lifecycle.Runtime) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "workflows_list",
		Title:       "List recorded workflows",
		Description: "List every recorded multi-step workflow and its replay success/fail tally.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input WorkflowsListInput) (*mcp.CallToolResult, any, error) {
		wfs, err := rt.Workflow.List(ctx)
		if err != nil {
			return nil, nil, err
		}
		out := make([]WorkflowSummary, 0, len(wfs))
		for _, wf := range wfs {
			out = append(out, WorkflowSummary{
				ID: wf.ID, Name: wf.Name, App: wf.App,
				StepCount: wf.StepCount, SuccessCount: wf.SuccessCount, FailCount: wf.FailCount,
			})
		}
		return nil, WorkflowsListOutput{Workflows: out}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "workflows_get",
		Title:       "Read one recorded workflow",
		Description: "Read a single workflow's full step list by id, as returned by workflows_list.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input WorkflowGetInput) (*mcp.CallToolResult, any, error) {
		if input.ID == "" {
			return nil, nil, fmt.Errorf("id is required")
		}
		detail, err := rt.Workflow.Get(ctx, input.ID)
		if err != nil {
			return nil, nil, err
		}
		if detail == nil {
			return nil, nil, fmt.Errorf("unknown workflow %q", input.ID)
		}
		steps := make([]WorkflowStepView, 0, len(detail.Steps))
		for _, st := range detail.Steps {
			steps = append(steps, WorkflowStepView{
				StepNum: st.StepNum, Action: st.Action, ExpectedHash: st.ExpectedHash,
			})
		}
		return nil, WorkflowGetOutput{
			ID: detail.ID, Name: detail.Name, App: detail.App, Steps: steps,
		}, nil
	})
}
