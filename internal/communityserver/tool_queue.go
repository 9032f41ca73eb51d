package communityserver

import (
	"context"

	"github.com/anatolykoptev/go_community/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTriageRun(server *mcp.Server, svc *engine.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "triage_run",
		Description: "Find unanswered top-level comments on every video that has a script, replace the review queue with them, " +
			"and draft replies in batches of up to 15 comments per model call. Blocks until all batches finish. " +
			"Batches the model answered with unparseable text are listed in last_report with the raw output.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.SessionInput) (*mcp.CallToolResult, engine.QueueOutput, error) {
		if err := requireSession(input.SessionID); err != nil {
			return nil, engine.QueueOutput{}, err
		}
		out, err := svc.RunTriage(ctx, input.SessionID)
		if err != nil {
			return nil, engine.QueueOutput{}, err
		}
		return nil, out, nil
	})
}

func registerQueueList(server *mcp.Server, svc *engine.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "queue_list",
		Description: "Show the review queue: pending comments with their drafts, plus the report of the last triage run.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input engine.SessionInput) (*mcp.CallToolResult, engine.QueueOutput, error) {
		if err := requireSession(input.SessionID); err != nil {
			return nil, engine.QueueOutput{}, err
		}
		out, err := svc.Queue(input.SessionID)
		if err != nil {
			return nil, engine.QueueOutput{}, err
		}
		return nil, out, nil
	})
}
