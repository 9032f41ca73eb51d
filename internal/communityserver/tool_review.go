package communityserver

import (
	"context"
	"errors"

	"github.com/anatolykoptev/go_community/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerDraftRegenerate(server *mcp.Server, svc *engine.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "draft_regenerate",
		Description: "Draft the reply for one pending comment again, using the video's current script. Other items are not touched.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ItemInput) (*mcp.CallToolResult, engine.ItemOutput, error) {
		if err := requireItem(input.SessionID, input.ItemID); err != nil {
			return nil, engine.ItemOutput{}, err
		}
		out, err := svc.Regenerate(ctx, input.SessionID, input.ItemID)
		if err != nil {
			return nil, engine.ItemOutput{}, err
		}
		return nil, out, nil
	})
}

func registerDraftEdit(server *mcp.Server, svc *engine.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "draft_edit",
		Description: "Replace the draft of a pending comment with your own text.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, input engine.DraftEditInput) (*mcp.CallToolResult, engine.ItemOutput, error) {
		if err := requireItem(input.SessionID, input.ItemID); err != nil {
			return nil, engine.ItemOutput{}, err
		}
		if input.Text == "" {
			return nil, engine.ItemOutput{}, errors.New("text is required")
		}
		out, err := svc.EditDraft(input.SessionID, input.ItemID, input.Text)
		if err != nil {
			return nil, engine.ItemOutput{}, err
		}
		return nil, out, nil
	})
}

func registerReplyApprove(server *mcp.Server, svc *engine.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "reply_approve",
		Description: "Post the reply (the given text, or the current draft) to YouTube. The item leaves the queue only when the post succeeds; " +
			"on failure it stays with the text saved as its draft so you can retry. Retries never post the same reply twice.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ApproveInput) (*mcp.CallToolResult, engine.ItemOutput, error) {
		if err := requireItem(input.SessionID, input.ItemID); err != nil {
			return nil, engine.ItemOutput{}, err
		}
		out, err := svc.Approve(ctx, input.SessionID, input.ItemID, input.Text)
		if err != nil {
			return nil, engine.ItemOutput{}, err
		}
		return nil, out, nil
	})
}

func registerReplyDiscard(server *mcp.Server, svc *engine.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "reply_discard",
		Description: "Remove a pending comment from the queue without replying.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, input engine.ItemInput) (*mcp.CallToolResult, engine.ItemOutput, error) {
		if err := requireItem(input.SessionID, input.ItemID); err != nil {
			return nil, engine.ItemOutput{}, err
		}
		out, err := svc.Discard(input.SessionID, input.ItemID)
		if err != nil {
			return nil, engine.ItemOutput{}, err
		}
		return nil, out, nil
	})
}

func registerCommentLike(server *mcp.Server, svc *engine.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "comment_like",
		Description: "Like the pending comment. The YouTube Data API cannot rate comments, so the like is recorded locally and the message says so.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ItemInput) (*mcp.CallToolResult, engine.ItemOutput, error) {
		if err := requireItem(input.SessionID, input.ItemID); err != nil {
			return nil, engine.ItemOutput{}, err
		}
		out, err := svc.Like(ctx, input.SessionID, input.ItemID)
		if err != nil {
			return nil, engine.ItemOutput{}, err
		}
		return nil, out, nil
	})
}
