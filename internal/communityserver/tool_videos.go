package communityserver

import (
	"context"
	"errors"

	"github.com/anatolykoptev/go_community/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerVideosList(server *mcp.Server, svc *engine.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "videos_list",
		Description: "List the channel's videos (cached for 10 minutes) with a has_script flag. Only videos with a script are scanned by triage_run.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.SessionInput) (*mcp.CallToolResult, engine.VideosOutput, error) {
		if err := requireSession(input.SessionID); err != nil {
			return nil, engine.VideosOutput{}, err
		}
		out, err := svc.Videos(ctx, input.SessionID)
		if err != nil {
			return nil, engine.VideosOutput{}, err
		}
		return nil, out, nil
	})
}

func registerScriptSet(server *mcp.Server, svc *engine.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "script_set",
		Description: "Save the script (context) for a video. Text wrapped in **double asterisks** is treated as special instructions for every reply on that video; the rest is narrative the replies can draw on.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ScriptSetInput) (*mcp.CallToolResult, engine.ScriptsOutput, error) {
		if err := requireSession(input.SessionID); err != nil {
			return nil, engine.ScriptsOutput{}, err
		}
		if input.Script == "" {
			return nil, engine.ScriptsOutput{}, errors.New("script is required (use script_delete to remove one)")
		}
		out, err := svc.SetScript(ctx, input.SessionID, input.VideoID, input.Script)
		if err != nil {
			return nil, engine.ScriptsOutput{}, err
		}
		return nil, out, nil
	})
}

func registerScriptList(server *mcp.Server, svc *engine.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "script_list",
		Description: "List saved scripts keyed by video id.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.SessionInput) (*mcp.CallToolResult, engine.ScriptsOutput, error) {
		if err := requireSession(input.SessionID); err != nil {
			return nil, engine.ScriptsOutput{}, err
		}
		out, err := svc.Scripts(ctx, input.SessionID)
		if err != nil {
			return nil, engine.ScriptsOutput{}, err
		}
		return nil, out, nil
	})
}

func registerScriptDelete(server *mcp.Server, svc *engine.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "script_delete",
		Description: "Delete the script of a video. Drafts already generated keep the script they were made with.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ScriptDeleteInput) (*mcp.CallToolResult, engine.ScriptsOutput, error) {
		if err := requireSession(input.SessionID); err != nil {
			return nil, engine.ScriptsOutput{}, err
		}
		out, err := svc.DeleteScript(ctx, input.SessionID, input.VideoID)
		if err != nil {
			return nil, engine.ScriptsOutput{}, err
		}
		return nil, out, nil
	})
}
