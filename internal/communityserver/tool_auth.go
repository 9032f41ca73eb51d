package communityserver

import (
	"context"
	"errors"

	"github.com/anatolykoptev/go_community/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type authStartInput struct{}

func registerAuthStart(server *mcp.Server, svc *engine.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "auth_start",
		Description: "Start a session and get the Google consent URL for connecting a YouTube channel. Open auth_url, approve access, then pass the code from the redirect to auth_finish with the returned session_id.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ authStartInput) (*mcp.CallToolResult, engine.AuthStartOutput, error) {
		out, err := svc.StartAuth()
		if err != nil {
			return nil, engine.AuthStartOutput{}, err
		}
		return nil, out, nil
	})
}

func registerAuthFinish(server *mcp.Server, svc *engine.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "auth_finish",
		Description: "Finish sign-in: exchange the OAuth authorization code for a token and bind the channel to the session.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.AuthFinishInput) (*mcp.CallToolResult, engine.SessionOutput, error) {
		if err := requireSession(input.SessionID); err != nil {
			return nil, engine.SessionOutput{}, err
		}
		if input.Code == "" {
			return nil, engine.SessionOutput{}, errors.New("code is required")
		}
		out, err := svc.FinishAuth(ctx, input.SessionID, input.Code)
		if err != nil {
			return nil, engine.SessionOutput{}, err
		}
		return nil, out, nil
	})
}

func registerSignOut(server *mcp.Server, svc *engine.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "sign_out",
		Description: "Sign out and drop the session, including any unreviewed drafts.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, input engine.SessionInput) (*mcp.CallToolResult, engine.SessionOutput, error) {
		if err := requireSession(input.SessionID); err != nil {
			return nil, engine.SessionOutput{}, err
		}
		out, err := svc.SignOut(input.SessionID)
		if err != nil {
			return nil, engine.SessionOutput{}, err
		}
		return nil, out, nil
	})
}
