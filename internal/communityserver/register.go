package communityserver

import (
	"errors"

	"github.com/anatolykoptev/go_community/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers the community-assistant tools on the server and
// returns how many were added.
func RegisterTools(server *mcp.Server, svc *engine.Service) int {
	registrars := []func(*mcp.Server, *engine.Service){
		registerAuthStart,
		registerAuthFinish,
		registerSignOut,
		registerVideosList,
		registerScriptSet,
		registerScriptList,
		registerScriptDelete,
		registerTriageRun,
		registerQueueList,
		registerDraftRegenerate,
		registerDraftEdit,
		registerReplyApprove,
		registerReplyDiscard,
		registerCommentLike,
	}
	for _, r := range registrars {
		r(server, svc)
	}
	return len(registrars)
}

var errSessionRequired = errors.New("session_id is required (call auth_start first)")

func requireSession(id string) error {
	if id == "" {
		return errSessionRequired
	}
	return nil
}

func requireItem(sessionID, itemID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if itemID == "" {
		return errors.New("item_id is required (see queue_list)")
	}
	return nil
}
