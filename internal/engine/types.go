package engine

// --- Channel data ---

// Video is a channel upload as returned by the video listing.
type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// TopComment is the top-level comment of a thread.
type TopComment struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Text      string `json:"text"`
}

// CommentThread is a top-level comment thread on a video.
type CommentThread struct {
	ID         string     `json:"id"`
	VideoID    string     `json:"video_id"`
	Top        TopComment `json:"top_comment"`
	ReplyCount int        `json:"reply_count"`
}

// Unanswered reports whether the thread is eligible for triage.
func (t CommentThread) Unanswered() bool {
	return t.ReplyCount == 0
}

// --- Review queue ---

// PendingItem is an unanswered thread awaiting the creator's review.
// Draft is empty until generation produced one.
type PendingItem struct {
	ID         string        `json:"id"`
	Token      string        `json:"token"` // client-side idempotency token for the reply
	VideoTitle string        `json:"video_title"`
	Thread     CommentThread `json:"thread"`
	Draft      string        `json:"draft,omitempty"`
	Liked      bool          `json:"liked,omitempty"`
}

// HasDraft reports whether generation (or the creator) set a draft.
func (p *PendingItem) HasDraft() bool {
	return p.Draft != ""
}

// BatchEntry is one element of the list the model returns for a chunk.
type BatchEntry struct {
	ID        int    `json:"id" jsonschema:"description=1-based position of the comment in the submitted list"`
	Respuesta string `json:"respuesta" jsonschema:"description=Reply draft for that comment"`
}

// ChunkReport describes the outcome of one generation call.
type ChunkReport struct {
	Index    int      `json:"index"`
	Size     int      `json:"size"`
	VideoIDs []string `json:"video_ids"`
	Drafted  int      `json:"drafted"`
	Raw      string   `json:"raw,omitempty"`   // model output kept when it could not be parsed
	Error    string   `json:"error,omitempty"` // transport error for this chunk
}

// RunReport summarizes a batch drafting run.
type RunReport struct {
	Items   int           `json:"items"`
	Drafted int           `json:"drafted"`
	Chunks  []ChunkReport `json:"chunks"`
}

// --- Tool inputs ---

type SessionInput struct {
	SessionID string `json:"session_id" jsonschema:"Session id returned by auth_start"`
}

type AuthFinishInput struct {
	SessionID string `json:"session_id" jsonschema:"Session id returned by auth_start"`
	Code      string `json:"code" jsonschema:"Authorization code from the OAuth redirect"`
}

type ScriptSetInput struct {
	SessionID string `json:"session_id" jsonschema:"Session id returned by auth_start"`
	VideoID   string `json:"video_id" jsonschema:"Video the script belongs to"`
	Script    string `json:"script" jsonschema:"Script text. Wrap special instructions in **double asterisks**"`
}

type ScriptDeleteInput struct {
	SessionID string `json:"session_id" jsonschema:"Session id returned by auth_start"`
	VideoID   string `json:"video_id" jsonschema:"Video whose script should be removed"`
}

type ItemInput struct {
	SessionID string `json:"session_id" jsonschema:"Session id returned by auth_start"`
	ItemID    string `json:"item_id" jsonschema:"Pending item id (comment thread id) from queue_list"`
}

type DraftEditInput struct {
	SessionID string `json:"session_id" jsonschema:"Session id returned by auth_start"`
	ItemID    string `json:"item_id" jsonschema:"Pending item id (comment thread id) from queue_list"`
	Text      string `json:"text" jsonschema:"New draft text"`
}

type ApproveInput struct {
	SessionID string `json:"session_id" jsonschema:"Session id returned by auth_start"`
	ItemID    string `json:"item_id" jsonschema:"Pending item id (comment thread id) from queue_list"`
	Text      string `json:"text,omitempty" jsonschema:"Reply text to post. Defaults to the current draft"`
}

// --- Tool outputs ---

type AuthStartOutput struct {
	SessionID string `json:"session_id"`
	AuthURL   string `json:"auth_url"`
}

type SessionOutput struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
	ChannelID string `json:"channel_id,omitempty"`
	Message   string `json:"message,omitempty"`
}

type VideoView struct {
	Video
	HasScript bool `json:"has_script"`
}

type VideosOutput struct {
	Videos []VideoView `json:"videos"`
}

type ScriptsOutput struct {
	Scripts map[string]string `json:"scripts"`
}

type QueueOutput struct {
	State      string        `json:"state"`
	Items      []PendingItem `json:"items"`
	LastReport *RunReport    `json:"last_report,omitempty"`
	Message    string        `json:"message,omitempty"`
}

type ItemOutput struct {
	Item    *PendingItem `json:"item,omitempty"`
	Message string       `json:"message"`
}
