package engine

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
)

// LLM prompt templates.

// replySystem is the community-assistant persona shared by both prompt variants.
const replySystem = `You are the community assistant of a YouTube content creator. Your tone is friendly, grateful and helpful.
Always thank the commenter. If the comment is a question, try to answer it using the video script. If it is an opinion, thank them for it.
Keep replies concise and positive. Reply in the same language as the comment. Never invent facts that are not in the script.`

// noScriptPlaceholder stands in for a video whose script is missing at draft time.
const noScriptPlaceholder = "(no script available for this video)"

// singleReplyPrompt drafts one reply.
// Args: instructions section, script, comment.
const singleReplyPrompt = `%sVIDEO CONTEXT (SCRIPT):
---
%s
---

USER COMMENT TO REPLY TO:
---
"%s"
---

Based on the video context and the comment, write a concise, positive reply draft. Output only the reply text.`

// batchReplyPrompt drafts one reply per numbered comment.
// Args: instructions section, script, numbered comments, JSON schema.
const batchReplyPrompt = `%sVIDEO CONTEXT (SCRIPT):
---
%s
---

USER COMMENTS TO REPLY TO (numbered):
%s
Write one concise, positive reply draft for EVERY comment above.
Respond with a JSON list only, one object per comment, where "id" is the comment number and "respuesta" is the reply:
[{"id": 1, "respuesta": "..."}, {"id": 2, "respuesta": "..."}]

The list must validate against this JSON schema:
%s`

var (
	batchSchemaOnce sync.Once
	batchSchemaText string
)

// batchSchema reflects the JSON schema for the batch reply list.
func batchSchema() string {
	batchSchemaOnce.Do(func() {
		reflector := jsonschema.Reflector{
			AllowAdditionalProperties: false,
			DoNotReference:            true,
			Anonymous:                 true,
		}
		schema := reflector.Reflect([]BatchEntry{})
		schema.Version = ""
		data, err := json.Marshal(schema)
		if err != nil {
			batchSchemaText = `{"type":"array"}`
			return
		}
		batchSchemaText = string(data)
	})
	return batchSchemaText
}

func instructionsSection(instructions string) string {
	if strings.TrimSpace(instructions) == "" {
		return ""
	}
	return "SPECIAL INSTRUCTIONS FROM THE CREATOR (follow them in every reply):\n" + instructions + "\n\n"
}

func scriptOrPlaceholder(script string) string {
	if strings.TrimSpace(script) == "" {
		return noScriptPlaceholder
	}
	return script
}

// BuildSinglePrompt renders the prompt for one comment.
func BuildSinglePrompt(script, comment, instructions string) string {
	return fmt.Sprintf(singleReplyPrompt, instructionsSection(instructions), scriptOrPlaceholder(script), comment)
}

// BuildBatchPrompt renders the prompt for an ordered list of comments.
// Comment i is numbered i+1.
func BuildBatchPrompt(script, instructions string, comments []string) string {
	var sb strings.Builder
	for i, c := range comments {
		fmt.Fprintf(&sb, "%d. %q\n", i+1, c)
	}
	return fmt.Sprintf(batchReplyPrompt, instructionsSection(instructions), scriptOrPlaceholder(script), sb.String(), batchSchema())
}
