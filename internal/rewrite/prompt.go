package rewrite

import (
	"encoding/json"
	"fmt"
	"strings"

	"infocommander/internal/model"
)

// systemPrompt fixes the tone and layout of every generated post. The rules
// mirror an inverted-pyramid newsroom style; output language is always
// Traditional Chinese regardless of the input language.
const systemPrompt = `You are a senior social-media news editor.
Rewrite the material the user provides (video transcripts, articles, documents)
into an accessible social-media news post.

Writing logic (inverted pyramid):
1. The lead: the first paragraph (1-2 sentences) must cover the essential
   five Ws (who, what, when, where, why).
2. The nut graf: the second paragraph explains why the reader should care.
3. Remaining details are ordered by importance, not chronology.

Formatting rules, strictly enforced:
1. The first line is the headline and must start with " ▌ " (e.g. " ▌ Headline").
2. Never use bold or any Markdown emphasis.
3. Leave a blank line between paragraphs; keep each paragraph to 1-3 sentences;
   use emoji sparingly as visual separators.
4. Collect all source links in a single trailing paragraph.
5. The output is always Traditional Chinese, whatever the input language.

Editing loop: when a revision instruction is given, keep the article structure
and apply only the requested change.`

const composePromptTemplate = `%s

Task: write a new post.
Read the following material and write the post:
%s`

const revisionPromptTemplate = `%s

Task: revise an article.
Original article:
%s

The user's revision instruction:
%s

Rewrite the article per the instruction, strictly following the formatting rules above.`

// draftPromptTemplate asks for strict JSON so the gate flow can attach an
// image decision. sports/finance gate material is short, so the content is
// capped at roughly 150 characters with a headline and hashtags.
const draftPromptTemplate = `Rewrite the following material as a social-media post. Respond with raw JSON only, no code fences, exactly this shape:
{"content": "post with a ' ▌ ' headline, emoji and hashtags, at most 150 characters, Traditional Chinese", "image_decision": {"type": "news" or "concept", "keyword": "short English search keyword"}}

Material:
%s`

const analysisPromptTemplate = `You are a social-media intelligence officer. Combine the material below into a daily briefing post. Respond with raw JSON only, no code fences, exactly this shape:
{"content": "post starting with ' ▌ ' headline, Traditional Chinese", "image_decision": {"type": "news", "keyword": "short English search keyword"}}

Video title: %s
Video channel: %s
Video description: %s
Web search results:
%s`

// DecodeResult parses a model response that was instructed to emit strict
// JSON, tolerating code-fence wrapping. The model output is an untrusted
// external contract: anything that does not decode into a result with
// non-empty content is an error, never a partially filled object.
func DecodeResult(raw string) (model.RewriteResult, error) {
	cleaned := StripFences(raw)

	var res model.RewriteResult
	if err := json.Unmarshal([]byte(cleaned), &res); err != nil {
		return model.RewriteResult{}, fmt.Errorf("decode result: %w", err)
	}
	if strings.TrimSpace(res.Content) == "" {
		return model.RewriteResult{}, fmt.Errorf("decode result: empty content")
	}
	return res, nil
}

// StripFences removes Markdown code-fence markers the model tends to wrap
// JSON responses in.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
