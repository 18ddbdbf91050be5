// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/lore-engine/pkg/types"
)

// systemPromptTmpl sets up the extraction persona once per request. The
// category list must match pkg/types.Categories exactly; the model is told
// the exact names so classification synonyms stay the exception.
var systemPromptTmpl = template.Must(template.New("system").Parse(`You are an AI designed to extract narrative entities from transcribed audio for a "cheat sheet" that helps a listener follow a story.

The content you are analyzing is titled: "{{.Title}}".
Here is some external context about the content to help you identify relevant entities and their significance:
---
{{.ExternalContext}}
---

Your primary goal is to identify all identifiable named entities that contribute to understanding the narrative. Be exceptionally comprehensive: do NOT filter entities by perceived importance for display, the application handles filtering by score.

Be mindful of variations, nicknames, acronyms, and common misspellings (e.g. "Eastman" vs "Easterman", "US" vs "United States"). Always use the most complete, formal, or specific name as the entity's "name".

Entity categorization (use these EXACT type names only):
- "Characters": specific named individuals or historical figures.
- "Locations": places, settings, countries, cities.
- "Organizations": groups, agencies, governments, corporations.
- "Key Objects": distinctive items crucial to the plot or events.
- "Concepts/Events": historical periods, significant dates or years, major conflicts, named projects or programs.

Rules:
- "name" must be non-empty.
- Only include entities explicitly mentioned in the transcript or external context.
- If no identifiable entities appear in a snippet, return an empty "entities" list.
- Descriptions are brief (max 10 words), focused on narrative role.
- Optionally list alternate spellings or nicknames seen in the transcript under "aliases".

Scoring guidance for "base_importance_score" (integer 1-10), re-evaluated against all context seen so far:
- Characters, Locations, Organizations, Key Objects: typically 5-10; 10 means central or foundational.
- Concepts/Events: typically 1-7; 6-7 for a major plot event or core theme.
- Frequent but incidental entities keep a modest score; rarely mentioned but pivotal ones score high.

Respond with a JSON object of the form {"entities": [{"name": ..., "type": ..., "description": ..., "base_importance_score": ...}]}. Do not include any text outside the JSON object.`))

// chatSystemPromptTmpl sets up the question-answering persona.
var chatSystemPromptTmpl = template.Must(template.New("chat").Parse(`You are an AI assistant helping a user understand a story by answering questions based on the transcript history and a narrative cheat sheet.

The content is titled: "{{.Title}}".
External context about the content:
---
{{.ExternalContext}}
---

Answer user questions using the provided transcript history and cheat sheet. Provide detailed, relevant answers in plain text.`))

// PromptInput carries everything one extraction exchange needs.
type PromptInput struct {
	Title           string
	ExternalContext string

	// Window is the current chunk preceded by recent context, in
	// transcript order. The last element is the chunk under analysis.
	Window []types.TranscriptChunk

	// Known is the current registry snapshot, shown to the model so it
	// can re-score and canonicalize entities it has already reported.
	Known []types.EntityRecord
}

// knownEntity is the trimmed registry view sent back to the model.
type knownEntity struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// BuildExtractionRequest renders the extraction prompt for one chunk.
func BuildExtractionRequest(in PromptInput) (Request, error) {
	if len(in.Window) == 0 {
		return Request{}, fmt.Errorf("empty transcript window")
	}

	system, err := renderSystem(systemPromptTmpl, in.Title, in.ExternalContext)
	if err != nil {
		return Request{}, err
	}

	current := in.Window[len(in.Window)-1]
	context := make([]string, len(in.Window))
	for i, chunk := range in.Window {
		context[i] = chunk.Text
	}

	known := make([]knownEntity, len(in.Known))
	for i, rec := range in.Known {
		known[i] = knownEntity{
			Name:        rec.CanonicalName,
			Type:        string(rec.Category),
			Description: rec.Description,
		}
	}
	knownJSON, err := json.MarshalIndent(known, "", "  ")
	if err != nil {
		return Request{}, fmt.Errorf("encoding known entities: %w", err)
	}

	var user bytes.Buffer
	fmt.Fprintf(&user, "Current transcript snippet: %s\n", current.Text)
	fmt.Fprintf(&user, "Recent context (last %d snippets): %s\n", len(context), strings.Join(context, " | "))
	fmt.Fprintf(&user, "Current narrative cheat sheet: %s\n", knownJSON)
	user.WriteString("Based on ALL information (current transcript, recent context, full cheat sheet), identify all identifiable entities. For EVERY entity you return (new or existing), provide its base_importance_score (1-10) re-evaluated on inherent narrative relevance, and canonicalize variant spellings to the full formal name.")

	return Request{System: system, User: user.String(), ForceJSON: true}, nil
}

// ChatInput carries one user question plus the story state it is answered
// against.
type ChatInput struct {
	Title           string
	ExternalContext string
	Query           string
	Transcripts     []types.TranscriptChunk
	Known           []types.EntityRecord
}

// BuildChatRequest renders the question-answering prompt.
func BuildChatRequest(in ChatInput) (Request, error) {
	system, err := renderSystem(chatSystemPromptTmpl, in.Title, in.ExternalContext)
	if err != nil {
		return Request{}, err
	}

	history := make([]string, len(in.Transcripts))
	for i, chunk := range in.Transcripts {
		history[i] = chunk.Text
	}

	known := make([]knownEntity, len(in.Known))
	for i, rec := range in.Known {
		known[i] = knownEntity{
			Name:        rec.CanonicalName,
			Type:        string(rec.Category),
			Description: rec.Description,
		}
	}
	knownJSON, err := json.MarshalIndent(known, "", "  ")
	if err != nil {
		return Request{}, fmt.Errorf("encoding known entities: %w", err)
	}

	var user bytes.Buffer
	fmt.Fprintf(&user, "Transcript history: %s\n", strings.Join(history, " | "))
	fmt.Fprintf(&user, "Current narrative cheat sheet: %s\n", knownJSON)
	fmt.Fprintf(&user, "User question: %s", in.Query)

	return Request{System: system, User: user.String()}, nil
}

// promptData are the fields shared by both system templates.
type promptData struct {
	Title           string
	ExternalContext string
}

func renderSystem(tmpl *template.Template, title, externalContext string) (string, error) {
	if title == "" {
		title = "Unknown Content"
	}
	if externalContext == "" {
		externalContext = "No external context available."
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{Title: title, ExternalContext: externalContext}); err != nil {
		return "", fmt.Errorf("rendering system prompt: %w", err)
	}
	return buf.String(), nil
}
