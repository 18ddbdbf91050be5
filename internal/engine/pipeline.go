// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine runs the reconciliation pipeline: it feeds transcript
// chunks through extraction, decoding, filtering, and merging, and owns the
// single writer path into the registry.
// Implements: prd001-resolution (R2, R5-R7);
//
//	docs/ARCHITECTURE § Reconciliation.
package engine

import (
	"context"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/lore-engine/internal/classify"
	"github.com/pdiddy/lore-engine/internal/decode"
	"github.com/pdiddy/lore-engine/internal/events"
	"github.com/pdiddy/lore-engine/internal/extract"
	"github.com/pdiddy/lore-engine/internal/feed"
	"github.com/pdiddy/lore-engine/internal/mention"
	"github.com/pdiddy/lore-engine/internal/normalize"
	"github.com/pdiddy/lore-engine/internal/registry"
	"github.com/pdiddy/lore-engine/internal/resolve"
	"github.com/pdiddy/lore-engine/pkg/types"
)

// chunkState names the pipeline stage a chunk is in. Every chunk passes
// through all states in order and always reaches statePublished, even when
// extraction or decoding failed along the way.
type chunkState string

const (
	stateFetching  chunkState = "Fetching"
	stateParsing   chunkState = "Parsing"
	stateFiltering chunkState = "Filtering"
	stateMerging   chunkState = "Merging"
	stateScanning  chunkState = "Scanning"
	statePublished chunkState = "Published"
)

// Publisher receives the full registry snapshot after each processed chunk.
type Publisher func(chunkIndex int, snapshot []*types.EntityRecord)

// Pipeline reconciles one chunk at a time into the registry. It is not
// safe for concurrent use; the consumer loop is its only caller.
type Pipeline struct {
	reg      *registry.Registry
	resolver *resolve.Resolver
	backend  extract.Backend
	feed     *feed.Feed
	log      *events.Logger
	cfg      types.EngineConfig
	context  string
	publish  Publisher
}

// NewPipeline wires a pipeline over its collaborators. externalContext is
// the free-text background passed to every extraction request; publish may
// be nil.
func NewPipeline(reg *registry.Registry, backend extract.Backend, f *feed.Feed, log *events.Logger, cfg types.EngineConfig, externalContext string, publish Publisher) *Pipeline {
	return &Pipeline{
		reg:      reg,
		resolver: resolve.New(reg, cfg.FuzzyThreshold),
		backend:  backend,
		feed:     f,
		log:      log,
		cfg:      cfg,
		context:  externalContext,
		publish:  publish,
	}
}

// Process runs one chunk through the full pipeline. Failures in extraction
// or decoding degrade to zero candidates; Process itself never fails, so
// the consumer can always advance past the chunk.
func (p *Pipeline) Process(ctx context.Context, chunk types.TranscriptChunk) {
	p.transition(chunk.Index, stateFetching)
	raw := p.fetch(ctx, chunk)

	p.transition(chunk.Index, stateParsing)
	candidates := p.parse(chunk.Index, raw)

	window := p.windowText(chunk)

	p.transition(chunk.Index, stateFiltering)
	accepted := p.filter(chunk.Index, candidates, window)

	p.transition(chunk.Index, stateMerging)
	for _, cand := range accepted {
		p.merge(chunk.Index, cand)
	}

	p.transition(chunk.Index, stateScanning)
	mention.UpdateCounts(p.reg, chunk.Text)

	p.transition(chunk.Index, statePublished)
	snapshot := p.reg.Snapshot()
	p.log.Emit(events.TypeParsedEntities,
		fmt.Sprintf("chunk %d published, %d entities tracked", chunk.Index, len(snapshot)), summarize(snapshot))
	if p.publish != nil {
		p.publish(chunk.Index, snapshot)
	}
}

func (p *Pipeline) transition(chunkIndex int, s chunkState) {
	p.log.Debugf("chunk %d: %s", chunkIndex, s)
}

// fetch invokes the extraction backend over the transcript window. A
// backend failure yields an empty raw response, which the parsing stage
// treats as zero candidates.
func (p *Pipeline) fetch(ctx context.Context, chunk types.TranscriptChunk) string {
	window := p.feed.Window(chunk.Index, p.windowSize())
	if len(window) == 0 {
		window = []types.TranscriptChunk{chunk}
	}

	req, err := extract.BuildExtractionRequest(extract.PromptInput{
		Title:           p.cfg.Title,
		ExternalContext: p.context,
		Window:          window,
		Known:           derefAll(p.reg.Snapshot()),
	})
	if err != nil {
		p.log.Errorf("chunk %d: building extraction prompt: %v", chunk.Index, err)
		return ""
	}
	p.log.Emit(events.TypePrompt, fmt.Sprintf("prompt for chunk %d", chunk.Index),
		map[string]string{"system": req.System, "user": req.User})

	raw, err := p.backend.Complete(ctx, req)
	if err != nil {
		p.log.Errorf("chunk %d: extraction call failed: %v", chunk.Index, err)
		return ""
	}
	p.log.Emit(events.TypeRawResponse, fmt.Sprintf("response for chunk %d", chunk.Index), raw)
	return raw
}

// parse decodes raw model text into candidates. A decode failure is local
// to the chunk: it logs an error and returns nothing.
func (p *Pipeline) parse(chunkIndex int, raw string) []types.CandidateEntity {
	if raw == "" {
		return nil
	}
	candidates, err := decode.Parse(raw)
	if err != nil {
		p.log.Errorf("chunk %d: decoding response: %v", chunkIndex, err)
		return nil
	}
	return candidates
}

// acceptedCandidate is a candidate that survived filtering, paired with its
// classified category.
type acceptedCandidate struct {
	types.CandidateEntity
	Category types.Category
}

// filter applies per-candidate validation. Rejections are warnings, never
// errors: the model over-generates and siblings still proceed.
func (p *Pipeline) filter(chunkIndex int, candidates []types.CandidateEntity, window string) []acceptedCandidate {
	var accepted []acceptedCandidate
	for _, cand := range candidates {
		if cand.Name == "" {
			p.log.Warningf("chunk %d: dropping candidate with empty name", chunkIndex)
			continue
		}

		cat, ok := classify.Classify(cand.Type)
		if !ok {
			p.log.Warningf("chunk %d: dropping %q: unrecognized type %q", chunkIndex, cand.Name, cand.Type)
			continue
		}

		if cand.BaseImportanceScore < 1 || cand.BaseImportanceScore > 10 {
			p.log.Warningf("chunk %d: %q: score %d out of range, defaulting to 1",
				chunkIndex, cand.Name, cand.BaseImportanceScore)
			cand.BaseImportanceScore = 1
		}

		if !mentionVerified(cand, window) {
			p.log.Warningf("chunk %d: dropping %q: not found in transcript window", chunkIndex, cand.Name)
			continue
		}

		accepted = append(accepted, acceptedCandidate{CandidateEntity: cand, Category: cat})
	}
	return accepted
}

// mentionVerified reports whether the candidate's name or any declared
// alias occurs in the transcript window. mention.Contains accepts a
// distinctive token of a multi-word name, so a canonicalized full name
// passes when the window only carries the partial form.
func mentionVerified(cand types.CandidateEntity, window string) bool {
	if mention.Contains(cand.Name, window) {
		return true
	}
	for _, alias := range cand.Aliases {
		if mention.Contains(alias, window) {
			return true
		}
	}
	return false
}

// merge folds one accepted candidate into the registry.
func (p *Pipeline) merge(chunkIndex int, cand acceptedCandidate) {
	canonical := p.resolver.Resolve(cand.Name, cand.Category)
	key := registry.Key{Name: normalize.ForComparison(canonical), Category: cand.Category}

	rec, exists := p.reg.Get(key)
	if !exists {
		rec = &types.EntityRecord{
			CanonicalName:       canonical,
			Category:            cand.Category,
			Description:         cand.Description,
			BaseImportanceScore: cand.BaseImportanceScore,
			MentionCount:        0,
			FirstMentionedIndex: chunkIndex,
		}
		p.adoptAliases(rec, cand)
		p.reg.Put(key, rec)
		p.log.Statusf("chunk %d: new entity %q (%s)", chunkIndex, canonical, cand.Category)
		return
	}

	if cand.Description != "" {
		rec.Description = cand.Description
	}
	if cand.BaseImportanceScore > rec.BaseImportanceScore {
		rec.BaseImportanceScore = cand.BaseImportanceScore
	}
	if betterName(rec.CanonicalName, cand.Name) {
		p.reg.BindAlias(normalize.ForComparison(cand.Name), cand.Name)
		rec.CanonicalName = normalize.CleanName(cand.Name)
	}
	p.adoptAliases(rec, cand)
	p.reg.Put(key, rec)
}

// adoptAliases binds the candidate's raw name and declared aliases to the
// record's canonical name, and keeps them on the record for mention
// scanning. Aliases already bound to a different canonical entity are left
// alone.
func (p *Pipeline) adoptAliases(rec *types.EntityRecord, cand acceptedCandidate) {
	names := append([]string{cand.Name}, cand.Aliases...)
	for _, name := range names {
		norm := normalize.ForComparison(name)
		if norm == "" || norm == normalize.ForComparison(rec.CanonicalName) {
			continue
		}
		if !p.reg.BindAlias(norm, rec.CanonicalName) {
			p.log.Debugf("alias %q already bound elsewhere, keeping existing binding", name)
			continue
		}
		p.log.Debugf("alias %q -> %q", name, rec.CanonicalName)
		if !containsString(rec.Aliases, name) {
			rec.Aliases = append(rec.Aliases, name)
		}
	}
}

// betterName reports whether candidate should replace current as the
// displayed canonical name. Longer names win; only at equal length does a
// name whose first rune is upper-case beat one whose is not. A longer name
// is never discarded for casing alone.
func betterName(current, candidate string) bool {
	if candidate == "" {
		return false
	}
	if len(candidate) > len(current) {
		return true
	}
	if len(candidate) < len(current) {
		return false
	}
	candFirst, _ := utf8.DecodeRuneInString(candidate)
	curFirst, _ := utf8.DecodeRuneInString(current)
	return unicode.IsUpper(candFirst) && !unicode.IsUpper(curFirst)
}

// windowText concatenates the transcript window used for mention
// verification.
func (p *Pipeline) windowText(chunk types.TranscriptChunk) string {
	window := p.feed.Window(chunk.Index, p.windowSize())
	if len(window) == 0 {
		return chunk.Text
	}
	text := ""
	for i, c := range window {
		if i > 0 {
			text += "\n"
		}
		text += c.Text
	}
	return text
}

func (p *Pipeline) windowSize() int {
	if p.cfg.WindowSize <= 0 {
		return 4
	}
	return p.cfg.WindowSize
}

func derefAll(recs []*types.EntityRecord) []types.EntityRecord {
	out := make([]types.EntityRecord, len(recs))
	for i, r := range recs {
		out[i] = *r
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// summarize trims a snapshot to names for event payloads.
func summarize(recs []*types.EntityRecord) []string {
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.CanonicalName
	}
	return names
}
