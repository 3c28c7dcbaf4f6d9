// Copyright 2025 Lucentia Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package notes

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/lucentia/studyforge/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Generator produces structured study notes from chunk text.
// Implementations must be safe for concurrent use.
type Generator interface {
	// SummariseChunk returns structured notes for a single chunk.
	// Any failure is reported as a *GenerationError.
	SummariseChunk(ctx context.Context, chunk core.Chunk) (core.Note, error)

	// SynthesiseOverview produces a job-level overview from the chunk
	// summaries. Any failure is reported as a *GenerationError.
	SynthesiseOverview(ctx context.Context, summaries []string, projectLabel string) (core.Overview, error)
}

// Gateway implements Generator against an Ollama-compatible generation
// endpoint.
type Gateway struct {
	client  llms.Model
	timeout time.Duration
	logger  *slog.Logger
}

// chunkPayload mirrors the JSON object the model is asked to return per
// chunk. Quotes stay raw so inconsistent upstream shapes can be tolerated.
type chunkPayload struct {
	Summary   string            `json:"summary"`
	Insights  []string          `json:"insights"`
	Questions []string          `json:"questions"`
	Quotes    []json.RawMessage `json:"quotes"`
}

// overviewPayload mirrors the JSON object the model is asked to return for
// the job-level overview.
type overviewPayload struct {
	Overview    string   `json:"overview"`
	Themes      []string `json:"themes"`
	ActionItems []string `json:"action_items"`
}

// newGateway is the internal constructor returning the concrete type.
func newGateway(config *Config) (*Gateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := ollama.New(
		ollama.WithServerURL(config.Endpoint),
		ollama.WithModel(config.Model),
		ollama.WithFormat("json"),
	)
	if err != nil {
		return nil, err
	}

	return &Gateway{
		client:  client,
		timeout: config.Timeout,
		logger:  slog.Default().With("component", "notes-gateway"),
	}, nil
}

// NewGateway creates a gateway for the configured generation endpoint.
//
// Returns the Generator interface to enforce abstraction.
func NewGateway(config *Config) (Generator, error) {
	return newGateway(config)
}

// SummariseChunk submits the chunk prompt and parses the structured note.
func (g *Gateway) SummariseChunk(ctx context.Context, chunk core.Chunk) (core.Note, error) {
	raw, err := g.generate(ctx, "chunk summary", chunkPrompt(chunk.Document, chunk.Index, chunk.Text))
	if err != nil {
		return core.Note{}, err
	}

	var payload chunkPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		g.logger.Warn("chunk summary response was not valid JSON", "document", chunk.Document, "index", chunk.Index, "err", err)
		return core.Note{}, &GenerationError{Op: "chunk summary", Err: err}
	}

	note := core.Note{
		Summary:   payload.Summary,
		Insights:  payload.Insights,
		Questions: payload.Questions,
		Quotes:    NormalizeQuotes(payload.Quotes),
	}
	if note.Insights == nil {
		note.Insights = []string{}
	}
	if note.Questions == nil {
		note.Questions = []string{}
	}
	return note, nil
}

// SynthesiseOverview submits the overview prompt built from all chunk
// summaries and parses the result.
func (g *Gateway) SynthesiseOverview(ctx context.Context, summaries []string, projectLabel string) (core.Overview, error) {
	joined := make([]string, 0, len(summaries))
	for _, s := range summaries {
		if strings.TrimSpace(s) != "" {
			joined = append(joined, s)
		}
	}

	raw, err := g.generate(ctx, "overview", overviewPrompt(projectLabel, strings.Join(joined, "\n")))
	if err != nil {
		return core.Overview{}, err
	}

	var payload overviewPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		g.logger.Warn("overview response was not valid JSON", "err", err)
		return core.Overview{}, &GenerationError{Op: "overview", Err: err}
	}

	overview := core.Overview{
		Overview:    payload.Overview,
		Themes:      payload.Themes,
		ActionItems: payload.ActionItems,
	}
	if overview.Themes == nil {
		overview.Themes = []string{}
	}
	if overview.ActionItems == nil {
		overview.ActionItems = []string{}
	}
	return overview, nil
}

// generate performs one bounded call against the generation endpoint and
// returns the cleaned response text.
func (g *Gateway) generate(ctx context.Context, op, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	response, err := llms.GenerateFromSinglePrompt(ctx, g.client, prompt, llms.WithTemperature(0.1))
	if err != nil {
		g.logger.Error("generation request failed", "op", op, "err", err)
		return "", &GenerationError{Op: op, Err: err}
	}

	// Strip markdown code fences if present
	text := strings.TrimSpace(response)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if text == "" {
		return "", &GenerationError{Op: op}
	}

	// Try to repair common JSON issues before the caller parses
	return repairJSON(text), nil
}
