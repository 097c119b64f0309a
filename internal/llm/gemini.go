package llm

import (
	"context"
	"strings"

	genai "google.golang.org/genai"
)

// GeminiClient is a thin wrapper around the official genai client.
// It only focuses on the API call itself. Cross-cutting concerns
// (rate limiting, logging) are applied via Middleware.
type GeminiClient struct {
	cli *genai.Client
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli}, nil
}

func (g *GeminiClient) Name() string { return "gemini" }
func (g *GeminiClient) Close() error { return nil }

// Generate maps a Request onto a single GenerateContent call and extracts
// text plus grounding citations from the first candidate.
func (g *GeminiClient) Generate(ctx context.Context, req Request) (*Response, error) {
	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if req.Temperature != nil {
		cfg.Temperature = req.Temperature
	}
	if req.ThinkingBudget != nil {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: req.ThinkingBudget}
	}
	if req.ResponseJSON {
		cfg.ResponseMIMEType = "application/json"
	}
	if req.EnableGrounding {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		contents = append(contents, &genai.Content{
			Role:  m.Role,
			Parts: []*genai.Part{{Text: m.Text}},
		})
	}

	resp, err := g.cli.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, err
	}
	return extractResponse(resp), nil
}

// extractResponse pulls text and citations out of the loosely-typed
// upstream payload. Absence at any nesting level yields an empty result,
// never a fault.
func extractResponse(resp *genai.GenerateContentResponse) *Response {
	out := &Response{}
	if resp == nil || len(resp.Candidates) == 0 {
		return out
	}
	cand := resp.Candidates[0]
	if cand.Content != nil {
		var sb strings.Builder
		for _, p := range cand.Content.Parts {
			if p == nil || p.Thought {
				continue
			}
			sb.WriteString(p.Text)
		}
		out.Text = sb.String()
	}
	if cand.GroundingMetadata != nil {
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}
			if strings.TrimSpace(chunk.Web.URI) == "" {
				continue
			}
			out.Citations = append(out.Citations, Citation{
				URI:   chunk.Web.URI,
				Title: chunk.Web.Title,
			})
		}
	}
	return out
}
