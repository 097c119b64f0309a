package analysis

import (
	"context"
	"fmt"
	"strings"

	"carsight/internal/llm"
)

// IssueDetailFallback is returned whenever the focused issue lookup cannot
// produce text. Advisory calls degrade, they never raise.
const IssueDetailFallback = "A detailed explanation for this issue is not available right now. Please try again later."

// IssueFetcher answers on-demand deep-dives into one previously reported
// issue. Unlike the pipeline stages it absorbs every failure.
type IssueFetcher struct {
	llm   llm.Client
	model string
}

func NewIssueFetcher(client llm.Client, model string) *IssueFetcher {
	return &IssueFetcher{llm: client, model: model}
}

// FetchDetail always returns a renderable string. Transport failures and
// empty responses both collapse into the fixed fallback sentence.
func (f *IssueFetcher) FetchDetail(ctx context.Context, query VehicleQuery, issueName string) string {
	resp, err := f.llm.Generate(ctx, llm.Request{
		Model:    f.model,
		Messages: []llm.Message{{Role: llm.RoleUser, Text: buildIssuePrompt(query, issueName)}},
	})
	if err != nil {
		return IssueDetailFallback
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return IssueDetailFallback
	}
	return text
}

func buildIssuePrompt(q VehicleQuery, issueName string) string {
	return fmt.Sprintf(`Explain the known issue %q on the %s in depth.

Cover:
- Root cause: what actually fails and why
- Symptoms: how an owner notices it
- Repair strategy: what a workshop would do and a realistic cost
- DIY feasibility: whether a capable owner can fix it themselves

Format the answer as markdown.`, issueName, q.Label())
}
