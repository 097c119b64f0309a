package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"carsight/internal/llm"
)

func TestFetchDetailReturnsText(t *testing.T) {
	fake := llm.NewFakeClient(llm.FakeReply{Resp: &llm.Response{Text: "## Timing chain\nIt stretches."}})
	f := NewIssueFetcher(fake, "model-a")

	got := f.FetchDetail(context.Background(), VehicleQuery{Make: "Audi", Model: "A4", Year: 2018}, "Timing chain stretch")
	require.Equal(t, "## Timing chain\nIt stretches.", got)

	prompt := fake.Requests[0].Messages[0].Text
	require.Contains(t, prompt, "Timing chain stretch")
	require.Contains(t, prompt, "2018 Audi A4")
	require.Contains(t, prompt, "markdown")
}

func TestFetchDetailNeverRaises(t *testing.T) {
	fake := llm.NewFakeClient(llm.FakeReply{Err: errors.New("network down")})
	f := NewIssueFetcher(fake, "model-a")

	got := f.FetchDetail(context.Background(), VehicleQuery{Make: "Audi", Model: "A4", Year: 2018}, "Oil leak")
	require.Equal(t, IssueDetailFallback, got)
}

func TestFetchDetailEmptyResponseFallsBack(t *testing.T) {
	fake := llm.NewFakeClient(llm.FakeReply{Resp: &llm.Response{Text: "  \n"}})
	f := NewIssueFetcher(fake, "model-a")

	got := f.FetchDetail(context.Background(), VehicleQuery{Make: "Audi", Model: "A4", Year: 2018}, "Oil leak")
	require.Equal(t, IssueDetailFallback, got)
}
