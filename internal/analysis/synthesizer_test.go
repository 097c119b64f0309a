package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"carsight/internal/llm"
)

func TestSynthesizeRequestShape(t *testing.T) {
	fake := llm.NewFakeClient(llm.FakeReply{Resp: &llm.Response{Text: `{}`}})
	s := NewSynthesizer(fake, "model-b")

	_, err := s.Synthesize(context.Background(), VehicleQuery{Make: "Audi", Model: "A4", Year: 2018}, "facts", nil)
	require.NoError(t, err)
	require.Len(t, fake.Requests, 1)

	req := fake.Requests[0]
	require.True(t, req.ResponseJSON)
	require.NotNil(t, req.ThinkingBudget)
	require.Equal(t, maxThinkingBudget, *req.ThinkingBudget)
	require.False(t, req.EnableGrounding)
	require.Contains(t, req.System, "automotive expert")
}

func TestSynthesizePromptEmbedsStageOneOutput(t *testing.T) {
	fake := llm.NewFakeClient(llm.FakeReply{Resp: &llm.Response{Text: `{}`}})
	s := NewSynthesizer(fake, "model-b")

	summary := "owners report timing chain stretch around 120k km"
	sources := []GroundingSource{{URI: "https://a.example", Title: "Forum"}}
	_, err := s.Synthesize(context.Background(), VehicleQuery{Make: "Audi", Model: "A4", Year: 2018}, summary, sources)
	require.NoError(t, err)

	prompt := fake.Requests[0].Messages[0].Text
	require.Contains(t, prompt, summary)
	require.Contains(t, prompt, "https://a.example")
	require.Contains(t, prompt, `"Current", "+1 Year", "+2 Years", "+3 Years", "+4 Years", "+5 Years"`)
	require.Contains(t, prompt, "reasoningAnalysis")
	require.Contains(t, prompt, "maintenanceCostBreakdown")
}

func TestSynthesizeGeneralModeNote(t *testing.T) {
	fake := llm.NewFakeClient(llm.FakeReply{Resp: &llm.Response{Text: `{}`}})
	s := NewSynthesizer(fake, "model-b")

	_, err := s.Synthesize(context.Background(), VehicleQuery{Make: "Audi", Model: "A4", Year: 2018}, "facts", nil)
	require.NoError(t, err)
	require.Contains(t, fake.Requests[0].Messages[0].Text, "General model analysis")

	fake2 := llm.NewFakeClient(llm.FakeReply{Resp: &llm.Response{Text: `{}`}})
	s2 := NewSynthesizer(fake2, "model-b")
	q := VehicleQuery{Make: "Audi", Model: "A4", Year: 2018, Mileage: 90000, Price: 17000}
	_, err = s2.Synthesize(context.Background(), q, "facts", nil)
	require.NoError(t, err)
	require.NotContains(t, fake2.Requests[0].Messages[0].Text, "General model analysis")
}

func TestSynthesizeFencedPayload(t *testing.T) {
	fake := llm.NewFakeClient(llm.FakeReply{Resp: &llm.Response{
		Text: "Here you go:\n```json\n{\"pros\":[\"Reliable\"]}\n```",
	}})
	s := NewSynthesizer(fake, "model-b")

	draft, err := s.Synthesize(context.Background(), VehicleQuery{Make: "Audi", Model: "A4", Year: 2018}, "facts", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"Reliable"}, draft.Pros)
}

func TestSynthesizeMalformedPayload(t *testing.T) {
	fake := llm.NewFakeClient(llm.FakeReply{Resp: &llm.Response{Text: "not json at all"}})
	s := NewSynthesizer(fake, "model-b")

	_, err := s.Synthesize(context.Background(), VehicleQuery{Make: "Audi", Model: "A4", Year: 2018}, "facts", nil)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
}

func TestSynthesizeEmptyResponseIsEmptyDraft(t *testing.T) {
	fake := llm.NewFakeClient(llm.FakeReply{Resp: &llm.Response{Text: ""}})
	s := NewSynthesizer(fake, "model-b")

	draft, err := s.Synthesize(context.Background(), VehicleQuery{Make: "Audi", Model: "A4", Year: 2018}, "facts", nil)
	require.NoError(t, err)
	require.NotNil(t, draft)
	require.Equal(t, &ReportDraft{}, draft)
}

func TestSynthesizeTransportErrorUndecorated(t *testing.T) {
	boom := errors.New("connection reset")
	fake := llm.NewFakeClient(llm.FakeReply{Err: boom})
	s := NewSynthesizer(fake, "model-b")

	_, err := s.Synthesize(context.Background(), VehicleQuery{Make: "Audi", Model: "A4", Year: 2018}, "facts", nil)
	require.Same(t, boom, err)
}
