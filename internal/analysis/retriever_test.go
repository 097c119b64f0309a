package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"carsight/internal/llm"
)

func TestRetrievePromptBranchGeneral(t *testing.T) {
	fake := llm.NewFakeClient(llm.FakeReply{Resp: &llm.Response{Text: "summary"}})
	r := NewMarketRetriever(fake, "model-a")

	_, err := r.Retrieve(context.Background(), VehicleQuery{Make: "Audi", Model: "A4", Year: 2018})
	require.NoError(t, err)
	require.Len(t, fake.Requests, 1)

	prompt := fake.Requests[0].Messages[0].Text
	require.Contains(t, prompt, "in general")
	require.NotContains(t, prompt, "odometer")
	require.True(t, fake.Requests[0].EnableGrounding)
	require.NotNil(t, fake.Requests[0].Temperature)
}

func TestRetrievePromptBranchSpecific(t *testing.T) {
	fake := llm.NewFakeClient(llm.FakeReply{Resp: &llm.Response{Text: "summary"}})
	r := NewMarketRetriever(fake, "model-a")

	q := VehicleQuery{Make: "Audi", Model: "A4", Year: 2018, Mileage: 120000, Price: 15000, Currency: "EUR"}
	_, err := r.Retrieve(context.Background(), q)
	require.NoError(t, err)

	prompt := fake.Requests[0].Messages[0].Text
	require.Contains(t, prompt, "odometer")
	require.Contains(t, prompt, "15000 EUR")
	require.NotContains(t, prompt, "in general")
}

func TestRetrievePromptEnumeratesFacets(t *testing.T) {
	fake := llm.NewFakeClient(llm.FakeReply{Resp: &llm.Response{Text: "x"}})
	r := NewMarketRetriever(fake, "model-a")
	_, err := r.Retrieve(context.Background(), VehicleQuery{Make: "VW", Model: "Golf", Year: 2020})
	require.NoError(t, err)

	prompt := fake.Requests[0].Messages[0].Text
	for _, facet := range []string{"price range", "defects", "maintenance cost", "fuel consumption", "competitors"} {
		if !strings.Contains(strings.ToLower(prompt), facet) {
			t.Fatalf("prompt is missing facet %q:\n%s", facet, prompt)
		}
	}
}

func TestRetrieveCitations(t *testing.T) {
	fake := llm.NewFakeClient(llm.FakeReply{Resp: &llm.Response{
		Text: "summary",
		Citations: []llm.Citation{
			{URI: "https://a.example", Title: "A"},
			{URI: "", Title: "dropped"},
			{URI: "https://b.example"},
		},
	}})
	r := NewMarketRetriever(fake, "model-a")

	facts, err := r.Retrieve(context.Background(), VehicleQuery{Make: "Audi", Model: "A4", Year: 2018})
	require.NoError(t, err)
	require.Equal(t, []GroundingSource{
		{URI: "https://a.example", Title: "A"},
		{URI: "https://b.example", Title: "Source"},
	}, facts.Sources)
}

func TestRetrieveEmptyTextSentinel(t *testing.T) {
	fake := llm.NewFakeClient(llm.FakeReply{Resp: &llm.Response{Text: "   "}})
	r := NewMarketRetriever(fake, "model-a")

	facts, err := r.Retrieve(context.Background(), VehicleQuery{Make: "Audi", Model: "A4", Year: 2018})
	require.NoError(t, err)
	require.Equal(t, SummaryUnavailableSentinel, facts.Summary)
}

func TestRetrieveTransportError(t *testing.T) {
	boom := errors.New("quota exceeded")
	fake := llm.NewFakeClient(llm.FakeReply{Err: boom})
	r := NewMarketRetriever(fake, "model-a")

	_, err := r.Retrieve(context.Background(), VehicleQuery{Make: "Audi", Model: "A4", Year: 2018})
	var re *RetrievalError
	require.ErrorAs(t, err, &re)
	require.ErrorIs(t, err, boom)
}
