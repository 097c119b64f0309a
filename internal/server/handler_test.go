package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"carsight/internal/analysis"
	"carsight/internal/chat"
	"carsight/internal/llm"
)

func newTestMux(t *testing.T, client llm.Client) http.Handler {
	t.Helper()
	models := analysis.Models{Retriever: "model-a", Synthesizer: "model-b", IssueDetail: "model-a"}
	svc := analysis.NewService(client, models, slog.Default())
	sessions := chat.NewRegistry(client, "model-c", 8, time.Minute)
	return NewMux(NewHandler(svc, sessions, slog.Default()))
}

func postJSON(t *testing.T, mux http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleAnalyzeOK(t *testing.T) {
	fake := llm.NewFakeClient(
		llm.FakeReply{Resp: &llm.Response{Text: "summary"}},
		llm.FakeReply{Resp: &llm.Response{Text: `{"pros":["Reliable"]}`}},
	)
	mux := newTestMux(t, fake)

	rec := postJSON(t, mux, "/api/analyze", analysis.VehicleQuery{Make: "Audi", Model: "A4", Year: 2018})
	require.Equal(t, http.StatusOK, rec.Code)

	var res analysis.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, []string{"Reliable"}, res.Pros)
	require.Equal(t, "summary", res.SearchSummary)
}

func TestHandleAnalyzeValidation(t *testing.T) {
	mux := newTestMux(t, llm.NewFakeClient())

	rec := postJSON(t, mux, "/api/analyze", analysis.VehicleQuery{Model: "A4", Year: 2018})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, mux, "/api/analyze", analysis.VehicleQuery{Make: "Audi", Model: "A4", Year: 2018, Mileage: -1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyzeFailureHasNoPartialBody(t *testing.T) {
	fake := llm.NewFakeClient(llm.FakeReply{Err: errors.New("quota")})
	mux := newTestMux(t, fake)

	rec := postJSON(t, mux, "/api/analyze", analysis.VehicleQuery{Make: "Audi", Model: "A4", Year: 2018})
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, map[string]string{"error": "analysis failed, please try again"}, body)
}

func TestHandleIssueDetailAlwaysAnswers(t *testing.T) {
	fake := llm.NewFakeClient(llm.FakeReply{Err: errors.New("down")})
	mux := newTestMux(t, fake)

	rec := postJSON(t, mux, "/api/issues/detail", issueDetailRequest{
		Vehicle: analysis.VehicleQuery{Make: "Audi", Model: "A4", Year: 2018},
		Issue:   "Oil leak",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var res issueDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, analysis.IssueDetailFallback, res.Detail)
}

func TestChatSessionLifecycle(t *testing.T) {
	fake := llm.NewFakeClient(llm.FakeReply{Resp: &llm.Response{Text: "hello there"}})
	mux := newTestMux(t, fake)

	rec := postJSON(t, mux, "/api/chat/sessions", chatCreateRequest{Vehicle: "2018 Audi A4"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created chatCreateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.SessionID)
	require.Equal(t, chat.Greeting, created.Greeting)

	rec = postJSON(t, mux, "/api/chat/sessions/"+created.SessionID+"/messages", chatMessageRequest{Text: "hi"})
	require.Equal(t, http.StatusOK, rec.Code)
	var msg chatMessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	require.Equal(t, "hello there", msg.Reply)

	req := httptest.NewRequest(http.MethodDelete, "/api/chat/sessions/"+created.SessionID, nil)
	del := httptest.NewRecorder()
	mux.ServeHTTP(del, req)
	require.Equal(t, http.StatusNoContent, del.Code)

	rec = postJSON(t, mux, "/api/chat/sessions/"+created.SessionID+"/messages", chatMessageRequest{Text: "hi"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatMessageUnknownSession(t *testing.T) {
	mux := newTestMux(t, llm.NewFakeClient())
	rec := postJSON(t, mux, "/api/chat/sessions/nope/messages", chatMessageRequest{Text: "hi"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	mux := newTestMux(t, llm.NewFakeClient())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
