package analysis

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"carsight/internal/llm"
)

const tracerName = "internal/analysis"

// Models selects the upstream model per role.
type Models struct {
	Retriever   string
	Synthesizer string
	IssueDetail string
}

// Service runs the two-stage analysis pipeline and owns the issue-detail
// side channel. The two stages are strictly sequential: stage 2 embeds
// stage 1's output in its prompt.
type Service struct {
	retriever   *MarketRetriever
	synthesizer *Synthesizer
	issues      *IssueFetcher
	log         *slog.Logger
}

func NewService(client llm.Client, models Models, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		retriever:   NewMarketRetriever(client, models.Retriever),
		synthesizer: NewSynthesizer(client, models.Synthesizer),
		issues:      NewIssueFetcher(client, models.IssueDetail),
		log:         logger,
	}
}

// Analyze is all-or-nothing: any stage error aborts the whole analysis and
// no partial result is surfaced.
func (s *Service) Analyze(ctx context.Context, query VehicleQuery) (*AnalysisResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "analysis.pipeline")
	defer span.End()

	facts, err := s.retrieveStage(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	draft, err := s.synthesizeStage(ctx, query, facts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	res := Normalize(facts.Summary, facts.Sources, draft)
	s.log.Info("analysis complete",
		"vehicle", query.Label(),
		"general", query.IsGeneral(),
		"sources", len(res.Sources),
		"issues", len(res.CommonIssues),
	)
	return &res, nil
}

func (s *Service) retrieveStage(ctx context.Context, query VehicleQuery) (MarketFacts, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "analysis.retrieve")
	defer span.End()
	facts, err := s.retriever.Retrieve(ctx, query)
	countStage(ctx, "retrieve", err)
	return facts, err
}

func (s *Service) synthesizeStage(ctx context.Context, query VehicleQuery, facts MarketFacts) (*ReportDraft, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "analysis.synthesize")
	defer span.End()
	draft, err := s.synthesizer.Synthesize(ctx, query, facts.Summary, facts.Sources)
	countStage(ctx, "synthesize", err)
	return draft, err
}

// IssueDetail is advisory: it always returns renderable text.
func (s *Service) IssueDetail(ctx context.Context, query VehicleQuery, issueName string) string {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "analysis.issue_detail")
	defer span.End()
	countStage(ctx, "issue_detail", nil)
	return s.issues.FetchDetail(ctx, query, issueName)
}
