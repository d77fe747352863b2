package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/mcoot/symbolduel/internal/model"
)

const tracerName = "github.com/mcoot/symbolduel/internal/dependencies/judge"

// HTTPClient calls a sequence judge over HTTP
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

// Ensure HTTPClient implements Judge
var _ Judge = (*HTTPClient)(nil)

// NewHTTPClient creates a judge client for the service at baseURL
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tracer: otel.Tracer(tracerName),
	}
}

type createRoundRequest struct {
	Round int `json:"round"`
}

type validateRequest struct {
	Round    int            `json:"round"`
	Sequence []model.Symbol `json:"sequence"`
	Answers  []Submission   `json:"answers"`
}

// CreateRound asks the judge for the sequence of a round
func (c *HTTPClient) CreateRound(ctx context.Context, round int) (*Round, error) {
	ctx, span := c.tracer.Start(ctx, "judge.CreateRound", trace.WithAttributes(attribute.Int("round", round)))
	defer span.End()

	var result Round
	if err := c.post(ctx, "/games/create-round", createRoundRequest{Round: round}, &result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(result.Sequence) == 0 {
		err := fmt.Errorf("%w: empty sequence", model.ErrJudgeUnavailable)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("sequence.length", len(result.Sequence)))
	return &result, nil
}

// Validate asks the judge to grade a round's answers
func (c *HTTPClient) Validate(ctx context.Context, round int, sequence []model.Symbol, answers []Submission) (*Verdict, error) {
	ctx, span := c.tracer.Start(ctx, "judge.Validate", trace.WithAttributes(
		attribute.Int("round", round),
		attribute.Int("answers", len(answers)),
	))
	defer span.End()

	var result Verdict
	req := validateRequest{Round: round, Sequence: sequence, Answers: answers}
	if err := c.post(ctx, "/games/validate", req, &result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return &result, nil
}

// post sends a JSON request and decodes a JSON response. Every failure is
// reported as ErrJudgeUnavailable.
func (c *HTTPClient) post(ctx context.Context, path string, body, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: creating request: %v", model.ErrJudgeUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrJudgeUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", model.ErrJudgeUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: decoding response: %v", model.ErrJudgeUnavailable, err)
	}
	return nil
}
