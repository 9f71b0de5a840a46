package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenlens/internal/ai"
	"tokenlens/internal/source"
)

type fakeSource struct {
	name    string
	payload string
	err     error
	delay   time.Duration
	calls   atomic.Int32
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Fetch(ctx context.Context, q source.Query) (json.RawMessage, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(s.payload), nil
}

// echoCompleter returns the user prompt so stage outputs carry their inputs.
type echoCompleter struct {
	calls atomic.Int32
	err   error
}

func (c *echoCompleter) Complete(ctx context.Context, messages []ai.Message, opts ai.CompletionOptions) (string, error) {
	c.calls.Add(1)
	if c.err != nil {
		return "", c.err
	}
	return messages[len(messages)-1].Content, nil
}

func echoStage(name string, completer ai.Completer, slots ...string) *ai.Stage {
	body := ""
	for _, s := range slots {
		body += "{" + s + "}\n"
	}
	return ai.NewStage(name, &ai.Template{ID: name, Body: body, Slots: slots}, completer, ai.CompletionOptions{})
}

func newTestRunner(t *testing.T, defs ...*Definition) *Runner {
	t.Helper()
	runner, err := NewRunner(defs, zerolog.Nop())
	require.NoError(t, err)
	return runner
}

func TestRunner_UnknownPipeline(t *testing.T) {
	runner := newTestRunner(t)

	_, err := runner.Run(context.Background(), "nope", source.Query{})
	require.Error(t, err)

	var unknown *ErrUnknownPipeline
	assert.ErrorAs(t, err, &unknown)
}

func TestRunner_AllSourcesFail_NoCompletionIssued(t *testing.T) {
	completer := &echoCompleter{}
	def, err := NewDefinition("p",
		[]SourceNode{
			{Name: "a", Source: &fakeSource{name: "a", err: fmt.Errorf("down")}},
			{Name: "b", Source: &fakeSource{name: "b", err: fmt.Errorf("down")}},
		},
		[]StageNode{
			{Name: "sa", Stage: echoStage("sa", completer, "data"), Inputs: map[string]string{"data": "a"}},
			{Name: "sb", Stage: echoStage("sb", completer, "data"), Inputs: map[string]string{"data": "b"}},
		},
	)
	require.NoError(t, err)

	combined, err := newTestRunner(t, def).Run(context.Background(), "p", source.Query{})
	require.NoError(t, err)

	assert.True(t, combined.AllFailed())
	assert.Equal(t, int32(0), completer.calls.Load(), "no completion call for stages with failed inputs")
	for _, name := range []string{"sa", "sb"} {
		result := combined.Results[name]
		assert.Equal(t, "error", result.Status)
		assert.Contains(t, result.Error, "UpstreamFailure")
	}
}

func TestRunner_OneSourceFails_OtherBranchesSucceed(t *testing.T) {
	completer := &echoCompleter{}
	def, err := NewDefinition("p",
		[]SourceNode{
			{Name: "a", Source: &fakeSource{name: "a", payload: `{"ok":1}`}},
			{Name: "b", Source: &fakeSource{name: "b", err: fmt.Errorf("timeout")}},
			{Name: "c", Source: &fakeSource{name: "c", payload: `{"ok":3}`}},
		},
		[]StageNode{
			{Name: "sa", Stage: echoStage("sa", completer, "data"), Inputs: map[string]string{"data": "a"}},
			{Name: "sb", Stage: echoStage("sb", completer, "data"), Inputs: map[string]string{"data": "b"}},
			{Name: "sc", Stage: echoStage("sc", completer, "data"), Inputs: map[string]string{"data": "c"}},
		},
	)
	require.NoError(t, err)

	combined, err := newTestRunner(t, def).Run(context.Background(), "p", source.Query{})
	require.NoError(t, err)

	assert.False(t, combined.AllFailed())
	assert.Equal(t, "success", combined.Results["sa"].Status)
	assert.Equal(t, "success", combined.Results["sc"].Status)
	assert.Equal(t, "error", combined.Results["sb"].Status)
	assert.Contains(t, combined.Results["sb"].Error, "UpstreamFailure")
	assert.Equal(t, int32(2), completer.calls.Load())
}

func TestRunner_FailurePropagatesThroughGraph(t *testing.T) {
	completer := &echoCompleter{}
	def, err := NewDefinition("p",
		[]SourceNode{
			{Name: "a", Source: &fakeSource{name: "a", err: fmt.Errorf("down")}},
		},
		[]StageNode{
			{Name: "s1", Stage: echoStage("s1", completer, "data"), Inputs: map[string]string{"data": "a"}},
			{Name: "s2", Stage: echoStage("s2", completer, "data"), Inputs: map[string]string{"data": "s1"}},
		},
	)
	require.NoError(t, err)

	combined, err := newTestRunner(t, def).Run(context.Background(), "p", source.Query{})
	require.NoError(t, err)

	assert.Equal(t, int32(0), completer.calls.Load())
	assert.Equal(t, "error", combined.Results["s2"].Status)
	assert.Contains(t, combined.Results["s2"].Error, "UpstreamFailure")
}

func TestRunner_LevelZeroFanOutIsConcurrent(t *testing.T) {
	delay := 300 * time.Millisecond
	def, err := NewDefinition("p",
		[]SourceNode{
			{Name: "a", Source: &fakeSource{name: "a", payload: `{}`, delay: delay}},
			{Name: "b", Source: &fakeSource{name: "b", payload: `{}`, delay: delay}},
		},
		nil,
	)
	require.NoError(t, err)

	start := time.Now()
	_, err = newTestRunner(t, def).Run(context.Background(), "p", source.Query{})
	require.NoError(t, err)

	elapsed := time.Since(start)
	assert.Less(t, elapsed, 2*delay, "wall clock should be max of source latencies, not sum")
}

func TestRunner_NoCrossRequestMemoization(t *testing.T) {
	src := &fakeSource{name: "a", payload: `{}`}
	def, err := NewDefinition("p",
		[]SourceNode{{Name: "a", Source: src}},
		nil,
	)
	require.NoError(t, err)
	runner := newTestRunner(t, def)

	for i := 0; i < 2; i++ {
		_, err := runner.Run(context.Background(), "p", source.Query{TokenAddress: "0xABC"})
		require.NoError(t, err)
	}

	assert.Equal(t, int32(2), src.calls.Load(), "each request must fetch fresh")
}

func TestRunner_MixedBranchOutcomes(t *testing.T) {
	completer := &echoCompleter{}
	def, err := NewDefinition("p",
		[]SourceNode{
			{Name: "price_data", Source: &fakeSource{name: "price", payload: `{"price": 1.23, "liquidity": 1000}`}},
			{Name: "social_data", Source: &fakeSource{name: "social", err: fmt.Errorf("timeout")}},
		},
		[]StageNode{
			{Name: "price_stage", Stage: echoStage("price_stage", completer, "data"), Inputs: map[string]string{"data": "price_data"}},
			{Name: "social_stage", Stage: echoStage("social_stage", completer, "data"), Inputs: map[string]string{"data": "social_data"}},
		},
	)
	require.NoError(t, err)

	combined, err := newTestRunner(t, def).Run(context.Background(), "p", source.Query{TokenAddress: "0xABC"})
	require.NoError(t, err)

	assert.Equal(t, "success", combined.Results["price_stage"].Status)
	assert.Contains(t, combined.Results["price_stage"].Output, "1.23")
	assert.Equal(t, "error", combined.Results["social_stage"].Status)
	assert.Contains(t, combined.Results["social_stage"].Error, "UpstreamFailure")
}

func TestRunner_PredictConsumesAllThreeBranches(t *testing.T) {
	completer := &echoCompleter{}
	def, err := NewDefinition("forecast",
		[]SourceNode{
			{Name: "a", Source: &fakeSource{name: "a", payload: `{"branch":"alpha"}`}},
			{Name: "b", Source: &fakeSource{name: "b", payload: `{"branch":"beta"}`}},
			{Name: "c", Source: &fakeSource{name: "c", payload: `{"branch":"gamma"}`}},
		},
		[]StageNode{
			{Name: "sa", Stage: echoStage("sa", completer, "data"), Inputs: map[string]string{"data": "a"}},
			{Name: "sb", Stage: echoStage("sb", completer, "data"), Inputs: map[string]string{"data": "b"}},
			{Name: "sc", Stage: echoStage("sc", completer, "data"), Inputs: map[string]string{"data": "c"}},
			{Name: "predict", Stage: echoStage("predict", completer, "x", "y", "z"), Inputs: map[string]string{"x": "sa", "y": "sb", "z": "sc"}},
		},
	)
	require.NoError(t, err)

	combined, err := newTestRunner(t, def).Run(context.Background(), "forecast", source.Query{})
	require.NoError(t, err)

	require.Contains(t, combined.Results, "predict")
	output := combined.Results["predict"].Output
	assert.Contains(t, output, "alpha")
	assert.Contains(t, output, "beta")
	assert.Contains(t, output, "gamma")
	assert.Equal(t, int32(4), completer.calls.Load())
}

func TestRunner_StageFailureMarksDependents(t *testing.T) {
	failing := &echoCompleter{err: fmt.Errorf("api error")}
	ok := &echoCompleter{}
	def, err := NewDefinition("p",
		[]SourceNode{{Name: "a", Source: &fakeSource{name: "a", payload: `{}`}}},
		[]StageNode{
			{Name: "s1", Stage: echoStage("s1", failing, "data"), Inputs: map[string]string{"data": "a"}},
			{Name: "s2", Stage: echoStage("s2", ok, "data"), Inputs: map[string]string{"data": "s1"}},
		},
	)
	require.NoError(t, err)

	combined, err := newTestRunner(t, def).Run(context.Background(), "p", source.Query{})
	require.NoError(t, err)

	assert.Equal(t, "error", combined.Results["s2"].Status)
	assert.Equal(t, int32(0), ok.calls.Load())
}

func TestBuiltinDefinitions(t *testing.T) {
	null := &fakeSource{name: "x", payload: `{}`}
	defs, err := BuiltinDefinitions(Sources{
		Moralis:     null,
		DexScreener: null,
		GMGN:        null,
		Reddit:      null,
		Binance:     null,
	}, &echoCompleter{}, ai.CompletionOptions{})
	require.NoError(t, err)

	ids := make([]string, 0, len(defs))
	for _, d := range defs {
		ids = append(ids, d.ID)
	}
	assert.ElementsMatch(t, []string{"price", "token", "market", "sentiment", "forecast"}, ids)
}
