package pipeline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenlens/internal/ai"
	"tokenlens/internal/source"
)

type nullSource struct {
	name string
}

func (s *nullSource) Name() string { return s.name }

func (s *nullSource) Fetch(ctx context.Context, q source.Query) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

type nullCompleter struct{}

func (c *nullCompleter) Complete(ctx context.Context, messages []ai.Message, opts ai.CompletionOptions) (string, error) {
	return "", nil
}

func testStage(name string, slots ...string) *ai.Stage {
	body := ""
	for _, s := range slots {
		body += "{" + s + "}\n"
	}
	return ai.NewStage(name, &ai.Template{
		ID:    name,
		Body:  body,
		Slots: slots,
	}, &nullCompleter{}, ai.CompletionOptions{})
}

func TestNewDefinition_Valid(t *testing.T) {
	def, err := NewDefinition("test",
		[]SourceNode{{Name: "a", Source: &nullSource{name: "a"}}},
		[]StageNode{
			{Name: "s1", Stage: testStage("s1", "data"), Inputs: map[string]string{"data": "a"}},
			{Name: "s2", Stage: testStage("s2", "data"), Inputs: map[string]string{"data": "s1"}},
		},
	)
	require.NoError(t, err)

	assert.Len(t, def.levels, 2)
	assert.Equal(t, []string{"s1"}, def.levels[0])
	assert.Equal(t, []string{"s2"}, def.levels[1])
	assert.Equal(t, []string{"s2"}, def.terminals)
}

func TestNewDefinition_CycleFailsFast(t *testing.T) {
	_, err := NewDefinition("test",
		[]SourceNode{{Name: "a", Source: &nullSource{name: "a"}}},
		[]StageNode{
			{Name: "s1", Stage: testStage("s1", "data"), Inputs: map[string]string{"data": "s2"}},
			{Name: "s2", Stage: testStage("s2", "data"), Inputs: map[string]string{"data": "s1"}},
		},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestNewDefinition_SelfCycle(t *testing.T) {
	_, err := NewDefinition("test",
		[]SourceNode{{Name: "a", Source: &nullSource{name: "a"}}},
		[]StageNode{
			{Name: "s1", Stage: testStage("s1", "data"), Inputs: map[string]string{"data": "s1"}},
		},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestNewDefinition_UnknownReference(t *testing.T) {
	_, err := NewDefinition("test",
		[]SourceNode{{Name: "a", Source: &nullSource{name: "a"}}},
		[]StageNode{
			{Name: "s1", Stage: testStage("s1", "data"), Inputs: map[string]string{"data": "missing"}},
		},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown node")
}

func TestNewDefinition_UnboundSlot(t *testing.T) {
	_, err := NewDefinition("test",
		[]SourceNode{{Name: "a", Source: &nullSource{name: "a"}}},
		[]StageNode{
			{Name: "s1", Stage: testStage("s1", "data", "extra"), Inputs: map[string]string{"data": "a"}},
		},
	)
	require.Error(t, err)
}

func TestNewDefinition_DuplicateNames(t *testing.T) {
	_, err := NewDefinition("test",
		[]SourceNode{{Name: "a", Source: &nullSource{name: "a"}}},
		[]StageNode{
			{Name: "a", Stage: testStage("a", "data"), Inputs: map[string]string{"data": "a"}},
		},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestNewDefinition_UnconsumedSourceIsTerminal(t *testing.T) {
	def, err := NewDefinition("test",
		[]SourceNode{
			{Name: "a", Source: &nullSource{name: "a"}},
			{Name: "b", Source: &nullSource{name: "b"}},
		},
		[]StageNode{
			{Name: "s1", Stage: testStage("s1", "data"), Inputs: map[string]string{"data": "a"}},
		},
	)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "s1"}, def.terminals)
}

func TestNewDefinition_DiamondLevels(t *testing.T) {
	def, err := NewDefinition("test",
		[]SourceNode{
			{Name: "a", Source: &nullSource{name: "a"}},
			{Name: "b", Source: &nullSource{name: "b"}},
		},
		[]StageNode{
			{Name: "left", Stage: testStage("left", "data"), Inputs: map[string]string{"data": "a"}},
			{Name: "right", Stage: testStage("right", "data"), Inputs: map[string]string{"data": "b"}},
			{Name: "merge", Stage: testStage("merge", "l", "r"), Inputs: map[string]string{"l": "left", "r": "right"}},
		},
	)
	require.NoError(t, err)

	require.Len(t, def.levels, 2)
	assert.ElementsMatch(t, []string{"left", "right"}, def.levels[0])
	assert.Equal(t, []string{"merge"}, def.levels[1])
	assert.Equal(t, []string{"merge"}, def.terminals)
}
