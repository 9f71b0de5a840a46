package pipeline

import (
	"fmt"

	"tokenlens/internal/ai"
	"tokenlens/internal/source"
)

// SourceNode binds a node name to a Data Source Adapter. Sources have no
// inputs; they form level 0 of every run.
type SourceNode struct {
	Name   string
	Source source.Source
}

// StageNode binds a node name to an Analysis Stage and maps each of the
// stage's declared slots to the node whose output fills it.
type StageNode struct {
	Name   string
	Stage  *ai.Stage
	Inputs map[string]string // slot -> node name
}

// Definition is a static, request-independent graph of sources and stages.
// Built once at startup, validated acyclic, read-only thereafter.
type Definition struct {
	ID      string
	sources []SourceNode
	stages  []StageNode

	// levels holds stage names partitioned by dependency depth; level i
	// stages depend only on sources and stages in levels < i.
	levels      [][]string
	stageByName map[string]*StageNode
	terminals   []string
}

// NewDefinition validates the graph: names unique, every slot bound to an
// existing node, and no cycles. A cyclic graph fails here, not at run time.
func NewDefinition(id string, sources []SourceNode, stages []StageNode) (*Definition, error) {
	if id == "" {
		return nil, fmt.Errorf("pipeline: id is required")
	}

	def := &Definition{
		ID:          id,
		sources:     sources,
		stages:      stages,
		stageByName: make(map[string]*StageNode, len(stages)),
	}

	isSource := make(map[string]bool, len(sources))
	for _, s := range sources {
		if s.Name == "" || s.Source == nil {
			return nil, fmt.Errorf("pipeline %s: source node with empty name or nil source", id)
		}
		if isSource[s.Name] {
			return nil, fmt.Errorf("pipeline %s: duplicate node %q", id, s.Name)
		}
		isSource[s.Name] = true
	}

	for i := range stages {
		stage := &stages[i]
		if stage.Name == "" || stage.Stage == nil {
			return nil, fmt.Errorf("pipeline %s: stage node with empty name or nil stage", id)
		}
		if isSource[stage.Name] || def.stageByName[stage.Name] != nil {
			return nil, fmt.Errorf("pipeline %s: duplicate node %q", id, stage.Name)
		}
		def.stageByName[stage.Name] = stage
	}

	// every declared slot must be bound, every binding must be declared
	for _, stage := range stages {
		declared := stage.Stage.InputSlots()
		if len(stage.Inputs) != len(declared) {
			return nil, fmt.Errorf("pipeline %s: stage %q binds %d slots, template declares %d",
				id, stage.Name, len(stage.Inputs), len(declared))
		}
		for _, slot := range declared {
			dep, ok := stage.Inputs[slot]
			if !ok {
				return nil, fmt.Errorf("pipeline %s: stage %q leaves slot %q unbound", id, stage.Name, slot)
			}
			if !isSource[dep] && def.stageByName[dep] == nil {
				return nil, fmt.Errorf("pipeline %s: stage %q slot %q references unknown node %q",
					id, stage.Name, slot, dep)
			}
		}
	}

	levels, err := def.partition(isSource)
	if err != nil {
		return nil, err
	}
	def.levels = levels

	def.terminals = def.findTerminals(isSource)
	return def, nil
}

// partition runs a topological sort over the slot-resolution relation and
// groups stages into dependency levels. Detects cycles.
func (d *Definition) partition(isSource map[string]bool) ([][]string, error) {
	depth := make(map[string]int, len(d.stages))

	var resolve func(name string, trail map[string]bool) (int, error)
	resolve = func(name string, trail map[string]bool) (int, error) {
		if isSource[name] {
			return 0, nil
		}
		if v, ok := depth[name]; ok {
			return v, nil
		}
		if trail[name] {
			return 0, fmt.Errorf("pipeline %s: dependency cycle through stage %q", d.ID, name)
		}
		trail[name] = true
		defer delete(trail, name)

		max := 0
		for _, dep := range d.stageByName[name].Inputs {
			v, err := resolve(dep, trail)
			if err != nil {
				return 0, err
			}
			if v > max {
				max = v
			}
		}
		depth[name] = max + 1
		return max + 1, nil
	}

	maxDepth := 0
	for _, stage := range d.stages {
		v, err := resolve(stage.Name, map[string]bool{})
		if err != nil {
			return nil, err
		}
		if v > maxDepth {
			maxDepth = v
		}
	}

	levels := make([][]string, maxDepth)
	for _, stage := range d.stages {
		lvl := depth[stage.Name] - 1
		levels[lvl] = append(levels[lvl], stage.Name)
	}
	return levels, nil
}

// findTerminals returns every node with no downstream consumer; their
// outputs make up the combined result.
func (d *Definition) findTerminals(isSource map[string]bool) []string {
	consumed := make(map[string]bool)
	for _, stage := range d.stages {
		for _, dep := range stage.Inputs {
			consumed[dep] = true
		}
	}

	var terminals []string
	for _, s := range d.sources {
		if !consumed[s.Name] {
			terminals = append(terminals, s.Name)
		}
	}
	for _, stage := range d.stages {
		if !consumed[stage.Name] {
			terminals = append(terminals, stage.Name)
		}
	}
	return terminals
}
