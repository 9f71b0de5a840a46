package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"tokenlens/internal/source"
)

// Result is one terminal node's tagged output.
type Result struct {
	Status string `json:"status"` // success | error
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// CombinedResult maps terminal node name to its output for one run.
type CombinedResult struct {
	Pipeline string            `json:"pipeline"`
	Results  map[string]Result `json:"results"`
}

// AllFailed reports whether every branch of the run failed.
func (c *CombinedResult) AllFailed() bool {
	for _, r := range c.Results {
		if r.Status == "success" {
			return false
		}
	}
	return len(c.Results) > 0
}

// ErrUnknownPipeline is returned for a pipeline id with no definition.
type ErrUnknownPipeline struct {
	ID string
}

func (e *ErrUnknownPipeline) Error() string {
	return fmt.Sprintf("unknown pipeline: %s", e.ID)
}

type nodeResult struct {
	text string
	err  error
}

// Runner evaluates pipeline definitions. It holds no per-request state;
// every run fetches every source fresh.
type Runner struct {
	defs   map[string]*Definition
	logger zerolog.Logger
}

func NewRunner(defs []*Definition, logger zerolog.Logger) (*Runner, error) {
	byID := make(map[string]*Definition, len(defs))
	for _, def := range defs {
		if _, ok := byID[def.ID]; ok {
			return nil, fmt.Errorf("duplicate pipeline id: %s", def.ID)
		}
		byID[def.ID] = def
	}
	return &Runner{defs: byID, logger: logger}, nil
}

// Definitions lists the registered pipeline ids.
func (r *Runner) Definitions() []string {
	ids := make([]string, 0, len(r.defs))
	for id := range r.defs {
		ids = append(ids, id)
	}
	return ids
}

// Run evaluates one pipeline for one query. Level-0 sources are fetched
// concurrently; stages execute level by level, concurrently within a level.
// A failed input marks the dependent stage as failed without issuing its
// completion call, and never aborts unrelated branches.
func (r *Runner) Run(ctx context.Context, pipelineID string, q source.Query) (*CombinedResult, error) {
	def, ok := r.defs[pipelineID]
	if !ok {
		return nil, &ErrUnknownPipeline{ID: pipelineID}
	}

	results := make(map[string]nodeResult, len(def.sources)+len(def.stages))
	var mu sync.Mutex

	// 并发拉取所有数据源
	var wg sync.WaitGroup
	for _, node := range def.sources {
		wg.Add(1)
		go func(node SourceNode) {
			defer wg.Done()

			payload, err := node.Source.Fetch(ctx, q)
			mu.Lock()
			if err != nil {
				results[node.Name] = nodeResult{err: err}
			} else {
				results[node.Name] = nodeResult{text: string(payload)}
			}
			mu.Unlock()

			if err != nil {
				r.logger.Error().Err(err).Str("pipeline", pipelineID).Str("source", node.Name).Msg("source fetch failed")
			} else {
				r.logger.Debug().Str("pipeline", pipelineID).Str("source", node.Name).Msg("source fetched")
			}
		}(node)
	}
	wg.Wait()

	// 按依赖层级依次执行分析阶段
	for _, level := range def.levels {
		var lwg sync.WaitGroup
		for _, name := range level {
			stage := def.stageByName[name]

			// all declared inputs exist by construction; check for failures
			slots := make(map[string]string, len(stage.Inputs))
			var failed string
			mu.Lock()
			for slot, dep := range stage.Inputs {
				res := results[dep]
				if res.err != nil {
					failed = dep
					break
				}
				slots[slot] = res.text
			}
			mu.Unlock()

			if failed != "" {
				mu.Lock()
				results[name] = nodeResult{err: fmt.Errorf("UpstreamFailure: input %q failed", failed)}
				mu.Unlock()
				r.logger.Warn().Str("pipeline", pipelineID).Str("stage", name).Str("input", failed).Msg("stage skipped, upstream failed")
				continue
			}

			lwg.Add(1)
			go func(name string, stage *StageNode, slots map[string]string) {
				defer lwg.Done()

				text, err := stage.Stage.Run(ctx, slots)
				mu.Lock()
				results[name] = nodeResult{text: text, err: err}
				mu.Unlock()

				if err != nil {
					r.logger.Error().Err(err).Str("pipeline", pipelineID).Str("stage", name).Msg("stage failed")
				} else {
					r.logger.Debug().Str("pipeline", pipelineID).Str("stage", name).Msg("stage completed")
				}
			}(name, stage, slots)
		}
		lwg.Wait()
	}

	combined := &CombinedResult{
		Pipeline: pipelineID,
		Results:  make(map[string]Result, len(def.terminals)),
	}
	for _, name := range def.terminals {
		res := results[name]
		if res.err != nil {
			combined.Results[name] = Result{Status: "error", Error: res.err.Error()}
		} else {
			combined.Results[name] = Result{Status: "success", Output: res.text}
		}
	}

	return combined, nil
}
