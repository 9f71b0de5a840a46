package ai

import "context"

// Stage wraps one prompt template and one completer. Run substitutes the
// input slots, issues a single completion call, and returns the full
// response text.
type Stage struct {
	Name      string
	Template  *Template
	completer Completer
	opts      CompletionOptions
}

func NewStage(name string, template *Template, completer Completer, opts CompletionOptions) *Stage {
	return &Stage{
		Name:      name,
		Template:  template,
		completer: completer,
		opts:      opts,
	}
}

// InputSlots lists the named inputs this stage requires.
func (s *Stage) InputSlots() []string {
	return s.Template.Slots
}

func (s *Stage) Run(ctx context.Context, slots map[string]string) (string, error) {
	prompt, err := s.Template.Render(slots)
	if err != nil {
		return "", err
	}

	messages := []Message{
		{Role: "system", Content: s.Template.System},
		{Role: "user", Content: prompt},
	}

	text, err := s.completer.Complete(ctx, messages, s.opts)
	if err != nil {
		return "", &UpstreamError{Stage: s.Name, Err: err}
	}

	return text, nil
}
