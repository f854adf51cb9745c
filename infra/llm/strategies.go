package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/gridpulse/core/dispatch"
	"github.com/kilianp07/gridpulse/core/logger"
)

const (
	GroqEndpoint  = "https://api.groq.com/openai/v1/chat/completions"
	GroqModel     = "llama-3.3-70b-versatile"
	MorphEndpoint = "https://api.morphllm.com/v1/chat/completions"
	MorphModel    = "morph-v3-fast"
)

// BriefDefaults fills the Groq endpoint, model and temperature.
func BriefDefaults(c *Config) {
	if c.Endpoint == "" {
		c.Endpoint = GroqEndpoint
	}
	if c.Model == "" {
		c.Model = GroqModel
	}
	if c.Temperature == 0 {
		c.Temperature = 0.3
	}
}

// ConfirmDefaults fills the Morph endpoint, model and temperature.
func ConfirmDefaults(c *Config) {
	if c.Endpoint == "" {
		c.Endpoint = MorphEndpoint
	}
	if c.Model == "" {
		c.Model = MorphModel
	}
	if c.Temperature == 0 {
		c.Temperature = 0.1
	}
}

// NoBriefText stands in for the brief when the model answers with no content.
const NoBriefText = "No brief returned."

// Briefer generates operator briefs with a remote model.
type Briefer struct{ client *Client }

// NewBriefer returns a Groq-backed brief generator.
func NewBriefer(cfg Config, log logger.Logger) *Briefer {
	BriefDefaults(&cfg)
	return &Briefer{client: NewClient("Groq", cfg, log)}
}

func (*Briefer) Name() string { return "groq" }

func (b *Briefer) GenerateBrief(ctx context.Context, in dispatch.BriefInput) (string, error) {
	text, err := b.client.Complete(ctx, []Message{
		{Role: "system", Content: dispatch.BriefSystemPrompt},
		{Role: "user", Content: dispatch.BriefUserPrompt(in)},
	})
	if errors.Is(err, ErrEmptyCompletion) || (err == nil && text == "") {
		return NoBriefText, nil
	}
	return text, err
}

// Validator confirms dispatch commands with a remote model. Any 2xx answer
// counts as acceptance.
type Validator struct{ client *Client }

// NewValidator returns a Morph-backed confirmer.
func NewValidator(cfg Config, log logger.Logger) *Validator {
	ConfirmDefaults(&cfg)
	return &Validator{client: NewClient("Dispatch", cfg, log)}
}

func (*Validator) Name() string { return "morph" }

func (v *Validator) ConfirmDispatch(ctx context.Context, req dispatch.ConfirmRequest) error {
	payload, err := req.Command.JSON()
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}
	msgs := []Message{
		{Role: "system", Content: "Validate and confirm this battery dispatch command."},
		{Role: "user", Content: string(payload)},
	}
	if req.Brief != "" {
		msgs = append(msgs, Message{Role: "user", Content: "Operator brief:\n" + req.Brief})
	}
	_, err = v.client.Complete(ctx, msgs)
	if errors.Is(err, ErrEmptyCompletion) {
		return nil
	}
	return err
}

// SelectBriefer returns the remote generator when credentials exist and
// local otherwise.
func SelectBriefer(cfg Config, local dispatch.BriefGenerator, log logger.Logger) dispatch.BriefGenerator {
	if !cfg.Enabled() {
		return local
	}
	return NewBriefer(cfg, log)
}

// SelectConfirmer returns the remote validator when credentials exist and
// local otherwise.
func SelectConfirmer(cfg Config, local dispatch.Confirmer, log logger.Logger) dispatch.Confirmer {
	if !cfg.Enabled() {
		return local
	}
	return NewValidator(cfg, log)
}
