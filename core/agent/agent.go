package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/kuanpern/lg-utils/core/extract"
	"github.com/kuanpern/lg-utils/core/retry"
	"github.com/kuanpern/lg-utils/core/validate"
	"github.com/kuanpern/lg-utils/internal/schema"
	"github.com/kuanpern/lg-utils/internal/utils"
	"github.com/kuanpern/lg-utils/providers/ai"
)

// Agent renders a prompt, invokes a model, and recovers a validated value of
// type T from the raw response under a two-tier retry policy. The outer tier
// retries the model invocation itself (any provider error is treated as
// potentially transient); the inner tier retries the whole
// invoke-extract-validate-post-process sequence on logic errors, so every
// inner retry works on fresh model output.
//
// An Agent is immutable after New and safe for concurrent use; each Run owns
// its own attempt state.
type Agent[T any] struct {
	name     string
	provider ai.Provider
	model    string

	instruction *template.Template
	system      *template.Template
	systemText  string
	defaults    map[string]any

	extractor    *extract.Extractor
	post         func(ctx context.Context, output T) (T, error)
	llmPolicy    retry.Policy
	logicPolicy  retry.Policy
	schemaPrompt bool
	logger       *slog.Logger
}

// Result carries a validated value together with invocation metadata.
type Result[T any] struct {
	// Output is the fully validated typed value.
	Output T
	// Raw is the model text Output was recovered from.
	Raw string
	// LLMAttempts counts model invocations across all layers.
	LLMAttempts int
	// LogicAttempts counts passes through the extract-validate-post-process
	// sequence.
	LogicAttempts int
}

// Option configures an Agent under construction.
type Option[T any] func(*Agent[T])

// WithSystemPrompt sets a system message template rendered with the same
// variables as the instruction.
func WithSystemPrompt[T any](text string) Option[T] {
	return func(a *Agent[T]) { a.systemText = text }
}

// WithDefaults sets template variables applied under the per-call variables.
func WithDefaults[T any](defaults map[string]any) Option[T] {
	return func(a *Agent[T]) { a.defaults = defaults }
}

// WithExtractor replaces the default extractor configuration.
func WithExtractor[T any](extractor *extract.Extractor) Option[T] {
	return func(a *Agent[T]) { a.extractor = extractor }
}

// WithPostProcessor installs a hook run on every validated value before it is
// returned. Errors marked with Retryable re-enter the inner retry loop; all
// other errors propagate immediately.
func WithPostProcessor[T any](post func(ctx context.Context, output T) (T, error)) Option[T] {
	return func(a *Agent[T]) { a.post = post }
}

// WithLLMPolicy configures the outer (model invocation) retry layer.
func WithLLMPolicy[T any](p retry.Policy) Option[T] {
	return func(a *Agent[T]) { a.llmPolicy = p }
}

// WithLogicPolicy configures the inner (extraction through post-processing)
// retry layer.
func WithLogicPolicy[T any](p retry.Policy) Option[T] {
	return func(a *Agent[T]) { a.logicPolicy = p }
}

// WithModel sets the model identifier passed to the provider.
func WithModel[T any](model string) Option[T] {
	return func(a *Agent[T]) { a.model = model }
}

// WithSchemaInstruction prepends a system message instructing the model to
// answer with fenced YAML conforming to T's declared schema.
func WithSchemaInstruction[T any]() Option[T] {
	return func(a *Agent[T]) { a.schemaPrompt = true }
}

// WithLogger sets the logger for retry and failure diagnostics.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(a *Agent[T]) { a.logger = logger }
}

// New builds an Agent named name around an instruction template and a model
// provider. Templates use text/template syntax and fail on missing variables.
func New[T any](name, instruction string, provider ai.Provider, opts ...Option[T]) (*Agent[T], error) {
	if provider == nil {
		return nil, errors.New("provider must not be nil")
	}

	a := &Agent[T]{name: name, provider: provider, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}

	if a.extractor == nil {
		extractor, err := extract.New()
		if err != nil {
			return nil, err
		}
		a.extractor = extractor
	}

	var err error
	a.instruction, err = template.New("instruction").Option("missingkey=error").Parse(instruction)
	if err != nil {
		return nil, fmt.Errorf("parsing instruction template: %w", err)
	}
	if a.systemText != "" {
		a.system, err = template.New("system").Option("missingkey=error").Parse(a.systemText)
		if err != nil {
			return nil, fmt.Errorf("parsing system template: %w", err)
		}
	}
	return a, nil
}

// Run renders the prompt with vars, then drives the two-tier retry loop until
// a validated value is produced or a budget is exhausted. On exhaustion the
// last classified error is returned unchanged, so callers see the precise
// root cause (missing keys, field diagnostics, or the transient provider
// error).
func (a *Agent[T]) Run(ctx context.Context, vars map[string]any) (*Result[T], error) {
	messages, err := a.renderMessages(vars)
	if err != nil {
		return nil, err
	}

	result := &Result[T]{}
	output, err := retry.Do(ctx, a.logicPolicy, IsRetryable, a.logLogicRetry, func(ctx context.Context) (T, error) {
		result.LogicAttempts++

		raw, err := a.invoke(ctx, messages, &result.LLMAttempts)
		if err != nil {
			var zero T
			return zero, err
		}
		result.Raw = raw
		return a.recover(ctx, raw)
	})
	if err != nil {
		a.logger.Error("agent failed after all retries",
			slog.String("agent", a.name),
			slog.Int("llm_attempts", result.LLMAttempts),
			slog.Int("logic_attempts", result.LogicAttempts),
			slog.String("error", err.Error()))
		return nil, err
	}

	result.Output = output
	return result, nil
}

// invoke calls the model under the outer retry layer. Every provider error is
// classified as potentially transient.
func (a *Agent[T]) invoke(ctx context.Context, messages []ai.Message, calls *int) (string, error) {
	return retry.Do(ctx, a.llmPolicy, nil, a.logLLMRetry, func(ctx context.Context) (string, error) {
		*calls++
		response, err := a.provider.SendMessage(ctx, ai.ChatRequest{Model: a.model, Messages: messages})
		if err != nil {
			return "", err
		}
		return response.Content, nil
	})
}

// recover runs extraction, selection, validation, and post-processing on one
// raw model response.
func (a *Agent[T]) recover(ctx context.Context, raw string) (T, error) {
	var zero T

	candidate, err := a.extractor.Process(raw)
	if err != nil {
		return zero, err
	}
	output, err := validate.As[T](candidate)
	if err != nil {
		return zero, err
	}
	if a.post != nil {
		output, err = a.post(ctx, output)
		if err != nil {
			return zero, err
		}
	}
	return output, nil
}

func (a *Agent[T]) renderMessages(vars map[string]any) ([]ai.Message, error) {
	payload := make(map[string]any, len(a.defaults)+len(vars))
	for key, value := range a.defaults {
		payload[key] = value
	}
	for key, value := range vars {
		payload[key] = value
	}

	var messages []ai.Message
	if a.schemaPrompt {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: a.schemaInstruction()})
	}
	if a.system != nil {
		content, err := render(a.system, payload)
		if err != nil {
			return nil, err
		}
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: content})
	}
	content, err := render(a.instruction, payload)
	if err != nil {
		return nil, err
	}
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: content})

	a.logger.Debug("rendered prompt",
		slog.String("agent", a.name),
		slog.String("vars", utils.JSONToString(payload)))
	return messages, nil
}

// schemaInstruction builds the system message instructing schema-conforming
// fenced YAML output.
func (a *Agent[T]) schemaInstruction() string {
	return "Output strictly in YAML format.\n" +
		"Wrap content in ```yaml ... ``` code blocks.\n" +
		"Conform to the following schema:\n" + schema.For[T]().JSON()
}

func (a *Agent[T]) logLLMRetry(attempt int, lastErr error) {
	a.logger.Warn("model invocation failed, retrying",
		slog.String("agent", a.name),
		slog.Int("attempt", attempt),
		slog.String("error", lastErr.Error()))
}

func (a *Agent[T]) logLogicRetry(attempt int, lastErr error) {
	a.logger.Warn("logic error in model output, re-invoking model",
		slog.String("agent", a.name),
		slog.Int("attempt", attempt),
		slog.String("error", utils.TruncateStringDefault(lastErr.Error())))
}

func render(tmpl *template.Template, payload map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, payload); err != nil {
		return "", fmt.Errorf("rendering %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
