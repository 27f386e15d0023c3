// Package generator wires the prompt builder, provider factory and
// response validator into the top-level generation entry point.
package generator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fitforge/internal/llm"
	"fitforge/internal/plan"
	"fitforge/internal/prompt"
	"fitforge/internal/store"
)

// State labels one phase of a generation run. Terminal states are final —
// the orchestrator is not resumable; a fresh request starts a fresh run.
type State string

const (
	StateBuilding   State = "building"
	StateCalling    State = "calling"
	StateValidating State = "validating"
	StateRetrying   State = "retrying"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

const (
	defaultCallTimeout = 30 * time.Second
	defaultMaxRetries  = 2 // schema-validation retries only
	planTemperature    = 0.7
)

// ProviderFactory is the slice of the llm factory the orchestrator needs.
type ProviderFactory interface {
	CreateProvider(cred *llm.VendorCredential) (llm.Provider, error)
}

// GeneratedPlan is the successful result of one run: the validated
// document plus usage accumulated across every attempt.
type GeneratedPlan struct {
	RequestID string                    `json:"requestId"`
	Document  *plan.WorkoutPlanDocument `json:"document"`
	Usage     llm.Usage                 `json:"usage"`
	Provider  string                    `json:"provider"`
	Model     string                    `json:"model"`
	Attempts  int                       `json:"attempts"`
}

// Orchestrator runs the generation state machine:
// Building → Calling → Validating → (Succeeded | Retrying → Calling | Failed).
// Each run is an independent unit of work; the only shared state is the
// read-only factory and credential store.
type Orchestrator struct {
	factory     ProviderFactory
	creds       store.CredentialStore
	logger      *slog.Logger
	callTimeout time.Duration
	maxRetries  int
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithCallTimeout overrides the per-vendor-call timeout (default 30s).
func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.callTimeout = d }
}

// WithMaxRetries overrides the schema-validation retry cap (default 2).
func WithMaxRetries(n int) Option {
	return func(o *Orchestrator) { o.maxRetries = n }
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(factory ProviderFactory, creds store.CredentialStore, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		factory:     factory,
		creds:       creds,
		logger:      logger,
		callTimeout: defaultCallTimeout,
		maxRetries:  defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate runs one generation request to a terminal state and returns the
// validated plan or a *GenerationError.
//
// Input and configuration errors fail before any vendor call. Schema
// validation failures are retried internally with a corrected prompt, up
// to the retry cap. Vendor errors (auth, rate limit, invalid request) are
// never retried here — the caller decides.
func (o *Orchestrator) Generate(ctx context.Context, userID string, req *plan.GenerationRequest) (*GeneratedPlan, error) {
	requestID := uuid.NewString()
	log := o.logger.With("requestId", requestID, "userId", userID)

	// --- Building ---
	log.Info("generation started", "state", StateBuilding, "modality", req.Modality)

	cred, err := o.creds.Credential(ctx, userID)
	if err != nil {
		return nil, o.fail(log, &GenerationError{Kind: KindConfiguration, Err: err})
	}

	provider, err := o.factory.CreateProvider(cred)
	if err != nil {
		return nil, o.fail(log, classifyError(err, ""))
	}

	messages, err := prompt.Build(req)
	if err != nil {
		return nil, o.fail(log, &GenerationError{Kind: KindInvalidRequest, Provider: provider.Name(), Err: err})
	}
	schema := plan.SchemaInstruction(req.Modality)

	var totalUsage llm.Usage

	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		// --- Calling ---
		log.Info("calling provider", "state", StateCalling,
			"provider", provider.Name(), "model", provider.Model(), "attempt", attempt+1)

		callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
		completion, err := provider.GenerateStructuredOutput(callCtx, messages, schema,
			llm.CompletionOptions{Temperature: planTemperature})
		cancel()

		if err != nil {
			// Caller-initiated cancellation wins over the per-call deadline.
			if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
				gerr := &GenerationError{Kind: KindCancelled, Provider: provider.Name(), Err: ctx.Err()}
				log.Info("generation cancelled", "state", StateCancelled)
				return nil, gerr
			}
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, o.fail(log, &GenerationError{Kind: KindTimeout, Provider: provider.Name(), Err: err})
			}
			return nil, o.fail(log, classifyError(err, provider.Name()))
		}

		accumulate(&totalUsage, completion.Usage)

		// --- Validating ---
		log.Info("validating response", "state", StateValidating, "attempt", attempt+1)

		doc, verrs := plan.Validate(completion.Content, req)
		if doc != nil {
			log.Info("generation succeeded", "state", StateSucceeded,
				"attempts", attempt+1, "totalTokens", totalUsage.TotalTokens)
			return &GeneratedPlan{
				RequestID: requestID,
				Document:  doc,
				Usage:     totalUsage,
				Provider:  completion.Provider,
				Model:     completion.Model,
				Attempts:  attempt + 1,
			}, nil
		}

		if attempt < o.maxRetries {
			// --- Retrying ---
			log.Info("response failed validation, retrying", "state", StateRetrying,
				"errors", len(verrs), "attempt", attempt+1)
			messages = append(messages,
				llm.ChatMessage{Role: llm.RoleAssistant, Content: completion.Content},
				llm.ChatMessage{Role: llm.RoleUser, Content: plan.RetryPrompt(verrs)},
			)
			continue
		}

		return nil, o.fail(log, &GenerationError{
			Kind:             KindSchemaValidation,
			Provider:         provider.Name(),
			ValidationErrors: verrs,
		})
	}

	// Unreachable: the loop always returns.
	return nil, &GenerationError{Kind: KindVendor, Err: errors.New("generation loop exited without a terminal state")}
}

func (o *Orchestrator) fail(log *slog.Logger, gerr *GenerationError) *GenerationError {
	log.Error("generation failed", "state", StateFailed,
		"kind", gerr.Kind, "provider", gerr.Provider,
		"validationErrors", len(gerr.ValidationErrors), "err", gerr.Err)
	return gerr
}

func accumulate(total *llm.Usage, u llm.Usage) {
	total.PromptTokens += u.PromptTokens
	total.CompletionTokens += u.CompletionTokens
	total.TotalTokens += u.TotalTokens
	total.EstimatedCostUSD += u.EstimatedCostUSD
}
