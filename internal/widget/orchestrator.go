package widget

import (
	"context"
	"errors"
	"sync"
	"time"

	"bridge/internal/configuration"

	"go.uber.org/zap"
)

// ScriptState is the vendor script lifecycle. Transitions are one-way:
// NotLoaded to Loading, then exactly one of Ready or Failed.
type ScriptState int

const (
	ScriptNotLoaded ScriptState = iota
	ScriptLoading
	ScriptReady
	ScriptFailed
)

func (s ScriptState) String() string {
	switch s {
	case ScriptNotLoaded:
		return "not_loaded"
	case ScriptLoading:
		return "loading"
	case ScriptReady:
		return "ready"
	case ScriptFailed:
		return "failed"
	}
	return "unknown"
}

var ErrScriptUnavailable = errors.New("widget: vendor script never became available")

// ScriptProbe reports whether the vendor script is present yet. It stands in
// for the runtime-global check a page performs against the injected script.
type ScriptProbe func() bool

// SOTTSource mints the one-time token registration contexts require.
type SOTTSource func(ctx context.Context) (string, error)

// Config is the per-page widget configuration, built once from the provider
// settings and shared by every form context on the page.
type Config struct {
	APIKey           string
	AppName          string
	HashTemplate     bool
	ResetPasswordURL string
	VerificationURL  string
	RecaptchaSiteKey string

	// PollInterval and MaxAttempts bound the script availability poll.
	// Zero values fall back to the stock 100ms x 100 schedule.
	PollInterval time.Duration
	MaxAttempts  int
}

func (c Config) pollInterval() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return configuration.ScriptPollIntervalMillis * time.Millisecond
}

func (c Config) maxAttempts() int {
	if c.MaxAttempts > 0 {
		return c.MaxAttempts
	}
	return configuration.ScriptMaxLoadAttempts
}

// Orchestrator owns the script-load state machine and the ready broadcast.
// All state is explicit on the value; two orchestrators never interfere.
type Orchestrator struct {
	config Config
	probe  ScriptProbe
	sott   SOTTSource

	mu        sync.Mutex
	state     ScriptState
	callbacks []func(ready bool)
}

func NewOrchestrator(config Config, probe ScriptProbe, sott SOTTSource) *Orchestrator {
	return &Orchestrator{config: config, probe: probe, sott: sott}
}

func (o *Orchestrator) State() ScriptState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// OnReady registers a callback for the terminal script state. Callbacks fire
// once, in registration order. Registering after the terminal transition
// invokes the callback immediately with the settled outcome.
func (o *Orchestrator) OnReady(callback func(ready bool)) {
	o.mu.Lock()
	state := o.state
	if state != ScriptReady && state != ScriptFailed {
		o.callbacks = append(o.callbacks, callback)
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()

	callback(state == ScriptReady)
}

// EnsureLoaded polls the probe until the script shows up or the attempt
// ceiling is exhausted, then settles the state and broadcasts. A second call
// while loading or after settling returns without polling again.
func (o *Orchestrator) EnsureLoaded(ctx context.Context) error {
	o.mu.Lock()
	switch o.state {
	case ScriptReady:
		o.mu.Unlock()
		return nil
	case ScriptFailed:
		o.mu.Unlock()
		return ErrScriptUnavailable
	case ScriptLoading:
		o.mu.Unlock()
		return nil
	}
	o.state = ScriptLoading
	o.mu.Unlock()

	interval := o.config.pollInterval()
	maxAttempts := o.config.maxAttempts()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if o.probe() {
			o.settle(true)
			return nil
		}
		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			o.settle(false)
			return ctx.Err()
		case <-time.After(interval):
		}
	}

	zap.L().Error("Vendor script did not load",
		zap.Int("attempts", maxAttempts),
		zap.Duration("interval", interval))
	o.settle(false)
	return ErrScriptUnavailable
}

func (o *Orchestrator) settle(ready bool) {
	o.mu.Lock()
	if o.state == ScriptReady || o.state == ScriptFailed {
		o.mu.Unlock()
		return
	}
	if ready {
		o.state = ScriptReady
	} else {
		o.state = ScriptFailed
	}
	callbacks := o.callbacks
	o.callbacks = nil
	o.mu.Unlock()

	for _, callback := range callbacks {
		callback(ready)
	}
}

// InitForms builds one context per form descriptor. Registration forms fetch
// a SOTT first and fail construction when the mint fails; every other kind
// only carries the shared configuration.
func (o *Orchestrator) InitForms(ctx context.Context, forms []Form) ([]FormContext, error) {
	contexts := make([]FormContext, 0, len(forms))

	for _, form := range forms {
		if form.Options.ContainerID == "" {
			return nil, errors.New("widget: form " + form.Kind.String() + " has no container")
		}

		formCtx := FormContext{
			Kind:             form.Kind,
			ContainerID:      form.Options.ContainerID,
			APIKey:           o.config.APIKey,
			AppName:          o.config.AppName,
			HashTemplate:     o.config.HashTemplate,
			ResetPasswordURL: o.config.ResetPasswordURL,
			VerificationURL:  o.config.VerificationURL,
		}

		switch form.Kind {
		case FormRegistration:
			sott, err := o.sott(ctx)
			if err != nil {
				zap.L().Error("SOTT mint failed during form initialization", zap.Error(err))
				return nil, err
			}
			formCtx.SOTT = sott
			formCtx.RecaptchaSiteKey = o.config.RecaptchaSiteKey
		case FormLogin, FormForgotPassword, FormResetPassword,
			FormUpdateProfile, FormChangePassword, FormSocialLogin:
		default:
			return nil, errors.New("widget: unknown form kind " + form.Kind.String())
		}

		contexts = append(contexts, formCtx)
	}

	return contexts, nil
}
