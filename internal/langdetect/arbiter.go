// Package langdetect decides which language a message is written in.
//
// Two statistical detectors run side by side: a general-purpose one
// (whatlanggo) and one constrained to the supported languages (lingua).
// An Arbiter combines their answers with an optional hint from the speech
// recognizer and, when the detectors disagree, with the writing system of
// the text. Not finding a language is a normal outcome, not an error.
package langdetect

import (
	"context"
	"log/slog"
	"time"

	"github.com/nadzzz/babelbot/internal/language"
)

// DefaultTimeout bounds a single detector call.
const DefaultTimeout = 2 * time.Second

// Rule names the arbitration step that produced a decision.
type Rule string

const (
	RuleHint             Rule = "hint"
	RuleTooShort         Rule = "too_short"
	RuleAgreement        Rule = "agreement"
	RulePrimaryOnly      Rule = "primary_only"
	RuleSecondaryOnly    Rule = "secondary_only"
	RuleScript           Rule = "script"
	RulePrimaryPreferred Rule = "primary_preferred"
	RuleNoSignal         Rule = "no_signal"
	RuleUnsupported      Rule = "unsupported"
)

// Decision explains how a language was (or was not) chosen.
type Decision struct {
	// Language is the resolved code; empty when OK is false.
	Language string `json:"language,omitempty"`
	OK       bool   `json:"ok"`
	Rule     Rule   `json:"rule"`

	// Normalized is the text the detectors saw.
	Normalized string `json:"normalized,omitempty"`

	// Primary and Secondary are the raw detector answers.
	Primary   string `json:"primary,omitempty"`
	Secondary string `json:"secondary,omitempty"`
}

// Arbiter resolves the language of a text. It is stateless and safe for
// concurrent use.
type Arbiter struct {
	supported *language.Set
	primary   Detector
	secondary Detector
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures an Arbiter.
type Option func(*Arbiter)

// WithTimeout bounds each detector call. A detector that has not answered
// in time counts as absent. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(a *Arbiter) { a.timeout = d }
}

// WithLogger sets the logger used for decision traces.
func WithLogger(l *slog.Logger) Option {
	return func(a *Arbiter) { a.logger = l }
}

// New creates an Arbiter. primary is the general-purpose detector whose
// answer wins a disagreement no script rule settles; secondary is the
// detector constrained to the supported set. Either may be nil.
func New(supported *language.Set, primary, secondary Detector, opts ...Option) *Arbiter {
	a := &Arbiter{
		supported: supported,
		primary:   primary,
		secondary: secondary,
		timeout:   DefaultTimeout,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Supported returns the set of languages the Arbiter may answer with.
func (a *Arbiter) Supported() *language.Set { return a.supported }

// Resolve returns the language of text, or false when no usable signal
// exists. A hint that is a supported language is returned as is.
func (a *Arbiter) Resolve(ctx context.Context, text, hint string) (string, bool) {
	d := a.Explain(ctx, text, hint)
	return d.Language, d.OK
}

// Explain is Resolve with the reasoning attached.
func (a *Arbiter) Explain(ctx context.Context, text, hint string) Decision {
	if code := language.Canonical(hint); code != "" && a.supported.Contains(code) {
		return a.decide(Decision{Language: code, Rule: RuleHint})
	} else if hint != "" {
		a.logger.Debug("ignoring unsupported language hint", "hint", hint)
	}

	normalized, ok := Normalize(text)
	if !ok {
		return a.decide(Decision{Rule: RuleTooShort, Normalized: normalized})
	}

	rawPrimary, rawSecondary := a.detect(ctx, normalized)
	d := Decision{
		Normalized: normalized,
		Primary:    rawPrimary,
		Secondary:  rawSecondary,
	}

	// Answers outside the supported set carry no signal.
	primary, secondary := a.member(rawPrimary), a.member(rawSecondary)

	switch {
	case primary != "" && primary == secondary:
		d.Language, d.Rule = primary, RuleAgreement
	case primary != "" && secondary == "":
		d.Language, d.Rule = primary, RulePrimaryOnly
	case secondary != "" && primary == "":
		d.Language, d.Rule = secondary, RuleSecondaryOnly
	case primary != "" && secondary != "":
		if forced, ok := scriptVerdict(normalized, rawPrimary, rawSecondary); ok {
			d.Language, d.Rule = forced, RuleScript
		} else {
			d.Language, d.Rule = primary, RulePrimaryPreferred
		}
	default:
		d.Rule = RuleNoSignal
	}
	return a.decide(d)
}

// decide validates the chosen code against the supported set and logs
// the outcome.
func (a *Arbiter) decide(d Decision) Decision {
	if d.Language != "" && !a.supported.Contains(d.Language) {
		a.logger.Debug("discarding unsupported language", "language", d.Language, "rule", d.Rule)
		d.Language, d.Rule = "", RuleUnsupported
	}
	d.OK = d.Language != ""

	a.logger.Debug("language resolved",
		"language", d.Language,
		"ok", d.OK,
		"rule", d.Rule,
		"primary", d.Primary,
		"secondary", d.Secondary)
	return d
}

func (a *Arbiter) member(code string) string {
	if code != "" && a.supported.Contains(code) {
		return code
	}
	return ""
}

// detect runs both detectors concurrently. A detector that does not answer
// before the timeout or before ctx is done counts as absent; its goroutine
// finishes on its own and its answer is dropped.
func (a *Arbiter) detect(ctx context.Context, text string) (primary, secondary string) {
	if ctx.Err() != nil {
		return "", ""
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	primaryCh := a.run(a.primary, text)
	secondaryCh := a.run(a.secondary, text)

	for primaryCh != nil || secondaryCh != nil {
		select {
		case code := <-primaryCh:
			primary, primaryCh = code, nil
		case code := <-secondaryCh:
			secondary, secondaryCh = code, nil
		case <-ctx.Done():
			a.logger.Warn("language detection abandoned",
				"error", ctx.Err(),
				"primary_done", primaryCh == nil,
				"secondary_done", secondaryCh == nil)
			return primary, secondary
		}
	}
	return primary, secondary
}

func (a *Arbiter) run(d Detector, text string) chan string {
	ch := make(chan string, 1)
	go func() {
		ch <- detectSafely(a.logger, d, text)
	}()
	return ch
}
