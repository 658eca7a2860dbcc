package safety

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"
	"github.com/templeobijnr/easy-islanders-router/internal/intent"
	"go.uber.org/zap"
)

// Filter rejects disallowed content before any domain scoring. Rules are
// CEL expressions over the normalized text and context hint; any rule
// evaluating to true blocks the utterance. Rules are compiled once at
// construction, so a malformed rule is a startup error rather than a
// request-time surprise.
type Filter struct {
	rules    []string
	programs []cel.Program
	logger   *zap.Logger
}

// NewFilter compiles the configured rules. An expression that fails to
// compile or does not produce a boolean is a fatal configuration error.
func NewFilter(rules []string, logger *zap.Logger) (*Filter, error) {
	env, err := cel.NewEnv(
		cel.Declarations(
			decls.NewVar("text", decls.String),
			decls.NewVar("locale", decls.String),
			decls.NewVar("region", decls.String),
			decls.NewVar("turn", decls.Int),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	f := &Filter{
		rules:    rules,
		programs: make([]cel.Program, 0, len(rules)),
		logger:   logger,
	}

	for i, rule := range rules {
		ast, issues := env.Compile(rule)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("safety rule %d (%q): %w", i, rule, issues.Err())
		}

		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("safety rule %d (%q): %w", i, rule, err)
		}

		f.programs = append(f.programs, program)
	}

	return f, nil
}

// Check evaluates the rules against a normalized utterance. It returns the
// matched rule when the utterance is blocked. Rule evaluation errors are
// treated as non-matches: the filter fails open per rule, never the whole
// request.
func (f *Filter) Check(text string, hint intent.ContextHint) (blocked bool, rule string) {
	vars := map[string]interface{}{
		"text":   text,
		"locale": hint.Locale,
		"region": hint.GeoRegion,
		"turn":   hint.TurnIndex,
	}

	for i, program := range f.programs {
		out, _, err := program.Eval(vars)
		if err != nil {
			f.logger.Warn("safety rule evaluation error",
				zap.Int("rule_index", i),
				zap.String("rule", f.rules[i]),
				zap.Error(err),
			)
			continue
		}

		matched, ok := out.Value().(bool)
		if !ok {
			f.logger.Warn("safety rule did not return boolean",
				zap.Int("rule_index", i),
				zap.String("rule", f.rules[i]),
			)
			continue
		}

		if matched {
			return true, f.rules[i]
		}
	}

	return false, ""
}
