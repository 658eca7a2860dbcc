// Package clarify renders the clarification question returned with
// uncertain decisions. Prompts are Handlebars templates over the candidate
// domains and their calibrated scores, so the wording is deployment
// configuration rather than code.
package clarify

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aymerick/raymond"
)

var helpersOnce sync.Once

func registerHelpers() {
	// join helper - join array elements with separator
	raymond.RegisterHelper("join", func(arr []string, sep string) string {
		return strings.Join(arr, sep)
	})

	// default helper - return default value if first arg is empty
	raymond.RegisterHelper("default", func(value interface{}, defaultValue interface{}) interface{} {
		if value == nil || value == "" {
			return defaultValue
		}
		return value
	})

	// uppercase helper
	raymond.RegisterHelper("uppercase", func(str string) string {
		return strings.ToUpper(str)
	})
}

// Engine renders clarification prompts.
type Engine struct {
	cache map[string]*raymond.Template
	mu    sync.RWMutex
}

// NewEngine creates a new prompt engine.
func NewEngine() *Engine {
	helpersOnce.Do(registerHelpers)
	return &Engine{
		cache: make(map[string]*raymond.Template),
	}
}

// Render renders templateStr with the candidate domains and scores.
func (e *Engine) Render(templateStr string, domains []string, scores map[string]float64) (string, error) {
	tmpl, err := e.getTemplate(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to compile clarify template: %w", err)
	}

	result, err := tmpl.Exec(map[string]interface{}{
		"domains": domains,
		"scores":  scores,
	})
	if err != nil {
		return "", fmt.Errorf("clarify template execution failed: %w", err)
	}

	return result, nil
}

// getTemplate gets a compiled template from cache or compiles it
func (e *Engine) getTemplate(templateStr string) (*raymond.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.cache[templateStr]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Check again in case another goroutine compiled it
	if tmpl, ok := e.cache[templateStr]; ok {
		return tmpl, nil
	}

	tmpl, err := raymond.Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	e.cache[templateStr] = tmpl
	return tmpl, nil
}
