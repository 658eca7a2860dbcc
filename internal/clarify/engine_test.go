package clarify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	e := NewEngine()

	out, err := e.Render(
		`Did you mean {{join domains " or "}}?`,
		[]string{"real_estate", "marketplace"},
		map[string]float64{"real_estate": 0.55, "marketplace": 0.54},
	)
	require.NoError(t, err)
	assert.Equal(t, "Did you mean real_estate or marketplace?", out)
}

func TestRenderHelpers(t *testing.T) {
	e := NewEngine()

	out, err := e.Render(`{{uppercase (join domains ", ")}}`, []string{"local_info", "general"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "LOCAL_INFO, GENERAL", out)

	out, err = e.Render(`{{default missing "which topic?"}}`, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "which topic?", out)
}

func TestRenderCachesTemplates(t *testing.T) {
	e := NewEngine()
	tmpl := `Choose: {{join domains "/"}}`

	first, err := e.Render(tmpl, []string{"a", "b"}, nil)
	require.NoError(t, err)

	second, err := e.Render(tmpl, []string{"a", "b"}, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	e.mu.RLock()
	defer e.mu.RUnlock()
	assert.Len(t, e.cache, 1)
}

func TestRenderBadTemplate(t *testing.T) {
	e := NewEngine()

	_, err := e.Render(`{{#if domains}}unterminated`, nil, nil)
	require.Error(t, err)
}
