package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/templeobijnr/easy-islanders-router/internal/intent"
)

func TestFilterBlocks(t *testing.T) {
	f, err := NewFilter([]string{
		`text.contains("weapon")`,
		`text.contains("visa fraud") && region == "cy-north"`,
	}, zap.NewNop())
	require.NoError(t, err)

	blocked, rule := f.Check("where can i buy a weapon", intent.ContextHint{})
	assert.True(t, blocked)
	assert.Equal(t, `text.contains("weapon")`, rule)

	blocked, rule = f.Check("help with visa fraud", intent.ContextHint{GeoRegion: "cy-north"})
	assert.True(t, blocked)
	assert.Equal(t, `text.contains("visa fraud") && region == "cy-north"`, rule)

	// Same text outside the rule's region passes.
	blocked, _ = f.Check("help with visa fraud", intent.ContextHint{GeoRegion: "cy-south"})
	assert.False(t, blocked)
}

func TestFilterPasses(t *testing.T) {
	f, err := NewFilter([]string{`text.contains("weapon")`}, zap.NewNop())
	require.NoError(t, err)

	blocked, rule := f.Check("two bedroom apartment in girne", intent.ContextHint{})
	assert.False(t, blocked)
	assert.Empty(t, rule)
}

func TestFilterNoRules(t *testing.T) {
	f, err := NewFilter(nil, zap.NewNop())
	require.NoError(t, err)

	blocked, _ := f.Check("anything at all", intent.ContextHint{})
	assert.False(t, blocked)
}

func TestFilterContextVariables(t *testing.T) {
	f, err := NewFilter([]string{`locale == "tr" && turn > 5`}, zap.NewNop())
	require.NoError(t, err)

	blocked, _ := f.Check("merhaba", intent.ContextHint{Locale: "tr", TurnIndex: 6})
	assert.True(t, blocked)

	blocked, _ = f.Check("merhaba", intent.ContextHint{Locale: "tr", TurnIndex: 2})
	assert.False(t, blocked)
}

// A rule that does not compile must fail construction, not request handling.
func TestFilterRejectsBadRule(t *testing.T) {
	_, err := NewFilter([]string{`text.contains(`}, zap.NewNop())
	require.Error(t, err)

	_, err = NewFilter([]string{`nonexistent_var == "x"`}, zap.NewNop())
	require.Error(t, err)
}
