package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/north-cloud/philosophy/internal/domain"
)

func TestPath_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path domain.Path
		want bool
	}{
		{name: "empty", path: nil, want: false},
		{name: "single", path: domain.Path{"Philosophy"}, want: true},
		{name: "chain", path: domain.Path{"Greek", "Language", "Philosophy"}, want: true},
		{name: "duplicate", path: domain.Path{"A", "B", "A"}, want: false},
		{name: "blank title", path: domain.Path{"A", ""}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.path.Valid())
		})
	}
}

func TestPath_Accessors(t *testing.T) {
	t.Parallel()

	p := domain.Path{"Start", "Mid", "Target"}
	assert.Equal(t, "Start", p.Head())
	assert.Equal(t, "Target", p.Last())
	assert.True(t, p.Contains("Mid"))
	assert.False(t, p.Contains("Other"))

	c := p.Clone()
	c[0] = "Changed"
	assert.Equal(t, "Start", p[0])

	var empty domain.Path
	assert.Empty(t, empty.Head())
	assert.Empty(t, empty.Last())
}

func TestOutcome_Terminal(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.OutcomeSuccess.Terminal())
	assert.True(t, domain.OutcomeDeadEnd.Terminal())
	assert.True(t, domain.OutcomeLoop.Terminal())
	assert.False(t, domain.OutcomeExceeded.Terminal())
	assert.False(t, domain.OutcomeError.Terminal())
	assert.False(t, domain.OutcomeCached.Terminal())
}
