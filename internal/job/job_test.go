package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polychlorinated/structured-data-web-scraper/internal/shared/types"
)

func validJob() Job {
	return Job{
		Name: "cities",
		Sources: []Source{
			{URL: "https://example.org/wiki/Cities", Mode: types.ModeHTML},
		},
	}
}

func TestValidateOK(t *testing.T) {
	j := validJob()
	require.NoError(t, j.Validate())
}

func TestValidateRejectsBadAllowPattern(t *testing.T) {
	j := validJob()
	j.AllowPatterns = []string{"https://example.org/**", "["}
	err := j.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allow pattern")
}

func TestValidateSourceErrorNamesIndex(t *testing.T) {
	j := validJob()
	j.Sources = append(j.Sources, Source{URL: "https://example.org/x", Hints: types.Hints{Pagination: "cursor"}})
	err := j.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source 1")
}

func TestAllows(t *testing.T) {
	j := validJob()

	// No patterns means everything passes.
	assert.True(t, j.Allows("https://anywhere.example/path"))

	j.AllowPatterns = []string{"https://example.org/**", "https://api.example.org/v1/*"}
	assert.True(t, j.Allows("https://example.org/wiki/Cities?page=2"))
	assert.True(t, j.Allows("https://api.example.org/v1/measures"))
	assert.False(t, j.Allows("https://api.example.org/v2/measures"))
	assert.False(t, j.Allows("https://elsewhere.example/wiki"))
}
