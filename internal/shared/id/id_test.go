package id

import (
	"math/rand"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	u := gen.Generate()
	assert.NotZero(t, u)
	assert.Len(t, u.String(), 26)
}

func TestGenerateUnique(t *testing.T) {
	gen := NewGenerator()
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		s := gen.GenerateString()
		require.False(t, seen[s], "duplicate ULID: %s", s)
		seen[s] = true
	}
}

func TestGenerateSortable(t *testing.T) {
	gen := NewGenerator()

	first := gen.GenerateString()
	time.Sleep(2 * time.Millisecond)
	second := gen.GenerateString()

	ids := []string{second, first}
	sort.Strings(ids)
	assert.Equal(t, first, ids[0], "earlier ULID should sort first")
}

func TestTypedIDs(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		prefix string
	}{
		{"run", NewRunID().String(), RunPrefix},
		{"job", NewJobID().String(), JobPrefix},
		{"batch", NewBatchID().String(), BatchPrefix},
		{"page", NewPageID().String(), PagePrefix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(tt.id, tt.prefix+"_"))

			raw := strings.TrimPrefix(tt.id, tt.prefix+"_")
			assert.True(t, IsValid(raw), "suffix should be a valid ULID")
		})
	}
}

func TestIsValid(t *testing.T) {
	gen := NewGenerator()

	assert.True(t, IsValid(gen.GenerateString()))
	assert.False(t, IsValid("not-a-ulid"))
	assert.False(t, IsValid(""))
}

func TestTimestamp(t *testing.T) {
	gen := NewGenerator()

	before := time.Now().Add(-time.Second)
	s := gen.GenerateString()
	after := time.Now().Add(time.Second)

	ts, err := Timestamp(s)
	require.NoError(t, err)
	assert.True(t, ts.After(before))
	assert.True(t, ts.Before(after))

	_, err = Timestamp("garbage")
	assert.Error(t, err)
}

func TestDeterministicEntropy(t *testing.T) {
	genA := NewGeneratorWithEntropy(rand.New(rand.NewSource(42)))
	genB := NewGeneratorWithEntropy(rand.New(rand.NewSource(42)))

	a := genA.Generate()
	b := genB.Generate()
	assert.Equal(t, a.Entropy(), b.Entropy())
}

func TestDefaultSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}
