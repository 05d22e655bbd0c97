package transform

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upperScript = `
function transform(record) {
	record.city = record.city.toUpperCase();
	return record;
}
`

func TestApply(t *testing.T) {
	rt, err := New(DefaultConfig(), upperScript)
	require.NoError(t, err)
	defer rt.Close()

	out, err := rt.Apply(context.Background(), map[string]interface{}{"city": "austin"})
	require.NoError(t, err)
	assert.Equal(t, "AUSTIN", out["city"])
}

func TestApplyDropsOnNull(t *testing.T) {
	rt, err := New(DefaultConfig(), `function transform(record) { return null; }`)
	require.NoError(t, err)
	defer rt.Close()

	out, err := rt.Apply(context.Background(), map[string]interface{}{"city": "austin"})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestApplyRejectsScalarReturn(t *testing.T) {
	rt, err := New(DefaultConfig(), `function transform(record) { return 42; }`)
	require.NoError(t, err)
	defer rt.Close()

	_, err = rt.Apply(context.Background(), map[string]interface{}{})
	assert.ErrorIs(t, err, ErrBadReturn)
}

func TestApplyPropagatesThrow(t *testing.T) {
	rt, err := New(DefaultConfig(), `function transform(record) { throw new Error("boom"); }`)
	require.NoError(t, err)
	defer rt.Close()

	_, err = rt.Apply(context.Background(), map[string]interface{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestNewRejectsMissingFunction(t *testing.T) {
	_, err := New(DefaultConfig(), `var x = 1;`)
	assert.ErrorIs(t, err, ErrNoTransform)
}

func TestNewRejectsSyntaxError(t *testing.T) {
	_, err := New(DefaultConfig(), `function transform(record) {`)
	assert.Error(t, err)
}

func TestApplyTimeoutThenRecovers(t *testing.T) {
	config := Config{
		Timeout:       100 * time.Millisecond,
		EnableConsole: true,
		MaxCallStack:  1024,
	}
	script := `
function transform(record) {
	if (record.spin === true) {
		while (true) {}
	}
	return record;
}
`
	rt, err := New(config, script)
	require.NoError(t, err)
	defer rt.Close()

	_, err = rt.Apply(context.Background(), map[string]interface{}{"spin": true})
	require.Error(t, err)

	// The interrupt must not poison the next call.
	out, err := rt.Apply(context.Background(), map[string]interface{}{"spin": false})
	require.NoError(t, err)
	assert.Equal(t, false, out["spin"])
}

func TestConsoleCapture(t *testing.T) {
	script := `
function transform(record) {
	console.log("saw", record.city);
	console.warn("slow row");
	return record;
}
`
	rt, err := New(DefaultConfig(), script)
	require.NoError(t, err)
	defer rt.Close()

	_, err = rt.Apply(context.Background(), map[string]interface{}{"city": "austin"})
	require.NoError(t, err)

	entries := rt.Console()
	require.Len(t, entries, 2)
	assert.Equal(t, "log", entries[0].Level)
	assert.Equal(t, "saw austin", entries[0].Message)
	assert.Equal(t, "warn", entries[1].Level)

	// Drained on read.
	assert.Empty(t, rt.Console())
}

func TestDangerousGlobalsRemoved(t *testing.T) {
	script := `
function transform(record) {
	record.proc = typeof process;
	record.req = typeof require;
	return record;
}
`
	rt, err := New(DefaultConfig(), script)
	require.NoError(t, err)
	defer rt.Close()

	out, err := rt.Apply(context.Background(), map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "undefined", out["proc"])
	assert.Equal(t, "undefined", out["req"])
}

func TestReset(t *testing.T) {
	rt, err := New(DefaultConfig(), upperScript)
	require.NoError(t, err)
	defer rt.Close()

	require.NoError(t, rt.Reset())

	out, err := rt.Apply(context.Background(), map[string]interface{}{"city": "waco"})
	require.NoError(t, err)
	assert.Equal(t, "WACO", out["city"])
}
