package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrComputeMemoizes(t *testing.T) {
	m := New[string, []string](time.Minute)

	calls := 0
	fetch := func() ([]string, error) {
		calls++
		return []string{"clientes", "ventas"}, nil
	}

	first, err := m.GetOrCompute("tables", fetch)
	require.NoError(t, err)
	second, err := m.GetOrCompute("tables", fetch)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "second call inside the TTL must not recompute")
}

func TestGetOrComputeExpires(t *testing.T) {
	m := New[string, int](30 * time.Millisecond)

	calls := 0
	fetch := func() (int, error) {
		calls++
		return calls, nil
	}

	v, err := m.GetOrCompute("k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	time.Sleep(60 * time.Millisecond)

	v, err = m.GetOrCompute("k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "expired entry must be recomputed")
}

func TestErrorsAreNotCached(t *testing.T) {
	m := New[string, string](time.Minute)

	calls := 0
	fetch := func() (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}

	_, err := m.GetOrCompute("k", fetch)
	require.Error(t, err)

	v, err := m.GetOrCompute("k", fetch)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
}

func TestDistinctKeys(t *testing.T) {
	type previewKey struct {
		Table string
		Limit int
	}
	m := New[previewKey, string](time.Minute)

	a, err := m.GetOrCompute(previewKey{"ventas", 100}, func() (string, error) { return "a", nil })
	require.NoError(t, err)
	b, err := m.GetOrCompute(previewKey{"ventas", 50}, func() (string, error) { return "b", nil })
	require.NoError(t, err)

	assert.Equal(t, "a", a)
	assert.Equal(t, "b", b)
	assert.Equal(t, 2, m.Len())
}

func TestPurge(t *testing.T) {
	m := New[string, int](time.Minute)
	_, err := m.GetOrCompute("k", func() (int, error) { return 1, nil })
	require.NoError(t, err)

	m.Purge()
	assert.Zero(t, m.Len())
}
