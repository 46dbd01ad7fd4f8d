// Package testutil provides helpers shared by the tests of the module.
package testutil

import (
	"testing"

	"github.com/buger/jsonparser"
	"github.com/chaisql/posarray"
	"github.com/chaisql/posarray/internal/testutil/assert"
	"github.com/chaisql/posarray/snapshot"
)

// NewMemStore opens an in-memory snapshot store closed at the end of the test.
func NewMemStore(t testing.TB, cfg *posarray.Config) *snapshot.Store {
	t.Helper()

	s, err := snapshot.Open(":memory:", &snapshot.Options{Config: cfg})
	assert.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

// MustMarshal encodes v with cfg and fails the test on error.
func MustMarshal(t testing.TB, cfg *posarray.Config, v any) string {
	t.Helper()

	data, err := cfg.Marshal(v)
	assert.NoError(t, err)
	return string(data)
}

// ArrayLen returns the number of elements of the JSON array data.
func ArrayLen(t testing.TB, data []byte) int {
	t.Helper()

	var n int
	_, err := jsonparser.ArrayEach(data, func(_ []byte, _ jsonparser.ValueType, _ int, err error) {
		assert.NoError(t, err)
		n++
	})
	assert.NoError(t, err)
	return n
}
