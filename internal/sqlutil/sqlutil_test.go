package sqlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInClause(t *testing.T) {
	ph, args := InClause([]string{"person", "location"})
	assert.Equal(t, "?, ?", ph)
	assert.Equal(t, []any{"person", "location"}, args)

	ph, args = InClause([]int{7})
	assert.Equal(t, "?", ph)
	assert.Equal(t, []any{7}, args)

	ph, args = InClause[string](nil)
	assert.Equal(t, "NULL", ph)
	assert.Nil(t, args)
}
