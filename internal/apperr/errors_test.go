package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSentinel = errors.New("sentinel")

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("payment %d not found", 3)))
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("outer: %w", Conflict("dup"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(KindConflict, errSentinel, "payment %d already distributed", 7)
	assert.True(t, errors.Is(err, errSentinel))
	assert.True(t, IsConflict(err))
	assert.Equal(t, "payment 7 already distributed", err.Error())
}

func TestValidationFields(t *testing.T) {
	err := Validation(map[string]string{"month": "out_of_range"}, "invalid input")
	assert.True(t, IsValidation(err))
	assert.Equal(t, "out_of_range", err.Fields["month"])
	assert.Equal(t, "validation_failed", err.Kind.String())
}
