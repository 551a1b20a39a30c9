package nxerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFormatsWithoutCause(t *testing.T) {
	err := New(ElementNotFound, "no button named Save")
	assert.Equal(t, "element-not-found: no button named Save", err.Error())
}

func TestWrapFormatsWithCause(t *testing.T) {
	cause := errors.New("ax api denied")
	err := Wrap(PermissionMissing, "accessibility permission required", cause)
	assert.Contains(t, err.Error(), "ax api denied")
	assert.True(t, errors.Is(err, cause))
}

func TestWrapNilCauseBehavesLikeNew(t *testing.T) {
	err := Wrap(Timeout, "waited too long", nil)
	assert.Equal(t, "timeout: waited too long", err.Error())
}

func TestIsMatchesKind(t *testing.T) {
	err := New(CircuitBroken, "too many failures")
	assert.True(t, Is(err, CircuitBroken))
	assert.False(t, Is(err, Timeout))
}

func TestIsFalseForPlainError(t *testing.T) {
	assert.False(t, Is(errors.New("plain"), Timeout))
}

func TestKindOfExtractsKind(t *testing.T) {
	err := New(DialogBlocking, "modal present")
	assert.Equal(t, DialogBlocking, KindOf(err))
}

func TestKindOfEmptyForPlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}
