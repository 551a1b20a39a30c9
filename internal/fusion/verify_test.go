package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexuscore/nexus/internal/capability"
)

func TestVerifyNoChange(t *testing.T) {
	elements := []capability.Element{{Role: "button", Label: "Save"}}
	before := Snap(1, "App", elements)
	after := Snap(1, "App", elements)
	assert.Equal(t, "no visible change", Verify(before, after))
}

func TestVerifyDetectsAppearedAndDisappeared(t *testing.T) {
	before := Snap(1, "App", []capability.Element{{Role: "button", Label: "Save"}})
	after := Snap(1, "App", []capability.Element{{Role: "button", Label: "Confirm"}})

	diff := Verify(before, after)
	assert.Contains(t, diff, "appeared: button:Confirm")
	assert.Contains(t, diff, "disappeared: button:Save")
}

func TestVerifyIsDeterministic(t *testing.T) {
	before := Snap(1, "App", []capability.Element{{Role: "button", Label: "A"}})
	after := Snap(1, "App", []capability.Element{
		{Role: "button", Label: "Z"},
		{Role: "button", Label: "B"},
	})
	first := Verify(before, after)
	second := Verify(before, after)
	assert.Equal(t, first, second)
}
