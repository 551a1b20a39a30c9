package fusion

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexuscore/nexus/internal/capability"
)

func TestFingerprintStableUnderReorder(t *testing.T) {
	elements := []capability.Element{
		{Role: "button", Label: "Save"},
		{Role: "button", Label: "Cancel"},
		{Role: "text", Label: "Name"},
	}

	want := Fingerprint(elements)

	shuffled := append([]capability.Element{}, elements...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	assert.Equal(t, want, Fingerprint(shuffled))
	assert.Len(t, want, 12)
}

func TestFingerprintChangesWithContent(t *testing.T) {
	a := []capability.Element{{Role: "button", Label: "Save"}}
	b := []capability.Element{{Role: "button", Label: "Cancel"}}
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}
