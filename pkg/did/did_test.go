package did

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFragment(t *testing.T) {
	assert.Equal(t, "did:ex:abc", StripFragment("did:ex:abc#signing-1"))
	assert.Equal(t, "did:ex:abc", StripFragment("did:ex:abc"))
	assert.Equal(t, "", StripFragment("#only-fragment"))
}
