package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessLevelMeetsMinimum(t *testing.T) {
	assert.True(t, AccessOwner.MeetsMinimum(AccessRead))
	assert.True(t, AccessAdmin.MeetsMinimum(AccessAdmin))
	assert.True(t, AccessWrite.MeetsMinimum(AccessRead))

	assert.False(t, AccessRead.MeetsMinimum(AccessWrite))
	assert.False(t, AccessAdmin.MeetsMinimum(AccessOwner))

	// Unknown levels never qualify, in either position.
	assert.False(t, AccessLevel("Root").MeetsMinimum(AccessRead))
	assert.False(t, AccessOwner.MeetsMinimum(AccessLevel("Root")))
}

func TestAccessLevelValid(t *testing.T) {
	for _, l := range []AccessLevel{AccessRead, AccessWrite, AccessAdmin, AccessOwner} {
		assert.True(t, l.Valid(), l)
	}
	assert.False(t, AccessLevel("").Valid())
	assert.False(t, AccessLevel("read").Valid())
}
