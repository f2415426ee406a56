package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRGBValueAndScan(t *testing.T) {
	color := RGB{12, 200, 7}

	v, err := color.Value()
	require.NoError(t, err)
	assert.Equal(t, "12,200,7", v)

	var scanned RGB
	require.NoError(t, scanned.Scan("12,200,7"))
	assert.Equal(t, color, scanned)

	require.NoError(t, scanned.Scan([]byte("0,0,255")))
	assert.Equal(t, RGB{0, 0, 255}, scanned)
}

func TestRGBScanNil(t *testing.T) {
	scanned := RGB{1, 2, 3}
	require.NoError(t, scanned.Scan(nil))
	assert.Equal(t, RGB{}, scanned)
}

func TestRGBScanErrors(t *testing.T) {
	var scanned RGB
	assert.Error(t, scanned.Scan("not-a-color"))
	assert.Error(t, scanned.Scan(42))
}
