package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeGeometry(t *testing.T) {
	pts, err := DecodeGeometry("_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	require.NoError(t, err)
	require.Len(t, pts, 3)

	assert.InDelta(t, 38.5, pts[0].Lat, 1e-9)
	assert.InDelta(t, -120.2, pts[0].Lon, 1e-9)
	assert.InDelta(t, 43.252, pts[2].Lat, 1e-9)
	assert.InDelta(t, -126.453, pts[2].Lon, 1e-9)

	pts, err = DecodeGeometry("")
	assert.NoError(t, err)
	assert.Empty(t, pts)

	_, err = DecodeGeometry("_p~iF~ps|")
	assert.Error(t, err)
}
