package presentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "veriport/pkg/domain-errors"
)

func TestParseVersionDefaultsWhenHeaderOmitted(t *testing.T) {
	version, err := ParseVersion("")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", version.String())
	assert.Equal(t, PathV1, Route(version))
}

func TestParseVersionRejectsMalformedHeader(t *testing.T) {
	for _, header := range []string{"not-a-version", "2", "2.0", "v2.0.0", "2.0.0.0", "latest"} {
		t.Run(header, func(t *testing.T) {
			_, err := ParseVersion(header)
			require.Error(t, err)
			assert.True(t, domainerrors.HasCode(err, domainerrors.CodeProtocol))
		})
	}
}

func TestRouteBoundaries(t *testing.T) {
	tests := []struct {
		header string
		want   Path
	}{
		{"1.0.0", PathV1},
		{"1.9.9", PathV1},
		{"2.0.0-rc.1", PathV1},
		{"2.0.0", PathV2},
		{"2.5.3", PathV2},
		{"2.99.0", PathV2},
		{"3.0.0", PathV3},
		{"4.1.0", PathV3},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			version, err := ParseVersion(tt.header)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Route(version))
		})
	}
}

func TestRouteLegacyServesV1AndV2(t *testing.T) {
	path, version, err := RouteLegacy("1.2.0")
	require.NoError(t, err)
	assert.Equal(t, PathV1, path)
	assert.Equal(t, "1.2.0", version.String())

	path, _, err = RouteLegacy("2.1.0")
	require.NoError(t, err)
	assert.Equal(t, PathV2, path)
}

func TestRouteLegacyRejectsV3(t *testing.T) {
	_, _, err := RouteLegacy("3.0.0")
	require.Error(t, err)
	assert.True(t, domainerrors.HasCode(err, domainerrors.CodeProtocol))
	assert.Contains(t, err.Error(), "v3 endpoint")
}

func TestRouteV2Bounds(t *testing.T) {
	_, err := RouteV2("2.0.0")
	require.NoError(t, err)

	_, err = RouteV2("1.0.0")
	assert.True(t, domainerrors.HasCode(err, domainerrors.CodeProtocol))

	_, err = RouteV2("3.0.0")
	assert.True(t, domainerrors.HasCode(err, domainerrors.CodeProtocol))
}

func TestRouteV3Bounds(t *testing.T) {
	_, err := RouteV3("3.0.0")
	require.NoError(t, err)

	_, err = RouteV3("3.5.1")
	require.NoError(t, err)

	_, err = RouteV3("2.9.0")
	assert.True(t, domainerrors.HasCode(err, domainerrors.CodeProtocol))

	// Omitted header defaults below the v3 boundary and is rejected here.
	_, err = RouteV3("")
	assert.True(t, domainerrors.HasCode(err, domainerrors.CodeProtocol))
}
