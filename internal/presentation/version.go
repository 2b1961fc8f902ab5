package presentation

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	domainerrors "veriport/pkg/domain-errors"
)

// Path is the protocol generation a request is routed to. Exactly one path
// handles any given request.
type Path int

const (
	PathV1 Path = iota + 1
	PathV2
	PathV3
)

func (p Path) String() string {
	switch p {
	case PathV1:
		return "v1"
	case PathV2:
		return "v2"
	case PathV3:
		return "v3"
	default:
		return "unknown"
	}
}

// defaultVersion is assumed when a client sends no version header. The oldest
// deployed holder SDKs predate the header entirely.
const defaultVersion = "1.0.0"

var (
	v2Boundary = semver.MustParse("2.0.0")
	v3Boundary = semver.MustParse("3.0.0")
)

// ParseVersion parses the version header, defaulting when it is absent.
// A malformed header fails here, before any external call is made.
func ParseVersion(header string) (*semver.Version, error) {
	if header == "" {
		header = defaultVersion
	}
	version, err := semver.StrictNewVersion(header)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeProtocol,
			fmt.Sprintf("version header %q is not valid semver", header))
	}
	return version, nil
}

// Route maps a parsed version to its protocol path.
func Route(version *semver.Version) Path {
	switch {
	case version.LessThan(v2Boundary):
		return PathV1
	case version.LessThan(v3Boundary):
		return PathV2
	default:
		return PathV3
	}
}

// RouteLegacy routes the legacy endpoint, which serves v1 and v2 only.
// Third-generation clients must use the dedicated endpoint and are rejected
// here rather than silently coerced.
func RouteLegacy(header string) (Path, *semver.Version, error) {
	version, err := ParseVersion(header)
	if err != nil {
		return 0, nil, err
	}
	path := Route(version)
	if path == PathV3 {
		return 0, nil, domainerrors.New(domainerrors.CodeProtocol,
			fmt.Sprintf("version %s is not supported here, use the v3 endpoint", version))
	}
	return path, version, nil
}

// RouteV2 routes the v2 endpoint, which accepts only second-generation
// versions.
func RouteV2(header string) (*semver.Version, error) {
	version, err := ParseVersion(header)
	if err != nil {
		return nil, err
	}
	if Route(version) != PathV2 {
		return nil, domainerrors.New(domainerrors.CodeProtocol,
			fmt.Sprintf("version %s is not supported on the v2 endpoint", version))
	}
	return version, nil
}

// RouteV3 routes the dedicated third-generation endpoint, which accepts only
// versions at or above the v3 boundary.
func RouteV3(header string) (*semver.Version, error) {
	version, err := ParseVersion(header)
	if err != nil {
		return nil, err
	}
	if Route(version) != PathV3 {
		return nil, domainerrors.New(domainerrors.CodeProtocol,
			fmt.Sprintf("version %s is not supported on the v3 endpoint", version))
	}
	return version, nil
}
