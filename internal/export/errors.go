package export

import (
	"errors"
	"io/fs"
	"os"

	"github.com/Faultbox/meshpcd/internal/assets"
	"github.com/Faultbox/meshpcd/internal/nodes"
	"github.com/Faultbox/meshpcd/internal/pointcloud"
	"github.com/Faultbox/meshpcd/internal/sampler"
	"github.com/Faultbox/meshpcd/internal/scene"
)

// Export errors.
var (
	ErrIOFailure      = errors.New("i/o failure")
	ErrEmptySelection = errors.New("no mesh objects selected")
)

// Kind classifies why an export failed.
type Kind int

const (
	KindNone Kind = iota
	KindInvalidInput
	KindMissingMaterial
	KindAssetMissing
	KindSocketNotFound
	KindMalformedPointCloud
	KindIOFailure
	KindUnknown
)

var kindNames = [...]string{
	KindNone:                "None",
	KindInvalidInput:        "InvalidInput",
	KindMissingMaterial:     "MissingMaterial",
	KindAssetMissing:        "AssetMissing",
	KindSocketNotFound:      "SocketNotFound",
	KindMalformedPointCloud: "MalformedPointCloud",
	KindIOFailure:           "IOFailure",
	KindUnknown:             "Unknown",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// Classify maps err onto an error kind.
func Classify(err error) Kind {
	var pathErr *fs.PathError
	var linkErr *os.LinkError

	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, sampler.ErrInvalidInput), errors.Is(err, ErrEmptySelection),
		errors.Is(err, scene.ErrNotMesh), errors.Is(err, nodes.ErrDensityRange):
		return KindInvalidInput
	case errors.Is(err, sampler.ErrMissingMaterial):
		return KindMissingMaterial
	case errors.Is(err, assets.ErrAssetMissing):
		return KindAssetMissing
	case errors.Is(err, nodes.ErrSocketNotFound), errors.Is(err, nodes.ErrSocketType):
		return KindSocketNotFound
	case errors.Is(err, pointcloud.ErrMalformed), errors.Is(err, nodes.ErrReservedAttribute):
		return KindMalformedPointCloud
	case errors.Is(err, ErrIOFailure), errors.As(err, &pathErr), errors.As(err, &linkErr):
		return KindIOFailure
	}
	return KindUnknown
}
