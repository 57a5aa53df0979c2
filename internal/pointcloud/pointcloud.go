// Package pointcloud holds sampled surface points and writes them as ASCII
// PLY files.
package pointcloud

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshpcd/pkg/math"
)

// ErrMalformed is returned when attribute lengths disagree.
var ErrMalformed = errors.New("malformed point cloud")

// Sample is one sampled surface point.
type Sample struct {
	Position math.Vec3
	Color    math.Color // sRGB-encoded, components in [0, 1]
	Weights  map[string]float32
}

// Channel is a named per-point weight layer.
type Channel struct {
	Name   string
	Values []float32
}

// PointCloud stores samples as parallel arrays. Every channel has one value
// per point.
type PointCloud struct {
	Positions []math.Vec3
	Colors    []math.Color
	Channels  []Channel
}

// New builds a point cloud and validates it.
func New(positions []math.Vec3, colors []math.Color, channels []Channel) (*PointCloud, error) {
	pc := &PointCloud{Positions: positions, Colors: colors, Channels: channels}
	if err := pc.Validate(); err != nil {
		return nil, err
	}
	return pc, nil
}

// FromSamples builds a point cloud whose channels are names, in order.
// Every sample must carry exactly those weight keys.
func FromSamples(names []string, samples []Sample) (*PointCloud, error) {
	pc := &PointCloud{
		Positions: make([]math.Vec3, len(samples)),
		Colors:    make([]math.Color, len(samples)),
		Channels:  make([]Channel, len(names)),
	}
	for c, name := range names {
		pc.Channels[c] = Channel{Name: name, Values: make([]float32, len(samples))}
	}

	for i, s := range samples {
		if len(s.Weights) != len(names) {
			return nil, fmt.Errorf("%w: sample %d has %d weights, want %d",
				ErrMalformed, i, len(s.Weights), len(names))
		}
		pc.Positions[i] = s.Position
		pc.Colors[i] = s.Color
		for c, name := range names {
			w, ok := s.Weights[name]
			if !ok {
				return nil, fmt.Errorf("%w: sample %d has no weight %q", ErrMalformed, i, name)
			}
			pc.Channels[c].Values[i] = w
		}
	}
	return pc, pc.Validate()
}

// Len returns the number of points.
func (pc *PointCloud) Len() int {
	return len(pc.Positions)
}

// Validate checks that all arrays have one entry per point and that channel
// names are unique.
func (pc *PointCloud) Validate() error {
	n := len(pc.Positions)
	if len(pc.Colors) != n {
		return fmt.Errorf("%w: %d positions but %d colors", ErrMalformed, n, len(pc.Colors))
	}
	seen := make(map[string]bool, len(pc.Channels))
	for _, ch := range pc.Channels {
		if seen[ch.Name] {
			return fmt.Errorf("%w: duplicate channel %q", ErrMalformed, ch.Name)
		}
		seen[ch.Name] = true
		if len(ch.Values) != n {
			return fmt.Errorf("%w: channel %q has %d values for %d points",
				ErrMalformed, ch.Name, len(ch.Values), n)
		}
	}
	return nil
}

// ChannelNames returns the channel names in order.
func (pc *PointCloud) ChannelNames() []string {
	names := make([]string, len(pc.Channels))
	for i, ch := range pc.Channels {
		names[i] = ch.Name
	}
	return names
}

// Sample returns point i.
func (pc *PointCloud) Sample(i int) Sample {
	s := Sample{
		Position: pc.Positions[i],
		Color:    pc.Colors[i],
		Weights:  make(map[string]float32, len(pc.Channels)),
	}
	for _, ch := range pc.Channels {
		s.Weights[ch.Name] = ch.Values[i]
	}
	return s
}
