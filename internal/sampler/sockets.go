package sampler

import (
	"fmt"

	"github.com/Faultbox/meshpcd/internal/nodes"
)

// Socket is one of the node group inputs the configurator sets.
type Socket int

const (
	SocketObject Socket = iota
	SocketDensityMin
	SocketDensityMax
	SocketBaseColor
	SocketTexture
	SocketUseTexture
	socketCount
)

var socketNames = [socketCount]string{
	SocketObject:     nodes.InputObject,
	SocketDensityMin: nodes.InputDensityMin,
	SocketDensityMax: nodes.InputDensityMax,
	SocketBaseColor:  nodes.InputBaseColor,
	SocketTexture:    nodes.InputTexture,
	SocketUseTexture: nodes.InputUseTexture,
}

// String returns the socket's display name.
func (s Socket) String() string {
	if s < 0 || s >= socketCount {
		return fmt.Sprintf("Socket(%d)", int(s))
	}
	return socketNames[s]
}

// socketMap holds the identifier of each Socket in one node group.
type socketMap [socketCount]string

// resolve looks up every socket identifier of g, once per group.
func (c *Configurator) resolve(g *nodes.Group) (socketMap, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.sockets[g]; ok {
		return m, nil
	}

	var m socketMap
	for s := Socket(0); s < socketCount; s++ {
		id, err := g.Identifier(s.String())
		if err != nil {
			return m, err
		}
		m[s] = id
	}
	c.sockets[g] = m
	return m, nil
}

// bind stores the request values on mod.
func (m socketMap) bind(mod *nodes.Modifier, req SamplingRequest) error {
	var texture any
	if req.Texture != nil {
		texture = req.Texture.Pixels
	}

	values := [socketCount]any{
		SocketObject:     req.Mesh,
		SocketDensityMin: req.DensityMin,
		SocketDensityMax: req.DensityMax,
		SocketBaseColor:  req.BaseColor,
		SocketTexture:    texture,
		SocketUseTexture: req.UseTexture,
	}
	for s, v := range values {
		if err := mod.Set(m[s], v); err != nil {
			return fmt.Errorf("setting %s: %w", Socket(s), err)
		}
	}
	return nil
}
