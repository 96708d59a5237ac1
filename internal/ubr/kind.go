package ubr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is the container type tag stored as a little-endian u32 at offset 0.
type Kind uint32

const (
	KindMap     Kind = 0x20000000 // track: textures, skybox, meshes
	KindCar     Kind = 0x20010000 // car skin and meshes
	KindFont    Kind = 0x00030000
	KindMenu    Kind = 0x00050003
	KindText    Kind = 0x00050004
	KindInGame  Kind = 0x04090000
	KindSprites Kind = 0x00050001
	KindCarData Kind = 0x000C0001
)

// BlockHeaderSize is the stride unit of data block chains.
const BlockHeaderSize = 0x10

var kindNames = map[Kind]string{
	KindMap:     "map",
	KindCar:     "car",
	KindFont:    "font",
	KindMenu:    "menu",
	KindText:    "text",
	KindInGame:  "in-game",
	KindSprites: "sprites",
	KindCarData: "car-data",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%#08x)", uint32(k))
}

// Known reports whether k is one of the enumerated kinds.
func (k Kind) Known() bool {
	_, ok := kindNames[k]
	return ok
}

// HasMeshes reports whether containers of this kind carry a packet index.
func (k Kind) HasMeshes() bool {
	return k == KindMap || k == KindCar
}

// HeaderOffset is the base added to file-relative positions stored in the
// main header of a container.
func (k Kind) HeaderOffset() int {
	switch k {
	case KindSprites, KindInGame:
		return 0x10
	default:
		return 0x80
	}
}

// Kind classifies the container by its type tag. The raw tag is returned with
// ErrUnknownFileKind so callers can still decide to continue.
func (c *Container) Kind() (Kind, error) {
	v, err := c.U32(0)
	if err != nil {
		return 0, errors.Wrap(err, "type tag")
	}
	k := Kind(v)
	if !k.Known() {
		return k, errors.Wrapf(ErrUnknownFileKind, "%s: tag %#08x", c.name, v)
	}
	return k, nil
}
