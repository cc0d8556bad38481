package shaders

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gekko3d/gekko2d/radiance/rc/core"
)

//go:embed sdf.wgsl
var SDFWGSL string

//go:embed cascade.wgsl
var CascadeWGSL string

//go:embed mipmap.wgsl
var MipmapWGSL string

//go:embed composite.wgsl
var CompositeWGSL string

// Kinds lists the pass kinds that own a shader, in build order.
var Kinds = []core.PassKind{core.PassSDF, core.PassCascade, core.PassMipmap, core.PassComposite}

// FileName is the on-disk name of the shader for a pass kind.
func FileName(kind core.PassKind) string {
	return kind.String() + ".wgsl"
}

// Sources maps each pass kind to its WGSL code.
type Sources map[core.PassKind]string

// Embedded returns the shaders compiled into the binary.
func Embedded() Sources {
	return Sources{
		core.PassSDF:       SDFWGSL,
		core.PassCascade:   CascadeWGSL,
		core.PassMipmap:    MipmapWGSL,
		core.PassComposite: CompositeWGSL,
	}
}

// Load reads the shaders from dir. A file that does not exist falls back to
// the embedded copy; any other read error is returned.
func Load(dir string) (Sources, error) {
	src := Embedded()
	if dir == "" {
		return src, nil
	}
	for _, kind := range Kinds {
		data, err := os.ReadFile(filepath.Join(dir, FileName(kind)))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s shader: %w", kind, err)
		}
		src[kind] = string(data)
	}
	return src, nil
}
