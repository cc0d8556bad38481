package preview

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/gekko2d/radiance/rc/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"
)

func TestRender_EmptySceneIsSaturated(t *testing.T) {
	r := NewRenderer(2)
	img := r.Render(&core.ShapeRecords{}, nil, 8, 8, ModeSDF)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			assert.Equal(t, uint8(255), img.NRGBAAt(x, y).R)
		}
	}
}

func TestRender_VoronoiPicksClosestEmitter(t *testing.T) {
	var records core.ShapeRecords
	records.Append(core.Circle{Radius: 2}, mgl32.Vec2{-20, 0}, 0, [3]float32{1, 0, 0}, 1)
	records.Append(core.Circle{Radius: 2}, mgl32.Vec2{20, 0}, 0, [3]float32{0, 0, 1}, 1)

	r := NewRenderer(0)
	// 64x40 at zoom 1 covers x in [-32, 32]
	img := r.Render(&records, core.NewCamera2D(), 64, 40, ModeVoronoi)

	left := img.NRGBAAt(2, 20)
	right := img.NRGBAAt(61, 20)
	assert.Equal(t, uint8(255), left.R)
	assert.Equal(t, uint8(0), left.B)
	assert.Equal(t, uint8(255), right.B)
	assert.Equal(t, uint8(0), right.R)
}

func TestRender_InsideShapeIsTinted(t *testing.T) {
	var records core.ShapeRecords
	records.Append(core.Rect{HalfExtents: mgl32.Vec2{10, 10}}, mgl32.Vec2{}, 0, [3]float32{}, 0)

	img := NewRenderer(1).Render(&records, nil, 32, 32, ModeSDF)
	c := img.NRGBAAt(16, 16)
	assert.Greater(t, c.R, c.G)
}

// Rendering more rows than one band exercises several pool tasks.
func TestRender_CoversAllBands(t *testing.T) {
	var records core.ShapeRecords
	records.Append(core.Circle{Radius: 1000}, mgl32.Vec2{}, 0, [3]float32{1, 1, 1}, 1)

	img := NewRenderer(3).Render(&records, nil, 5, rowsPerTask*3+5, ModeVoronoi)
	for y := 0; y < img.Bounds().Dy(); y++ {
		require.Equal(t, uint8(255), img.NRGBAAt(4, y).G, "row %d", y)
	}
}

func TestWriteWebP_RoundTrip(t *testing.T) {
	var records core.ShapeRecords
	records.Append(core.Circle{Radius: 4}, mgl32.Vec2{}, 0, [3]float32{0, 1, 0}, 1)
	img := NewRenderer(1).Render(&records, nil, 16, 16, ModeVoronoi)

	path := filepath.Join(t.TempDir(), "preview.webp")
	require.NoError(t, WriteWebP(path, img))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	decoded, err := webp.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	_, g, _, _ := decoded.At(8, 8).RGBA()
	assert.Equal(t, uint32(0xffff), g)
}
