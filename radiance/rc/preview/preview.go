// Package preview rasterizes the scene distance field on the CPU. It mirrors
// the SDF pass so tools and tests can inspect a scene without a GPU.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/HugoSmits86/nativewebp"
	"github.com/gekko3d/gekko2d/radiance/rc/core"
	"github.com/go-gl/mathgl/mgl32"
)

type Mode int

const (
	// ModeSDF shows distance: bright far from shapes, red inside them.
	ModeSDF Mode = iota
	// ModeVoronoi shows the emission of the closest shape.
	ModeVoronoi
)

// rowsPerTask is the height of the band each pool task rasterizes.
const rowsPerTask = 16

// Renderer owns a worker pool reused across renders.
type Renderer struct {
	pool worker.DynamicWorkerPool
	// DistanceScale is the distance mapped to full brightness in ModeSDF.
	DistanceScale float32
}

func NewRenderer(workers int) *Renderer {
	if workers <= 0 {
		workers = max(runtime.NumCPU()-1, 1)
	}
	return &Renderer{
		pool:          worker.NewDynamicWorkerPool(workers, 256, 1*time.Second),
		DistanceScale: 64,
	}
}

// Render evaluates every pixel center of a width x height view of cam.
func (r *Renderer) Render(records *core.ShapeRecords, cam *core.Camera2D, width, height int, mode Mode) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	if width <= 0 || height <= 0 {
		return img
	}
	if cam == nil {
		cam = core.NewCamera2D()
	}
	lo, hi := cam.Bounds(uint32(width), uint32(height))
	texel := mgl32.Vec2{(hi.X() - lo.X()) / float32(width), (hi.Y() - lo.Y()) / float32(height)}

	var wg sync.WaitGroup
	taskID := 0
	for y0 := 0; y0 < height; y0 += rowsPerTask {
		y1 := min(y0+rowsPerTask, height)
		wg.Add(1)
		band := [2]int{y0, y1}
		id := taskID
		taskID++
		r.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for y := band[0]; y < band[1]; y++ {
					wy := hi.Y() - (float32(y)+0.5)*texel.Y()
					for x := 0; x < width; x++ {
						wx := lo.X() + (float32(x)+0.5)*texel.X()
						d, emit := records.Evaluate(mgl32.Vec2{wx, wy})
						img.SetNRGBA(x, y, r.shade(d, emit, mode))
					}
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
	return img
}

func (r *Renderer) shade(d float32, emit [3]float32, mode Mode) color.NRGBA {
	switch mode {
	case ModeVoronoi:
		return color.NRGBA{R: unorm8(emit[0]), G: unorm8(emit[1]), B: unorm8(emit[2]), A: 255}
	default:
		scale := r.DistanceScale
		if scale <= 0 {
			scale = 64
		}
		v := abs32(d) / scale
		if d < 0 {
			return color.NRGBA{R: unorm8(0.25 + v), G: 26, B: 26, A: 255}
		}
		g := unorm8(v)
		return color.NRGBA{R: g, G: g, B: g, A: 255}
	}
}

// WriteWebP saves img losslessly.
func WriteWebP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create preview %s: %w", path, err)
	}
	defer f.Close()
	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("encode preview %s: %w", path, err)
	}
	return nil
}

func unorm8(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
