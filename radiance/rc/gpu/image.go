package gpu

import (
	"bufio"
	"fmt"
	"image"
	_ "image/png"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	_ "github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DecodeImageFile reads a PNG, TGA or WebP image.
func DecodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}

// ResizeNRGBA scales src to exactly width x height with bilinear filtering.
// A source already at that size is only converted.
func ResizeNRGBA(src image.Image, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	if src.Bounds().Dx() == width && src.Bounds().Dy() == height {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
		return dst
	}
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// UploadRGBA creates a sampled RGBA8 texture from tightly packed pixels.
func UploadRGBA(device *wgpu.Device, label string, width, height uint32, pix []byte) (Texture, error) {
	if width == 0 || height == 0 {
		return Texture{}, fmt.Errorf("create %s: %w", label, ErrZeroSize)
	}
	if len(pix) < int(width*height*4) {
		return Texture{}, fmt.Errorf("create %s: %d bytes for %dx%d", label, len(pix), width, height)
	}

	extent := wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1}
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return Texture{}, fmt.Errorf("create %s: %w", label, err)
	}
	device.GetQueue().WriteTexture(tex.AsImageCopy(), pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  width * 4,
		RowsPerImage: height,
	}, &extent)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return Texture{}, fmt.Errorf("create %s view: %w", label, err)
	}
	return Texture{Texture: tex, View: view}, nil
}

// UploadImage uploads img as an RGBA8 texture.
func UploadImage(device *wgpu.Device, label string, img *image.NRGBA) (Texture, error) {
	b := img.Bounds()
	pix := img.Pix
	if img.Stride != b.Dx()*4 {
		pix = make([]byte, 0, b.Dx()*b.Dy()*4)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			o := img.PixOffset(b.Min.X, y)
			pix = append(pix, img.Pix[o:o+b.Dx()*4]...)
		}
	}
	return UploadRGBA(device, label, uint32(b.Dx()), uint32(b.Dy()), pix)
}
