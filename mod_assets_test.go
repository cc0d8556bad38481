package gekko

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

func normalImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func writeImage(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	switch filepath.Ext(path) {
	case ".png":
		err = png.Encode(f, img)
	case ".tga":
		err = tga.Encode(f, img)
	case ".webp":
		err = nativewebp.Encode(f, img, nil)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func TestLoadTextureFormats(t *testing.T) {
	dir := t.TempDir()
	flat := color.NRGBA{R: 128, G: 128, B: 255, A: 255}
	server := NewAssetServer()

	for _, name := range []string{"normal.png", "normal.tga", "normal.webp"} {
		path := filepath.Join(dir, name)
		writeImage(t, path, normalImage(4, 2, flat))

		id, err := server.LoadTexture(path)
		if err != nil {
			t.Fatalf("LoadTexture(%s): %v", name, err)
		}
		tex, ok := server.Texture(id)
		if !ok {
			t.Fatalf("%s: texture not registered", name)
		}
		if w, h := tex.Size(); w != 4 || h != 2 {
			t.Errorf("%s: expected 4x2, got %dx%d", name, w, h)
		}
		if got := tex.Image.NRGBAAt(3, 1); got != flat {
			t.Errorf("%s: expected %v, got %v", name, flat, got)
		}
	}
}

func TestLoadTextureDedupAndRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n.png")
	writeImage(t, path, normalImage(2, 2, color.NRGBA{A: 255}))

	server := NewAssetServer()
	a, err := server.LoadTexture(path)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := server.LoadTexture(path)
	if a != b {
		t.Errorf("loading the same path twice should return one id")
	}

	server.RemoveTexture(a)
	if _, ok := server.Texture(a); ok {
		t.Errorf("texture should be gone after RemoveTexture")
	}
	c, _ := server.LoadTexture(path)
	if c == a {
		t.Errorf("reloading a removed texture should mint a new id")
	}
}

func TestLoadTextureErrors(t *testing.T) {
	dir := t.TempDir()
	server := NewAssetServer()

	if _, err := server.LoadTexture(filepath.Join(dir, "missing.png")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := server.LoadTexture(bad); err == nil {
		t.Errorf("expected an error for a corrupt file")
	}
}

func TestReloadTextureBumpsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n.png")
	writeImage(t, path, normalImage(2, 2, color.NRGBA{R: 10, A: 255}))

	server := NewAssetServer()
	id, _ := server.LoadTexture(path)
	tex, _ := server.Texture(id)
	if tex.Version != 0 {
		t.Fatalf("fresh texture should be version 0, got %d", tex.Version)
	}

	writeImage(t, path, normalImage(3, 3, color.NRGBA{R: 20, A: 255}))
	if err := server.ReloadTexture(id); err != nil {
		t.Fatalf("ReloadTexture: %v", err)
	}
	if tex.Version != 1 {
		t.Errorf("version should be 1 after reload, got %d", tex.Version)
	}
	if w, h := tex.Size(); w != 3 || h != 3 {
		t.Errorf("reload should pick up the new size, got %dx%d", w, h)
	}
	if err := server.ReloadTexture("unknown"); err == nil {
		t.Errorf("expected an error for an unknown id")
	}
}

func TestTextureSized(t *testing.T) {
	server := NewAssetServer()
	id := server.CreateTexture(normalImage(2, 2, color.NRGBA{R: 200, G: 100, B: 50, A: 255}), "")

	same, err := server.TextureSized(id, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	tex, _ := server.Texture(id)
	if same != tex.Image {
		t.Errorf("native size should return the stored image")
	}

	big, err := server.TextureSized(id, 8, 6)
	if err != nil {
		t.Fatal(err)
	}
	if big.Bounds() != image.Rect(0, 0, 8, 6) {
		t.Errorf("expected 8x6, got %v", big.Bounds())
	}
	if got := big.NRGBAAt(7, 5); got != (color.NRGBA{R: 200, G: 100, B: 50, A: 255}) {
		t.Errorf("flat image should stay flat when scaled, got %v", got)
	}
	again, _ := server.TextureSized(id, 8, 6)
	if again != big {
		t.Errorf("repeated request should hit the cache")
	}

	if _, err := server.TextureSized(id, 0, 6); err == nil {
		t.Errorf("expected an error for an empty size")
	}
	if _, err := server.TextureSized("unknown", 1, 1); err == nil {
		t.Errorf("expected an error for an unknown id")
	}
}
