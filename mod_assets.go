package gekko

import (
	"fmt"
	"image"

	"github.com/gekko3d/gekko2d/radiance/rc/gpu"
	"github.com/google/uuid"
)

type AssetId string

// TextureAsset is a decoded image kept on the CPU. The last resized copy is
// cached so repeated requests for the viewport size rescale once.
type TextureAsset struct {
	Source  string
	Image   *image.NRGBA
	Version uint

	resizedSize [2]int
	resized     *image.NRGBA
}

func (t *TextureAsset) Size() (int, int) {
	b := t.Image.Bounds()
	return b.Dx(), b.Dy()
}

type AssetServer struct {
	textures map[AssetId]*TextureAsset
	bySource map[string]AssetId
}

type AssetServerModule struct{}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	app.addResources(NewAssetServer())
}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		textures: make(map[AssetId]*TextureAsset),
		bySource: make(map[string]AssetId),
	}
}

// CreateTexture registers an in-memory image.
func (server *AssetServer) CreateTexture(img image.Image, source string) AssetId {
	id := makeAssetId()
	server.textures[id] = &TextureAsset{
		Source: source,
		Image:  gpu.ResizeNRGBA(img, img.Bounds().Dx(), img.Bounds().Dy()),
	}
	if source != "" {
		server.bySource[source] = id
	}
	return id
}

// LoadTexture decodes a PNG, TGA or WebP file. Loading the same path twice
// returns the first id.
func (server *AssetServer) LoadTexture(path string) (AssetId, error) {
	if id, ok := server.bySource[path]; ok {
		return id, nil
	}
	img, err := gpu.DecodeImageFile(path)
	if err != nil {
		return "", fmt.Errorf("load texture: %w", err)
	}
	return server.CreateTexture(img, path), nil
}

// ReloadTexture decodes the source file again and bumps the version.
func (server *AssetServer) ReloadTexture(id AssetId) error {
	tex, ok := server.textures[id]
	if !ok {
		return fmt.Errorf("texture %s not found", id)
	}
	img, err := gpu.DecodeImageFile(tex.Source)
	if err != nil {
		return fmt.Errorf("reload texture: %w", err)
	}
	b := img.Bounds()
	tex.Image = gpu.ResizeNRGBA(img, b.Dx(), b.Dy())
	tex.resized = nil
	tex.Version++
	return nil
}

func (server *AssetServer) Texture(id AssetId) (*TextureAsset, bool) {
	tex, ok := server.textures[id]
	return tex, ok
}

// TextureSized returns the texture rescaled to width x height.
func (server *AssetServer) TextureSized(id AssetId, width, height int) (*image.NRGBA, error) {
	tex, ok := server.textures[id]
	if !ok {
		return nil, fmt.Errorf("texture %s not found", id)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("texture %s: invalid size %dx%d", id, width, height)
	}
	if w, h := tex.Size(); w == width && h == height {
		return tex.Image, nil
	}
	key := [2]int{width, height}
	if tex.resized != nil && tex.resizedSize == key {
		return tex.resized, nil
	}
	tex.resized = gpu.ResizeNRGBA(tex.Image, width, height)
	tex.resizedSize = key
	return tex.resized, nil
}

func (server *AssetServer) RemoveTexture(id AssetId) {
	if tex, ok := server.textures[id]; ok {
		delete(server.bySource, tex.Source)
		delete(server.textures, id)
	}
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
