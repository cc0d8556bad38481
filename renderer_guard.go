package gekko

import "fmt"

// RendererTag records which renderer owns the window surface.
type RendererTag struct {
	Name string
}

// ensureSingleRenderer panics when a renderer other than name is already installed.
func ensureSingleRenderer(app *App, name string) {
	cmd := app.Commands()
	if tag, ok := GetResource[RendererTag](cmd); ok {
		if tag.Name != name {
			app.Logger().Errorf("multiple renderers installed: %s and %s", tag.Name, name)
			panic(fmt.Sprintf("multiple renderers installed: %s and %s", tag.Name, name))
		}
		return
	}
	app.addResources(&RendererTag{Name: name})
}
