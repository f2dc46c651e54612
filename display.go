package viewvk

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//CoreDisplay owns the window binding and the presentation surface. The
//window itself belongs to the caller's event loop; the surface belongs
//to the display and is destroyed with the instance still valid.
type CoreDisplay struct {
	window         *glfw.Window
	surface        vk.Surface
	surface_format vk.SurfaceFormat
	extent         vk.Extent2D
}

func NewCoreDisplay(window *glfw.Window) *CoreDisplay {
	var core CoreDisplay
	core.window = window
	core.surface = vk.NullSurface
	return &core
}

//CreateSurface binds a vulkan surface to the display window
func (core *CoreDisplay) CreateSurface(instance vk.Instance) error {
	if core.window == nil {
		return errors.New("display has no window to create a surface for")
	}
	if core.surface != vk.NullSurface {
		return nil
	}
	surf_ptr, err := core.window.CreateWindowSurface(instance, nil)
	if err != nil {
		core.surface = vk.NullSurface
		return errors.Wrap(err, "create window surface")
	}
	core.surface = vk.SurfaceFromPointer(surf_ptr)
	return nil
}

func (core *CoreDisplay) DestroySurface(instance vk.Instance) {
	if core.surface != vk.NullSurface && instance != nil {
		vk.DestroySurface(instance, core.surface, nil)
		core.surface = vk.NullSurface
	}
}

//GetSize returns the current client area in pixels, or zero without a window
func (core *CoreDisplay) GetSize() (int, int) {
	if core.window == nil {
		return 0, 0
	}
	return core.window.GetFramebufferSize()
}

//RequiredInstanceExtensions lists what the window system needs from the instance
func (core *CoreDisplay) RequiredInstanceExtensions() []string {
	if core.window == nil {
		return []string{}
	}
	return core.window.GetRequiredInstanceExtensions()
}
