package test

import (
	"runtime"
	"testing"

	"github.com/andewx/viewvk"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	WIDTH  = 500
	HEIGHT = 500
)

//Checkerboard test card so a manual run shows the blit path working
func testPattern(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 4
			shade := byte(0x30)
			if (x/32+y/32)%2 == 0 {
				shade = 0xd0
			}
			pixels[i] = shade
			pixels[i+1] = shade
			pixels[i+2] = byte(x * 255 / width)
			pixels[i+3] = 0xff
		}
	}
	return pixels
}

func TestRender(t *testing.T) {

	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		t.Skipf("glfw unavailable: %v", err)
	}
	defer glfw.Terminate()

	if !glfw.VulkanSupported() {
		t.Skip("vulkan loader not present")
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.Visible, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	window, errW := glfw.CreateWindow(WIDTH, HEIGHT, "viewvk", nil, nil)
	if errW != nil {
		t.Skipf("no display available: %v", errW)
	}
	defer window.Destroy()

	renderer := viewvk.NewRenderer(nil)
	if !renderer.Initialize(window) {
		t.Fatalf("renderer failed to initialize")
	}
	defer renderer.Shutdown()

	if !renderer.IsVulkanAvailable() {
		t.Skip("no usable vulkan device, software fallback armed")
	}

	renderer.UpdateImageFromLDRData(testPattern(256, 256), 256, 256)

	for frame := 0; frame < 60 && !window.ShouldClose(); frame++ {
		width, height := window.GetFramebufferSize()
		renderer.Render(width, height, 1.0, 0.0, 0.0, 0)
		glfw.PollEvents()
	}

	if renderer.IsDeviceLost() {
		t.Errorf("device lost during render loop")
	}
}
