package viewvk

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestClampSwapExtent(t *testing.T) {
	//Platform-fixed extent is taken verbatim regardless of the request
	fixed := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: 1024, Height: 768},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
	}
	extent := clampSwapExtent(333, 222, fixed)
	if extent.Width != 1024 || extent.Height != 768 {
		t.Errorf("fixed extent overridden: %dx%d", extent.Width, extent.Height)
	}

	//MaxUint32 current extent means the window size decides, within bounds
	free := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 64, Height: 64},
		MaxImageExtent: vk.Extent2D{Width: 2048, Height: 2048},
	}
	extent = clampSwapExtent(800, 600, free)
	if extent.Width != 800 || extent.Height != 600 {
		t.Errorf("in-bounds request changed: %dx%d", extent.Width, extent.Height)
	}
	extent = clampSwapExtent(8000, 16, free)
	if extent.Width != 2048 || extent.Height != 64 {
		t.Errorf("out-of-bounds request not clamped: %dx%d", extent.Width, extent.Height)
	}
}

func TestClampImageCount(t *testing.T) {
	if got := clampImageCount(2, 2, 8); got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
	if got := clampImageCount(2, 3, 8); got != 3 {
		t.Errorf("below-minimum count = %d, want 3", got)
	}
	if got := clampImageCount(9, 2, 3); got != 3 {
		t.Errorf("above-maximum count = %d, want 3", got)
	}
	//Zero maximum means the surface imposes no upper bound
	if got := clampImageCount(5, 2, 0); got != 5 {
		t.Errorf("unbounded count = %d, want 5", got)
	}
}
