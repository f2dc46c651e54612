package viewvk

import (
	"strings"
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestNewError(t *testing.T) {
	if err := NewError(vk.Success); err != nil {
		t.Errorf("success produced error %v", err)
	}
	err := NewError(vk.ErrorDeviceLost)
	if err == nil {
		t.Fatalf("device lost produced nil error")
	}
	if !strings.Contains(err.Error(), "errors_test.go") {
		t.Errorf("error lacks caller location: %v", err)
	}
}

func TestSafeString(t *testing.T) {
	if got := safeString("VK_KHR_swapchain"); got != "VK_KHR_swapchain\x00" {
		t.Errorf("terminator missing: %q", got)
	}
	if got := safeString("VK_KHR_swapchain\x00"); got != "VK_KHR_swapchain\x00" {
		t.Errorf("double terminated: %q", got)
	}
	if got := safeString(""); got != "\x00" {
		t.Errorf("empty string gave %q", got)
	}
}

func TestCheckExisting(t *testing.T) {
	actual := []string{"VK_KHR_swapchain", "VK_KHR_portability_subset"}
	existing, missing := checkExisting(actual, []string{"VK_KHR_swapchain", "VK_EXT_debug_utils"})
	if missing != 1 {
		t.Errorf("missing = %d, want 1", missing)
	}
	if len(existing) != 1 || existing[0] != "VK_KHR_swapchain" {
		t.Errorf("existing = %v", existing)
	}

	existing, missing = checkExisting(actual, nil)
	if missing != 0 || len(existing) != 0 {
		t.Errorf("empty requirement gave %v / %d", existing, missing)
	}
}
