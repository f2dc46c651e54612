package viewvk

import (
	"testing"
)

func TestNextFrameIndex(t *testing.T) {
	//Two frames in flight cycle 0,1,0,1
	index := 0
	want := []int{1, 0, 1, 0}
	for i, expected := range want {
		index = nextFrameIndex(index, 2)
		if index != expected {
			t.Errorf("step %d: index %d, want %d", i, index, expected)
		}
	}

	if got := nextFrameIndex(2, 3); got != 0 {
		t.Errorf("wrap at ring end gave %d, want 0", got)
	}
	if got := nextFrameIndex(5, 0); got != 0 {
		t.Errorf("zero frame ring gave %d, want 0", got)
	}
}
