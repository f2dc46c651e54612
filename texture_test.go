package viewvk

import (
	"testing"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

func TestTextureFormat(t *testing.T) {
	if got := textureFormat(false); got != vk.FormatR8g8b8a8Srgb {
		t.Errorf("ldr format = %d, want R8G8B8A8Srgb", got)
	}
	if got := textureFormat(true); got != vk.FormatR16g16b16a16Sfloat {
		t.Errorf("hdr format = %d, want R16G16B16A16Sfloat", got)
	}
}

func TestStagingSize(t *testing.T) {
	if got := stagingSize(256, 256, false); got != 256*256*4 {
		t.Errorf("ldr staging size = %d", got)
	}
	//10000x8000 HDR needs w*h*4 components at 2 bytes each
	if got := stagingSize(10000, 8000, true); got != 10000*8000*8 {
		t.Errorf("hdr staging size = %d", got)
	}
}

func TestTextureMatches(t *testing.T) {
	var texture *CoreTexture
	if texture.Matches(100, 100, false) {
		t.Errorf("nil texture matched")
	}
	texture = &CoreTexture{width: 100, height: 50, hdr: true}
	if texture.Matches(100, 50, true) {
		t.Errorf("texture without image handle matched")
	}
	var dummy byte
	texture.image = vk.Image(unsafe.Pointer(&dummy))
	if !texture.Matches(100, 50, true) {
		t.Errorf("matching texture rejected")
	}
	if texture.Matches(100, 50, false) {
		t.Errorf("hdr mismatch accepted")
	}
	if texture.Matches(50, 100, true) {
		t.Errorf("dimension mismatch accepted")
	}
}

func TestTransitionMasks(t *testing.T) {
	valid := [][2]vk.ImageLayout{
		{vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal},
		{vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutTransferSrcOptimal},
		{vk.ImageLayoutTransferSrcOptimal, vk.ImageLayoutTransferDstOptimal},
		{vk.ImageLayoutPresentSrc, vk.ImageLayoutTransferDstOptimal},
		{vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutPresentSrc},
	}
	for _, pair := range valid {
		_, _, src_stage, dst_stage, err := transitionMasks(pair[0], pair[1])
		if err != nil {
			t.Errorf("transition %d->%d rejected: %v", pair[0], pair[1], err)
		}
		if src_stage == 0 || dst_stage == 0 {
			t.Errorf("transition %d->%d has empty stage masks", pair[0], pair[1])
		}
	}

	if _, _, _, _, err := transitionMasks(vk.ImageLayoutGeneral, vk.ImageLayoutPresentSrc); err == nil {
		t.Errorf("unknown transition pair accepted")
	}
}

func TestTileGrid(t *testing.T) {
	tiles, tiles_x, tiles_y := tileGrid(1000, 600, 256)
	if tiles_x != 4 || tiles_y != 3 {
		t.Fatalf("grid %dx%d, want 4x3", tiles_x, tiles_y)
	}
	if len(tiles) != 12 {
		t.Fatalf("grid has %d tiles, want 12", len(tiles))
	}

	//Interior tile keeps the full tile size
	first := tiles[0]
	if first.x != 0 || first.y != 0 || first.width != 256 || first.height != 256 {
		t.Errorf("first tile %+v", first)
	}

	//Edge tiles clamp to the image bounds
	last := tiles[len(tiles)-1]
	if last.x != 768 || last.y != 512 {
		t.Errorf("last tile origin (%d,%d)", last.x, last.y)
	}
	if last.width != 1000-768 || last.height != 600-512 {
		t.Errorf("last tile size %dx%d", last.width, last.height)
	}

	for i := range tiles {
		if tiles[i].loaded {
			t.Errorf("tile %d starts loaded", i)
		}
	}

	if tiles, _, _ := tileGrid(0, 600, 256); tiles != nil {
		t.Errorf("zero width produced tiles")
	}
	if tiles, _, _ := tileGrid(600, 600, 0); tiles != nil {
		t.Errorf("zero tile size produced tiles")
	}
}
