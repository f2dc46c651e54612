package viewvk

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

//Instructional text shown while no image is loaded
var overlay_lines = []string{
	"No image loaded",
	"Open an image file to begin",
	"Arrow keys switch images, +/- zoom, R rotates",
}

//Background matches the plain clear used when the raster path fails
var overlay_background = color.RGBA{R: 26, G: 26, B: 51, A: 255}

//renderOverlayPixels rasterizes the instruction card into a tightly packed
//RGBA buffer of width*height*4 bytes on the CPU. The result is uploaded
//once per surface size and blitted onto the swapchain image until a real
//image replaces it.
func renderOverlayPixels(width, height int) []byte {
	if width <= 0 || height <= 0 {
		return nil
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(overlay_background), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	line_height := face.Metrics().Height.Ceil() + 4
	total := line_height * len(overlay_lines)
	start_y := (height-total)/2 + face.Metrics().Ascent.Ceil()

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.RGBA{R: 220, G: 220, B: 230, A: 255}),
		Face: face,
	}
	for index, line := range overlay_lines {
		text_width := drawer.MeasureString(line).Ceil()
		x := (width - text_width) / 2
		if x < 0 {
			x = 0
		}
		drawer.Dot = fixed.P(x, start_y+index*line_height)
		drawer.DrawString(line)
	}

	//image.RGBA strides row-major with no padding at these bounds, so the
	//pixel slice already satisfies the upload contract
	return canvas.Pix
}
