package viewvk

//Placeholder fill for hosts without a usable graphics device, RGBA
const (
	fallback_gray           = 0x40
	fallback_default_width  = 800
	fallback_default_height = 600
)

//softwareFallback is the CPU render path used when no compatible device
//exists. It keeps the application usable with a placeholder view; it does
//not attempt to display the actual image.
type softwareFallback struct {
	width  int
	height int
	buffer []byte
}

func newSoftwareFallback(width, height int) *softwareFallback {
	if width <= 0 || height <= 0 {
		width = fallback_default_width
		height = fallback_default_height
	}
	fallback := &softwareFallback{width: width, height: height}
	fallback.buffer = make([]byte, width*height*4)
	return fallback
}

//render resizes the buffer on a dimension change and repaints the
//placeholder. The window layer blits the returned buffer itself.
func (f *softwareFallback) render(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if width != f.width || height != f.height || f.buffer == nil {
		f.width = width
		f.height = height
		f.buffer = make([]byte, width*height*4)
	}
	for index := 0; index < len(f.buffer); index += 4 {
		f.buffer[index+0] = fallback_gray
		f.buffer[index+1] = fallback_gray
		f.buffer[index+2] = fallback_gray
		f.buffer[index+3] = 0xFF
	}
}
