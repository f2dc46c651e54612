package viewvk

import (
	"math"
)

//blitRect is a destination rectangle in swapchain pixel coordinates
type blitRect struct {
	x0, y0 int32
	x1, y1 int32
}

//sanitizeZoom replaces a non-finite or wildly out-of-range zoom with the
//identity rather than propagating it into a blit
func sanitizeZoom(zoom float64) float64 {
	if math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		return 1.0
	}
	if zoom < 0.001 || zoom > 10.0 {
		return 1.0
	}
	return zoom
}

//rotatedDims swaps the image axes for quarter turns
func rotatedDims(width, height, rotation_degrees int) (int, int) {
	rotation := ((rotation_degrees % 360) + 360) % 360
	if rotation == 90 || rotation == 270 {
		return height, width
	}
	return width, height
}

//fitScale is the scale factor that fits the image into the surface,
//multiplied by the user zoom
func fitScale(surface_w, surface_h, image_w, image_h int, zoom float64) float64 {
	if image_w <= 0 || image_h <= 0 || surface_w <= 0 || surface_h <= 0 {
		return 0
	}
	scale := math.Min(float64(surface_w)/float64(image_w), float64(surface_h)/float64(image_h))
	return scale * zoom
}

//computeBlitRect builds the destination rectangle centered on the surface
//plus the pan offset. Returns ok=false when the float math degenerates, in
//which case the caller substitutes a one pixel rectangle at center.
func computeBlitRect(surface_w, surface_h, image_w, image_h int,
	zoom, offset_x, offset_y float64, rotation_degrees int) (blitRect, bool) {

	rot_w, rot_h := rotatedDims(image_w, image_h, rotation_degrees)
	scale := fitScale(surface_w, surface_h, rot_w, rot_h, zoom)
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return blitRect{}, false
	}

	dst_w := float64(rot_w) * scale
	dst_h := float64(rot_h) * scale
	center_x := float64(surface_w)/2 + offset_x
	center_y := float64(surface_h)/2 + offset_y

	x0 := center_x - dst_w/2
	y0 := center_y - dst_h/2
	x1 := center_x + dst_w/2
	y1 := center_y + dst_h/2

	for _, v := range []float64{x0, y0, x1, y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < math.MinInt32 || v > math.MaxInt32 {
			return blitRect{}, false
		}
	}

	return blitRect{
		x0: int32(x0), y0: int32(y0),
		x1: int32(x1), y1: int32(y1),
	}, true
}

//clampBlitRect bounds the rectangle into the surface and repairs a
//degenerate result so dst1 > dst0 always holds on both axes, which the
//blit API requires
func clampBlitRect(rect blitRect, surface_w, surface_h int32) blitRect {
	rect.x0 = clampInt32(rect.x0, 0, surface_w)
	rect.x1 = clampInt32(rect.x1, 0, surface_w)
	rect.y0 = clampInt32(rect.y0, 0, surface_h)
	rect.y1 = clampInt32(rect.y1, 0, surface_h)

	if rect.x1 <= rect.x0 {
		if rect.x0 >= surface_w {
			rect.x0 = surface_w - 1
		}
		rect.x1 = rect.x0 + 1
	}
	if rect.y1 <= rect.y0 {
		if rect.y0 >= surface_h {
			rect.y0 = surface_h - 1
		}
		rect.y1 = rect.y0 + 1
	}
	return rect
}

//centerPixelRect is the fallback destination when rectangle math fails
func centerPixelRect(surface_w, surface_h int32) blitRect {
	x := surface_w / 2
	y := surface_h / 2
	return blitRect{x0: x, y0: y, x1: x + 1, y1: y + 1}
}

func clampInt32(v, min, max int32) int32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

//dynamicZoomCap limits zoom so the blit destination cannot exceed the
//configured safe viewport dimension. The headroom factors are empirical
//margin, not a queried device limit.
func dynamicZoomCap(image_w, image_h, rotation_degrees int, cfg *Config, headroom float64) float64 {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if image_w <= 0 || image_h <= 0 {
		return cfg.MaxZoom
	}
	rot_w, rot_h := rotatedDims(image_w, image_h, rotation_degrees)
	cap_w := float64(cfg.SafeMaxViewportDim) / float64(rot_w)
	cap_h := float64(cfg.SafeMaxViewportDim) / float64(rot_h)
	zoom_cap := math.Min(cap_w, cap_h) * headroom
	if zoom_cap < cfg.MinZoom {
		zoom_cap = cfg.MinZoom
	}
	if zoom_cap > cfg.MaxZoom {
		zoom_cap = cfg.MaxZoom
	}
	return zoom_cap
}
