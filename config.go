package viewvk

//Config collects the engine tunables. The zoom caps and headroom factors
//are empirical safety margins for large-surface blits, not values derived
//from a queried device limit, so they stay configurable.
type Config struct {
	//Zoom range accepted from the viewer state
	MinZoom float64
	MaxZoom float64

	//Largest blit destination dimension considered safe on common drivers
	SafeMaxViewportDim int

	//Headroom applied to the dynamic zoom cap: the stored viewer zoom uses
	//StateHeadroom, the per-frame zoom handed to Render uses RenderHeadroom
	StateHeadroom  float64
	RenderHeadroom float64

	//Frames that may be in flight at once (ring size of the fence set)
	FramesInFlight int

	//Hard caps on uploaded images
	MaxImageDim    int
	MaxImagePixels int

	//Side length threshold past which the sparse tiled path is preferred
	SparseThreshold int
	//Fallback tile edge when the device reports no usable granularity
	TileSize int
	//Upper bound on tiles in a sparse grid
	MaxTiles int
	//Per tile device allocation cap in bytes
	MaxTileAllocation int

	//Required available host memory before instance creation is attempted
	MinHostMemory uint64

	//Enables the Khronos validation layers on the instance and device
	EnableValidation bool
}

func DefaultConfig() *Config {
	return &Config{
		MinZoom:            0.1,
		MaxZoom:            8.0,
		SafeMaxViewportDim: 8192,
		StateHeadroom:      0.90,
		RenderHeadroom:     0.85,
		FramesInFlight:     2,
		MaxImageDim:        65536,
		MaxImagePixels:     67108864,
		SparseThreshold:    4096,
		TileSize:           256,
		MaxTiles:           65536,
		MaxTileAllocation:  256 * 1024 * 1024,
		MinHostMemory:      1 << 30,
	}
}

//ValidationLayers lists the layers requested when EnableValidation is set
func (c *Config) ValidationLayers() []string {
	if !c.EnableValidation {
		return []string{}
	}
	return []string{
		"VK_LAYER_KHRONOS_synchronization2",
		"VK_LAYER_KHRONOS_validation",
	}
}
