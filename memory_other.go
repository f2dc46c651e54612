//go:build !linux && !darwin

package viewvk

//No portable probe on the remaining platforms. Zero means unknown and the
//memory floor check is skipped rather than failing spuriously.
func availableHostMemory() uint64 {
	return 0
}

func totalHostMemory() uint64 {
	return 0
}
