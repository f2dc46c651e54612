package viewvk

import (
	vk "github.com/vulkan-go/vulkan"
)

// InstanceExtensions gets a list of instance extensions available on the platform.
func InstanceExtensions() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceExtensionProperties("", &count, nil)
	if err = NewError(ret); err != nil {
		return nil, err
	}
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateInstanceExtensionProperties("", &count, list)
	if err = NewError(ret); err != nil {
		return nil, err
	}
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

// DeviceExtensions gets a list of device extensions available on the provided physical device.
func DeviceExtensions(gpu vk.PhysicalDevice) (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil)
	if err = NewError(ret); err != nil {
		return nil, err
	}
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateDeviceExtensionProperties(gpu, "", &count, list)
	if err = NewError(ret); err != nil {
		return nil, err
	}
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

// ValidationLayers gets a list of validation layers available on the platform.
func ValidationLayers() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceLayerProperties(&count, nil)
	if err = NewError(ret); err != nil {
		return nil, err
	}
	list := make([]vk.LayerProperties, count)
	ret = vk.EnumerateInstanceLayerProperties(&count, list)
	if err = NewError(ret); err != nil {
		return nil, err
	}
	for _, layer := range list {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, err
}

//BaseInstanceExtensions tracks the wanted and required instance extension
//sets against what the loader actually reports
type BaseInstanceExtensions struct {
	wanted   []string
	required []string
	actual   []string
}

func NewBaseInstanceExtensions(wanted []string, required []string) *BaseInstanceExtensions {
	var base BaseInstanceExtensions
	base.wanted = wanted
	base.required = required
	base.actual, _ = InstanceExtensions()
	return &base
}

func (e *BaseInstanceExtensions) HasRequired() (bool, []string) {
	missing := missingFrom(e.required, e.actual)
	return len(missing) == 0, missing
}

func (e *BaseInstanceExtensions) HasWanted() (bool, []string) {
	missing := missingFrom(e.wanted, e.actual)
	return len(missing) == 0, missing
}

//GetExtensions returns required plus the wanted extensions the platform
//actually has, without duplicates
func (e *BaseInstanceExtensions) GetExtensions() []string {
	return mergeSupported(e.required, e.wanted, e.actual)
}

//----------------Device Extensions--------------------//

type BaseDeviceExtensions struct {
	wanted   []string
	required []string
	actual   []string
}

func NewBaseDeviceExtensions(wanted []string, required []string, gpu vk.PhysicalDevice) *BaseDeviceExtensions {
	var base BaseDeviceExtensions
	base.wanted = wanted
	base.required = required
	base.actual, _ = DeviceExtensions(gpu)
	return &base
}

func (e *BaseDeviceExtensions) HasRequired() (bool, []string) {
	missing := missingFrom(e.required, e.actual)
	return len(missing) == 0, missing
}

func (e *BaseDeviceExtensions) HasWanted() (bool, []string) {
	missing := missingFrom(e.wanted, e.actual)
	return len(missing) == 0, missing
}

func (e *BaseDeviceExtensions) GetExtensions() []string {
	return mergeSupported(e.required, e.wanted, e.actual)
}

func missingFrom(requested, actual []string) []string {
	missing := []string{}
	for _, req := range requested {
		has := false
		for _, act := range actual {
			if req == act {
				has = true
				break
			}
		}
		if !has {
			missing = append(missing, req)
		}
	}
	return missing
}

func mergeSupported(required, wanted, actual []string) []string {
	implement := []string{}
	implement = append(implement, required...)
	for _, want := range wanted {
		listed := false
		for _, have := range implement {
			if want == have {
				listed = true
				break
			}
		}
		if listed {
			continue
		}
		for _, act := range actual {
			if want == act {
				implement = append(implement, want)
				break
			}
		}
	}
	return implement
}

//FindRequiredMemoryType scans the device memory types for one matching the
//type bits of an allocation and the requested property flags
func FindRequiredMemoryType(props vk.PhysicalDeviceMemoryProperties,
	typeBits uint32, hostRequirements vk.MemoryPropertyFlagBits) (uint32, bool) {

	for i := uint32(0); i < props.MemoryTypeCount; i++ {
		if typeBits&(uint32(1)<<i) != 0 {
			props.MemoryTypes[i].Deref()
			flags := props.MemoryTypes[i].PropertyFlags
			if flags&vk.MemoryPropertyFlags(hostRequirements) == vk.MemoryPropertyFlags(hostRequirements) {
				return i, true
			}
		}
	}
	return 0, false
}
