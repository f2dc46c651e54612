package viewvk

import (
	"fmt"
	"runtime"

	vk "github.com/vulkan-go/vulkan"
)

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

//NewError wraps a non-success vk.Result with the caller location so the
//diagnostic log can point back at the failing call site
func NewError(ret vk.Result) error {
	if ret != vk.Success {
		pc, file, line, ok := runtime.Caller(1)
		if !ok {
			return fmt.Errorf("vulkan error: %s (%d)",
				vk.Error(ret).Error(), ret)
		}
		frame := newStackFrame(pc, file, line)
		return fmt.Errorf("vulkan error: %s (%d) on %s",
			vk.Error(ret).Error(), ret, frame.String())
	}
	return nil
}

type stackFrame struct {
	function string
	file     string
	line     int
}

func newStackFrame(pc uintptr, file string, line int) stackFrame {
	frame := stackFrame{file: file, line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		frame.function = fn.Name()
	}
	return frame
}

func (s stackFrame) String() string {
	return fmt.Sprintf("%s (%s:%d)", s.function, s.file, s.line)
}

func checkErr(err *error) {
	if v := recover(); v != nil {
		*err = fmt.Errorf("%+v", v)
	}
}

func safeString(s string) string {
	if len(s) == 0 {
		return "\x00"
	}
	if s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

func safeStrings(list []string) []string {
	for i := range list {
		list[i] = safeString(list[i])
	}
	return list
}

func checkExisting(actual, required []string) (existing []string, missing int) {
	for _, want := range required {
		found := false
		for _, have := range actual {
			if want == have {
				existing = append(existing, want)
				found = true
				break
			}
		}
		if !found {
			missing++
		}
	}
	return existing, missing
}
