//go:build windows

package window

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW  = user32.NewProc("FindWindowW")
	procSendMessageW = user32.NewProc("SendMessageW")
)

const wmCopyData = 0x004A

// copyDataStruct mirrors COPYDATASTRUCT.
type copyDataStruct struct {
	dwData uintptr
	cbData uint32
	lpData uintptr
}

type user32Bus struct{}

// System returns the user32 window bus.
func System() Bus { return user32Bus{} }

func (user32Bus) FindWindow(windowName, className string) (Handle, bool, error) {
	wname, err := windows.UTF16PtrFromString(windowName)
	if err != nil {
		return 0, false, fmt.Errorf("window name: %w", err)
	}
	cname, err := windows.UTF16PtrFromString(className)
	if err != nil {
		return 0, false, fmt.Errorf("class name: %w", err)
	}
	r, _, _ := procFindWindowW.Call(uintptr(unsafe.Pointer(cname)), uintptr(unsafe.Pointer(wname)))
	return Handle(r), r != 0, nil
}

func (user32Bus) Send(h Handle, env *Envelope) error {
	cds := &copyDataStruct{
		dwData: uintptr(env.Magic),
		cbData: env.Len(),
		lpData: uintptr(unsafe.Pointer(&env.name[0])),
	}
	r, _, callErr := procSendMessageW.Call(uintptr(h), wmCopyData, 0, uintptr(unsafe.Pointer(cds)))
	runtime.KeepAlive(cds)
	runtime.KeepAlive(env)
	if r == 0 {
		if callErr != nil && callErr != windows.ERROR_SUCCESS {
			return fmt.Errorf("SendMessage(WM_COPYDATA): %w", callErr)
		}
		return fmt.Errorf("SendMessage(WM_COPYDATA) returned 0")
	}
	return nil
}
