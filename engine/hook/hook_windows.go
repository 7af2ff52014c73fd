//go:build windows

package hook

import (
	"runtime"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-widget/common"
	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetKeyState         = user32.NewProc("GetKeyState")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
)

const (
	whKeyboardLL = 13

	wmQuit       = 0x0012
	wmKeyDown    = 0x0100
	wmKeyUp      = 0x0101
	wmSysKeyDown = 0x0104
	wmSysKeyUp   = 0x0105

	vkShift    = 0x10
	vkControl  = 0x11
	vkMenu     = 0x12
	vkLWin     = 0x5B
	vkRWin     = 0x5C
	vkLControl = 0xA2
	vkRControl = 0xA3
	vkLMenu    = 0xA4
	vkRMenu    = 0xA5
)

// kbdllHookStruct mirrors KBDLLHOOKSTRUCT.
type kbdllHookStruct struct {
	VKCode    uint32
	ScanCode  uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

// message mirrors MSG.
type message struct {
	HWnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

var keyboardCallback = windows.NewCallback(keyboardProc)

func keyboardProc(nCode, wParam, lParam uintptr) uintptr {
	if int32(nCode) >= 0 {
		info := (*kbdllHookStruct)(unsafe.Pointer(lParam))
		if !isModifierVK(info.VKCode) {
			if state, ok := keyState(uint32(wParam)); ok {
				deliver(Event{
					State:     state,
					Key:       KeyFromVK(info.VKCode),
					VKCode:    info.VKCode,
					Modifiers: heldModifiers(),
				})
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
	return ret
}

// modifier keys are reported through Event.Modifiers only
func isModifierVK(vk uint32) bool {
	switch vk {
	case vkShift, vkLControl, vkRControl, vkLMenu, vkRMenu, vkLWin, vkRWin:
		return true
	}
	return false
}

func keyState(msg uint32) (KeyState, bool) {
	switch msg {
	case wmKeyDown, wmSysKeyDown:
		return KeyPressed, true
	case wmKeyUp, wmSysKeyUp:
		return KeyReleased, true
	}
	return 0, false
}

func heldModifiers() common.Modifiers {
	var mods common.Modifiers
	for _, m := range []struct {
		vk  uintptr
		mod common.Modifiers
	}{
		{vkShift, common.ModShift},
		{vkControl, common.ModControl},
		{vkMenu, common.ModAlt},
		{vkLWin, common.ModSuper},
		{vkRWin, common.ModSuper},
	} {
		r, _, _ := procGetKeyState.Call(m.vk)
		if int16(r) < 0 {
			mods |= m.mod
		}
	}
	return mods
}

// arm installs the low-level hook on a dedicated locked thread that pumps messages until disarmed.
func arm() (func() error, error) {
	type armed struct {
		threadID uint32
		err      error
	}
	ready := make(chan armed, 1)
	done := make(chan struct{})

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(done)

		hhk, _, err := procSetWindowsHookExW.Call(whKeyboardLL, keyboardCallback, 0, 0)
		if hhk == 0 {
			ready <- armed{err: err}
			return
		}
		defer procUnhookWindowsHookEx.Call(hhk)
		ready <- armed{threadID: windows.GetCurrentThreadId()}

		var m message
		for {
			r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			if int32(r) <= 0 {
				return
			}
		}
	}()

	res := <-ready
	if res.err != nil {
		return nil, res.err
	}
	return func() error {
		r, _, err := procPostThreadMessageW.Call(uintptr(res.threadID), wmQuit, 0, 0)
		if r == 0 {
			return err
		}
		<-done
		return nil
	}, nil
}
