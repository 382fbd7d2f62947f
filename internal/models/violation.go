package models

import "time"

type ViolationType string

const (
	ViolationTabSwitch      ViolationType = "tab_switch"
	ViolationWindowBlur     ViolationType = "window_blur"
	ViolationFullscreenExit ViolationType = "fullscreen_exit"
	ViolationRightClick     ViolationType = "right_click"
	ViolationCopyPaste      ViolationType = "copy_paste"
	ViolationScreenshot     ViolationType = "screenshot"
	ViolationDevTools       ViolationType = "dev_tools"
	ViolationTimeout        ViolationType = "timeout"
	ViolationOther          ViolationType = "other"
)

var ViolationTypes = []ViolationType{
	ViolationTabSwitch, ViolationWindowBlur, ViolationFullscreenExit, ViolationRightClick,
	ViolationCopyPaste, ViolationScreenshot, ViolationDevTools, ViolationTimeout, ViolationOther,
}

type ViolationEntry struct {
	Type      ViolationType `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Details   string        `json:"details"`
}
