package channel

// ContractVersion is bumped on the major when a channel is removed or its types
// change incompatibly, and on the minor when channels are added.
const ContractVersion = "1.1.0"

// NoArgs is the argument tuple of channels that take no arguments.
type NoArgs struct{}

// NoResult is the return type of channels that reply with nothing.
type NoResult struct{}

// AppInfos identifies the running host application.
type AppInfos struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// SettingKey selects one application setting.
type SettingKey struct {
	Key string `json:"key"`
}

// Setting is one application setting and its value.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// MessageDialog asks the host to show a native message box.
type MessageDialog struct {
	Type    string   `json:"type"`
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Buttons []string `json:"buttons,omitempty"`
}

// DialogResult is the index of the button the user picked.
type DialogResult struct {
	Response int `json:"response"`
}

// ProjectFile asks the renderer to open a project.
type ProjectFile struct {
	FilePath string `json:"filePath"`
	Confirm  bool   `json:"confirm"`
}

// Invoke channels.
var (
	GetAppInfos       = defineInvoke[NoArgs, AppInfos]("GET_APP_INFOS")
	GetSetting        = defineInvoke[SettingKey, Setting]("GET_SETTING")
	SetSetting        = defineInvoke[Setting, Setting]("SET_SETTING")
	ShowMessageDialog = defineInvoke[MessageDialog, DialogResult]("SHOW_MESSAGE_DIALOG")
	OpenLogDirectory  = defineInvoke[NoArgs, NoResult]("OPEN_LOG_DIRECTORY")
)

// Notify channels.
var (
	DetectMaximized       = defineNotify[NoArgs]("DETECT_MAXIMIZED")
	DetectUnmaximized     = defineNotify[NoArgs]("DETECT_UNMAXIMIZED")
	DetectEnterFullscreen = defineNotify[NoArgs]("DETECT_ENTER_FULLSCREEN")
	DetectLeaveFullscreen = defineNotify[NoArgs]("DETECT_LEAVE_FULLSCREEN")
	LoadProjectFile       = defineNotify[ProjectFile]("LOAD_PROJECT_FILE")
	SettingChanged        = defineNotify[Setting]("SETTING_CHANGED")
)
