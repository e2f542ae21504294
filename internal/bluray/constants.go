package bluray

import "time"

// Connection defaults for Sony Blu-ray players
const (
	DefaultIRCCPort       = 50001
	DefaultPort           = 50002
	DefaultDeviceIDPrefix = "UnisonHT"
	DefaultDeviceName     = "UnisonHT"

	DefaultMaxRetries              = 3
	DefaultBackoff                 = time.Second
	DefaultRequestTimeout          = 10 * time.Second
	DefaultMaxRegistrationAttempts = 5
)

// Status API paths
const (
	StatusPath      = "/getStatus"
	CommandListPath = "/getRemoteCommandList"
	RegisterPath    = "/register"
	IRCCPath        = "/upnp/control/IRCC"
)

// The player only answers clients that look like Sony's TV SideView app.
const (
	headerDeviceID   = "X-CERS-DEVICE-ID"
	headerDeviceInfo = "X-CERS-DEVICE-INFO"

	deviceInfo = "Android4.4.2/TVSideViewForAndroid2.5.1/SM-G900V"
	userAgent  = "Dalvik/1.6.0 (Linux; U; Android 4.4.2; SM-G900V Build/KOT49H)"

	irccContentType = "text/xml; charset=utf-8"
	irccSOAPAction  = `"urn:schemas-sony-com:service:IRCC:1#X_SendIRCC"`
)

// Registration types sent to /register
const (
	registrationRenewal = "renewal"
	registrationInitial = "initial"
)

// AuthCodePrompt is shown to the operator when the player displays a pairing code.
const AuthCodePrompt = "Sony Bluray Auth Code?"

// buttonAliases maps host button names onto the player's own command names.
var buttonAliases = map[string]string{
	"SELECT":         "Confirm",
	"FASTFORWARD":    "Forward",
	"FAST-FORWARD":   "Forward",
	"FORWARD":        "Forward",
	"SKIP":           "Next",
	"REPLAY":         "Prev",
	"INSTANT_REPLAY": "Prev",
}

// Host button ids offered to UIs
const (
	ButtonSelect        = "SELECT"
	ButtonForward       = "FORWARD"
	ButtonSkip          = "SKIP"
	ButtonInstantReplay = "INSTANT_REPLAY"
)
