package protocol

const (
	// SyncToken opens every command frame and closes every event frame.
	SyncToken byte = 0xA5
	// DataFieldTag tags the payload sub-block of a command frame.
	DataFieldTag byte = 0x60

	// MaxArgs is the maximum number of 16-bit arguments in a command.
	MaxArgs = 12
	// MaxPayloadSize is the maximum payload of an event frame.
	// It bounds the static receive buffer.
	MaxPayloadSize = 24
	// MaxDataFieldSize is the maximum payload of a command data field.
	MaxDataFieldSize = 0xFFFF

	// CommandHeaderSize is the size of [token][function][len LE16].
	CommandHeaderSize = 4
	// EventOverhead is the number of bytes of an event frame besides payload.
	EventOverhead = 3
)

// FunctionID identifies a command executed by the host.
type FunctionID byte

// Function IDs used by the protocol engine itself. Drawing functions are
// opaque to the codec and defined by the drawing layer.
const (
	FunctionGlobalSettings       FunctionID = 0x08
	FunctionSensorSettings       FunctionID = 0x09
	FunctionPlayTone             FunctionID = 0x0A
	FunctionRequestMaxCanvasSize FunctionID = 0x0C
	FunctionClearDisplay         FunctionID = 0x10
	FunctionDrawDisplay          FunctionID = 0x11
	FunctionDrawPixel            FunctionID = 0x14
	FunctionDrawLine             FunctionID = 0x20
	FunctionFillRect             FunctionID = 0x25
	FunctionDrawString           FunctionID = 0x60
	FunctionGetNumber            FunctionID = 0x64
)

// Sub functions of FunctionGlobalSettings.
const (
	SubSetFlagsAndSize          uint16 = 0x00
	SubSetCodepage              uint16 = 0x01
	SubSetLongTouchDownTimeout  uint16 = 0x08
	SubSetScreenOrientationLock uint16 = 0x0C
)

// Flags for SubSetFlagsAndSize.
const (
	FlagFirstResetAll     uint16 = 0x01
	FlagTouchBasicDisable uint16 = 0x02
	FlagTouchMoveDisable  uint16 = 0x04
	FlagLongTouchEnable   uint16 = 0x08
	FlagUseMaxSize        uint16 = 0x10
)

// SensorType is the type of a host sensor, as in Android Sensor.TYPE_*.
type SensorType byte

// Common sensor types.
const (
	SensorAccelerometer SensorType = 1
	SensorMagneticField SensorType = 2
	SensorOrientation   SensorType = 3
	SensorGyroscope     SensorType = 4
	SensorLight         SensorType = 5
	SensorGravity       SensorType = 9
)

// SensorRate is the sampling rate requested from the host.
type SensorRate uint16

// Sensor rates, as in Android SensorManager.SENSOR_DELAY_*.
const (
	SensorRateFastest SensorRate = 0
	SensorRateGame    SensorRate = 1
	SensorRateUI      SensorRate = 2
	SensorRateNormal  SensorRate = 3
)

// SensorFilter selects host side filtering of sensor values.
type SensorFilter uint16

// Sensor filters.
const (
	SensorFilterNone SensorFilter = 0
	SensorFilterAvg2 SensorFilter = 1
)
