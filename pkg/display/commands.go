package display

import "github.com/robotalks/bluedisplay.go/pkg/protocol"

// Color is a RGB565 color.
type Color uint16

// Common colors.
const (
	ColorBlack Color = 0x0000
	ColorWhite Color = 0xFFFF
	ColorRed   Color = 0xF800
	ColorGreen Color = 0x07E0
	ColorBlue  Color = 0x001F
)

// RGB converts 8-bit channels to Color.
func RGB(r, g, b uint8) Color {
	return Color(uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b>>3))
}

// ClearDisplay fills the canvas with color.
func (d *Display) ClearDisplay(color Color) error {
	return d.SendCommand(protocol.FunctionClearDisplay, uint16(color))
}

// DrawPixel draws one pixel.
func (d *Display) DrawPixel(x, y uint16, color Color) error {
	return d.SendCommand(protocol.FunctionDrawPixel, x, y, uint16(color))
}

// DrawLine draws a line.
func (d *Display) DrawLine(x1, y1, x2, y2 uint16, color Color) error {
	return d.SendCommand(protocol.FunctionDrawLine, x1, y1, x2, y2, uint16(color))
}

// FillRect fills a rectangle given two corners.
func (d *Display) FillRect(x1, y1, x2, y2 uint16, color Color) error {
	return d.SendCommand(protocol.FunctionFillRect, x1, y1, x2, y2, uint16(color))
}

// DrawText draws a string with its upper left corner at x, y.
func (d *Display) DrawText(x, y uint16, text string, size uint16, fg, bg Color) error {
	return d.SendCommandWithPayload(protocol.FunctionDrawString,
		[]uint16{x, y, size, uint16(fg), uint16(bg)}, []byte(text))
}

// PlayTone plays a host tone.
func (d *Display) PlayTone(index uint16) error {
	return d.SendCommand(protocol.FunctionPlayTone, index)
}
