package dispatch

import "github.com/robotalks/bluedisplay.go/pkg/protocol"

// DefaultSwipeThreshold is the displacement in pixels a touch must exceed
// in either axis to be a swipe.
const DefaultSwipeThreshold = 10

type gesture struct {
	down    bool
	start   protocol.TouchInfo
	moved   bool // moved beyond the swipe threshold
	skipUp  bool // the next touch up is consumed
	longGen uint64
}

func (g *gesture) touchDown(pos protocol.TouchInfo) {
	g.down, g.start, g.moved, g.skipUp = true, pos, false, false
}

func (g *gesture) touchMove(pos protocol.TouchInfo, threshold int) {
	if !g.down {
		return
	}
	dx, dy := delta(g.start, pos)
	if abs(dx) > threshold || abs(dy) > threshold {
		g.moved = true
	}
}

// swipe evaluates the gesture ending at pos.
func (g *gesture) swipe(pos protocol.TouchInfo, threshold int) (info protocol.SwipeInfo, ok bool) {
	if !g.down {
		return
	}
	dx, dy := delta(g.start, pos)
	ax, ay := abs(dx), abs(dy)
	if ax <= threshold && ay <= threshold {
		return
	}
	info = protocol.SwipeInfo{
		MainDirectionIsX: ax >= ay,
		StartX:           g.start.X,
		StartY:           g.start.Y,
		DeltaX:           int16(dx),
		DeltaY:           int16(dy),
		DeltaAbsMax:      uint16(ay),
	}
	if ax >= ay {
		info.DeltaAbsMax = uint16(ax)
	}
	return info, true
}

func (g *gesture) end() {
	g.down, g.moved = false, false
}

func delta(from, to protocol.TouchInfo) (int, int) {
	return int(to.X) - int(from.X), int(to.Y) - int(from.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
