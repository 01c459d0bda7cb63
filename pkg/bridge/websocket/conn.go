package websocket

import (
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/bluedisplay.go/pkg/bridge"
)

// PacketReadWriter implements bridge.PacketReadWriter with one binary
// websocket message per packet.
type PacketReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *PacketReadWriter {
	return (*PacketReadWriter)(conn)
}

// ReadPacket implements bridge.PacketReader.
func (p *PacketReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &pkt)
	return
}

// WritePacket implements bridge.PacketWriter.
func (p *PacketReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), pkt)
}

// Close implements io.Closer.
func (p *PacketReadWriter) Close() error {
	return (*websocket.Conn)(p).Close()
}

// Dial connects to a websocket server and returns the byte stream.
func Dial(url, origin string) (*bridge.Stream, error) {
	conn, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, err
	}
	return bridge.NewStream(New(conn)), nil
}

// Handler returns a http.Handler accepting websocket connections. fn owns
// the stream until it returns.
func Handler(fn func(*bridge.Stream)) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		glog.Infof("websocket connected from %s", conn.Request().RemoteAddr)
		fn(bridge.NewStream(New(conn)))
		glog.Infof("websocket from %s closed", conn.Request().RemoteAddr)
	})
}
