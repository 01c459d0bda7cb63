package device

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/robotalks/bluedisplay.go/pkg/bridge/mqtt"
	"github.com/robotalks/bluedisplay.go/pkg/bridge/websocket"
	"github.com/robotalks/bluedisplay.go/pkg/framework"
	"github.com/robotalks/bluedisplay.go/pkg/transport"
)

// Link is an opened byte stream to the host.
type Link struct {
	io.ReadWriteCloser
	Probe transport.LinkProbe
	// Runners must run while the link is used.
	Runners []framework.Runnable
}

// OpenLink opens a link described by a URL:
//
//	serial:///dev/ttyUSB0?baud=115200&paired=dsr
//	tcp://host:port
//	ws://host:port/path
//	mqtt://broker:1883/topic/prefix/
//
// For MQTT the device ID selects the topics.
func OpenLink(ctx context.Context, linkURL, deviceID string) (*Link, error) {
	u, err := url.Parse(linkURL)
	if err != nil {
		return nil, fmt.Errorf("invalid link URL: %w", err)
	}
	switch u.Scheme {
	case "serial":
		return openSerial(u)
	case "tcp":
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", u.Host)
		if err != nil {
			return nil, err
		}
		return &Link{ReadWriteCloser: conn, Probe: transport.AlwaysPaired}, nil
	case "ws", "wss":
		origin := "http://" + u.Host
		if u.Scheme == "wss" {
			origin = "https://" + u.Host
		}
		s, err := websocket.Dial(u.String(), origin)
		if err != nil {
			return nil, err
		}
		return &Link{ReadWriteCloser: s, Probe: transport.AlwaysPaired}, nil
	case "mqtt", "mqtts":
		return openMQTT(u, deviceID)
	}
	return nil, fmt.Errorf("unknown link URL scheme: %q", u.Scheme)
}

func openSerial(u *url.URL) (*Link, error) {
	conf := transport.SerialConfig{
		Device:       u.Path,
		PairedSignal: u.Query().Get("paired"),
	}
	if conf.Device == "" {
		conf.Device = u.Opaque
	}
	if baud := u.Query().Get("baud"); baud != "" {
		v, err := strconv.Atoi(baud)
		if err != nil {
			return nil, fmt.Errorf("invalid baud rate %q", baud)
		}
		conf.BaudRate = v
	}
	port, err := transport.OpenSerialPort(conf)
	if err != nil {
		return nil, err
	}
	probe, err := conf.NewLinkProbe(port)
	if err != nil {
		port.Close()
		return nil, err
	}
	return &Link{ReadWriteCloser: port, Probe: probe}, nil
}

func openMQTT(u *url.URL, deviceID string) (*Link, error) {
	brokerURL := *u
	if brokerURL.Path != "" && !strings.HasSuffix(brokerURL.Path, "/") {
		brokerURL.Path += "/"
	}
	if brokerURL.Scheme == "mqtts" {
		brokerURL.Scheme = "ssl"
	}
	q, err := mqtt.NewQueueFromURL(brokerURL.String())
	if err != nil {
		return nil, err
	}
	state := transport.NewLinkState(false)
	q.OnConnect = func(*mqtt.Queue) { state.Set(true) }
	q.OnDisconnect = func(*mqtt.Queue) { state.Set(false) }
	token := q.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	rw := mqtt.NewPacketReadWriter(q).ForDevice(deviceID)
	return &Link{
		ReadWriteCloser: &mqttStream{ReadWriter: rw.Stream(), queue: q},
		Probe:           state,
		Runners:         []framework.Runnable{framework.NamedRun("mqtt-link", rw)},
	}, nil
}

type mqttStream struct {
	io.ReadWriter
	queue *mqtt.Queue
}

func (s *mqttStream) Close() error {
	return s.queue.Close()
}
