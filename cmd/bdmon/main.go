package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/bluedisplay.go/pkg/bridge/mqtt"
	"github.com/robotalks/bluedisplay.go/pkg/tap"
)

var (
	mqttURL = "mqtt://localhost:1883/bluedisplay/"
)

func init() {
	if val := os.Getenv("BLUEDISPLAY_TAP"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}

	q.Sub("+/"+mqtt.TopicTap, mqtt.Handler(func(topic string, payload []byte) {
		msg, err := tap.Decode(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		log.Printf("%s: #%d [%s] %s", topic, msg.Sequence, msg.EventKind(), msg.String())
	}))
	q.Sub("+/"+mqtt.TopicStats, mqtt.Handler(func(topic string, payload []byte) {
		var msg tap.StatsMsg
		if err := proto.Unmarshal(payload, &msg); err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		log.Printf("%s: %s", strings.TrimSuffix(topic, "/"+mqtt.TopicStats), msg.String())
	}))
	<-(chan struct{})(nil)
}
