// krosmon watches peripheral telemetry on an MQTT broker and prints
// status documents and decoded response frames.
package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/krosbot/kros.go/pkg/payload"
	"github.com/krosbot/kros.go/pkg/telemetry"
)

var mqttURL = "mqtt://localhost:1883/kros/"

func init() {
	if val := os.Getenv("KROS_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := telemetry.NewQueue(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if err := q.Connect(); err != nil {
		log.Fatalln(err)
	}

	q.Sub("#", func(topic string, data []byte) {
		switch {
		case strings.HasSuffix(topic, "/status"):
			log.Printf("%s: %s", topic, string(data))
		case strings.HasSuffix(topic, "/frames"):
			pkt, err := payload.FromBytes(data)
			if err != nil {
				log.Printf("%s: bad frame: %v", topic, err)
				return
			}
			log.Printf("%s: %v", topic, pkt)
		default:
			log.Printf("%s: %d bytes", topic, len(data))
		}
	})
	<-(chan struct{})(nil)
}
