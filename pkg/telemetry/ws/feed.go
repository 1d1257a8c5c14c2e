// Package ws serves the telemetry frame stream over websocket.
package ws

import (
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/krosbot/kros.go/pkg/slave"
)

// Feed fans response frames out to connected websocket clients. It
// implements slave.Observer; slow or dead clients are dropped rather
// than ever delaying the bus.
type Feed struct {
	lock  sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{conns: make(map[*websocket.Conn]struct{})}
}

// Handler returns an http.Handler accepting subscriber connections.
// Connections are write-only; inbound messages are discarded.
func (f *Feed) Handler() websocket.Handler {
	return func(conn *websocket.Conn) {
		f.lock.Lock()
		f.conns[conn] = struct{}{}
		n := len(f.conns)
		f.lock.Unlock()
		glog.V(1).Infof("ws: subscriber connected (%d total)", n)

		// hold the connection open until the client goes away
		var discard []byte
		for {
			if err := websocket.Message.Receive(conn, &discard); err != nil {
				break
			}
		}
		f.drop(conn)
	}
}

// Transaction implements slave.Observer.
func (f *Feed) Transaction(tx slave.Transaction) {
	f.Publish(tx.Response.Bytes())
}

// Publish sends one frame to every subscriber.
func (f *Feed) Publish(frame []byte) {
	f.lock.Lock()
	conns := make([]*websocket.Conn, 0, len(f.conns))
	for conn := range f.conns {
		conns = append(conns, conn)
	}
	f.lock.Unlock()

	for _, conn := range conns {
		if err := websocket.Message.Send(conn, frame); err != nil {
			glog.V(1).Infof("ws: dropping subscriber: %v", err)
			f.drop(conn)
		}
	}
}

func (f *Feed) drop(conn *websocket.Conn) {
	f.lock.Lock()
	delete(f.conns, conn)
	f.lock.Unlock()
	conn.Close()
}
