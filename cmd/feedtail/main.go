// Command feedtail connects to the live post feed and prints every event.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agora/internal/notifications"

	"github.com/gorilla/websocket"
)

func main() {
	addr := flag.String("addr", "localhost:5000", "API host:port")
	secure := flag.Bool("tls", false, "Use wss://")
	raw := flag.Bool("raw", false, "Print raw frames instead of decoded events")
	flag.Parse()

	scheme := "ws"
	if *secure {
		scheme = "wss"
	}
	u := url.URL{Scheme: scheme, Host: *addr, Path: "/api/ws"}
	log.Printf("Connecting to %s", u.String())

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer func() { _ = conn.Close() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Printf("Read error: %v", err)
				}
				return
			}
			if *raw {
				log.Println(string(msg))
				continue
			}
			var evt notifications.Event
			if err := json.Unmarshal(msg, &evt); err != nil || evt.Type == "" {
				log.Printf("? %s", msg)
				continue
			}
			log.Printf("%-24s post=%s at=%s", evt.Type, evt.PostID, evt.Timestamp.Format(time.RFC3339))
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-done:
	case <-interrupt:
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}
