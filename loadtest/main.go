package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"lbry-tech/internal/message"
)

const (
	DefaultWSURL = "ws://localhost:8080/ws"
	ClientCount  = 500 // ⚠️ Start small. Every homepage landing triggers a feed refresh upstream.
	MsgCount     = 20  // Messages per client
)

var (
	sent     atomic.Int64
	received atomic.Int64
	failed   atomic.Int64
)

func main() {
	wsURL := flag.String("url", DefaultWSURL, "websocket endpoint")
	clients := flag.Int("clients", ClientCount, "concurrent connections")
	msgs := flag.Int("msgs", MsgCount, "messages per connection")
	flag.Parse()

	log.Printf("🔥 STARTING STRESS TEST: %d clients, %d messages each...", *clients, *msgs)
	start := time.Now()
	var wg sync.WaitGroup

	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runClient(*wsURL, id, *msgs)
		}(i)
	}

	wg.Wait()
	log.Printf("✅ LOAD TEST COMPLETE in %s: sent=%d received=%d failed=%d",
		time.Since(start).Round(time.Millisecond), sent.Load(), received.Load(), failed.Load())
}

// runClient alternates homepage landings (which answer with the feed when
// Redis is configured) and invalid subscriptions (which always answer).
func runClient(wsURL string, id, msgs int) {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Printf("❌ WS Connect Fail [%d]: %v", id, err)
		failed.Add(1)
		return
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var env message.Envelope
			if json.Unmarshal(data, &env) == nil {
				received.Add(1)
			}
		}
	}()

	for i := 0; i < msgs; i++ {
		var msg map[string]any
		if i%2 == 0 {
			msg = map[string]any{"message": message.TagHomepageLanded}
		} else {
			msg = map[string]any{"message": message.TagSubscribe, "email": fmt.Sprintf("not-an-email-%d-%d", id, i)}
		}
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("❌ Send Fail [%d]: %v", id, err)
			failed.Add(1)
			break
		}
		sent.Add(1)
		// Small sleep to prevent instant localhost bottleneck (simulate real network)
		time.Sleep(10 * time.Millisecond)
	}

	<-done
}
