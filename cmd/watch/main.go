// watch: tail the status stream of a running wakeguard instance.
//
// Connects to the dashboard's status websocket and prints each session
// snapshot as it is published.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

var addr = flag.String("addr", "localhost:8080", "wakeguard dashboard host:port")

func main() {
	flag.Parse()

	url := fmt.Sprintf("ws://%s/ws/status", *addr)
	fmt.Printf("Connecting to %s...\n", url)

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connect failed: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		conn.Close()
		os.Exit(0)
	}()

	fmt.Println("Connected. Waiting for snapshots (Ctrl+C to stop)")

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Read failed: %v\n", err)
			os.Exit(1)
		}
		if msgType != websocket.TextMessage {
			continue
		}
		fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05"), data)
	}
}
