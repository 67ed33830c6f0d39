package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	ws "codeberg.org/todoai/server/internal/websocket"
)

// line-oriented to-do chat over the websocket endpoint
func main() {
	_ = godotenv.Load() //nolint:errcheck // .env is optional

	endpoint := flag.String("endpoint", envOr("TODOAI_WS_ENDPOINT", "ws://localhost:8080/api/v1/todo/ws"), "websocket URL")
	sessionID := flag.String("session", "", "to-do session to attach to")
	token := flag.String("token", os.Getenv("TODOAI_TOKEN"), "bearer token")
	flag.Parse()

	u, err := url.Parse(*endpoint)
	if err != nil {
		log.Fatalf("invalid endpoint: %v", err)
	}

	if *sessionID != "" {
		q := u.Query()
		q.Set("session_id", *sessionID)
		u.RawQuery = q.Encode()
	}

	header := http.Header{}
	if *token != "" {
		header.Set("Authorization", "Bearer "+*token)
	}

	fmt.Printf("connecting to %s\n", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer c.Close() //nolint:errcheck

	fmt.Println("connected. type an update and press enter.")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			var msg ws.Message
			if err := c.ReadJSON(&msg); err != nil {
				log.Println("read:", err)
				return
			}
			printMessage(msg)
		}
	}()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			if err := c.WriteJSON(ws.Message{Type: ws.TypeUpdate, Update: line}); err != nil {
				log.Println("write:", err)
				return
			}
		}
	}()

	select {
	case <-done:
		return
	case <-interrupt:
		fmt.Println("\nclosing connection...")

		err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if err != nil {
			log.Println("write close:", err)
			return
		}
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

func printMessage(msg ws.Message) {
	switch msg.Type {
	case ws.TypeResponse:
		fmt.Printf("\n%s\n", msg.Content)
		if msg.State != nil {
			state, _ := json.MarshalIndent(msg.State, "", "  ") //nolint:errcheck
			fmt.Printf("%s\n", state)
		}

	case ws.TypeError:
		fmt.Printf("error (%s): %s\n", msg.Error, msg.Message)

	case ws.TypeServerShutdown:
		fmt.Printf("server shutting down: %s\n", msg.Message)

	default:
		fmt.Printf("%s: %+v\n", msg.Type, msg)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
