// Command linehook-tap connects to a running bot's debug tap and prints
// every webhook payload as indented JSON.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/RodrimaradoPT/linehook/line"
	"github.com/RodrimaradoPT/linehook/tap"
)

func main() {
	url := envOr("LINEHOOK_TAP_URL", "ws://127.0.0.1:18081")
	token := os.Getenv("LINEHOOK_TAP_TOKEN")

	client := tap.NewClient(url, token)
	if err := client.Connect(); err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer client.Close()

	log.Printf("watching %s", url)
	for {
		var payload line.Payload
		if err := client.Next(&payload); err != nil {
			log.Fatalf("read: %v", err)
		}

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			log.Printf("marshal payload: %v", err)
			continue
		}
		fmt.Println(string(data))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
