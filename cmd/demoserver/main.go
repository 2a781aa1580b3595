// Command demoserver starts the Webshot demo server, a set of fixture pages
// for exercising the capture API.
// Usage: go run ./cmd/demoserver [port]
// Default port: 9999
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/raysh454/webshot/internal/demoserver"
)

func main() {
	cfg := demoserver.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	fmt.Println("===========================================")
	fmt.Println("   Webshot Demo Server - Capture Targets")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("This server hosts pages that exercise the capture API:")
	fmt.Println("  /         home page with switchable revisions (diff demo)")
	fmt.Println("  /tall     4000px of content (full-page capture)")
	fmt.Println("  /probe    disagreeing height measurements (probe max)")
	fmt.Println("  /slow     content appears after two seconds (delaySeconds)")
	fmt.Println("  /growing  grows after load (height probe)")
	fmt.Println("  /meta     descriptive title (history titles)")
	fmt.Println()

	server := demoserver.NewDemoServer(cfg)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
