// Command demoserver starts the Miru demo site for exercising audits.
// Usage: go run ./cmd/demoserver [port]
// Default port: 9999
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/raysh454/miru/internal/demoserver"
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
	fmt.Println("   Miru Demo Site - Accessibility Demo")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Every page on this site exists in a defective version")
	fmt.Println("and a repaired one, switchable on the fly from the")
	fmt.Println("control panel. Audit a page, bump its version, audit")
	fmt.Println("again and diff the two runs to see findings resolve.")
	fmt.Println()
	fmt.Println("Defects on show:")
	fmt.Println("  - Images without alt text (/gallery)")
	fmt.Println("  - Headings faked with styled paragraphs (/article)")
	fmt.Println("  - Low-contrast fine print (/pricing)")
	fmt.Println("  - Invalid roles and empty icon buttons (/search)")
	fmt.Println("  - Broken keyboard access (/tools)")
	fmt.Println("  - Divs as buttons, layout tables (/dashboard)")
	fmt.Println("  - Missing document language (/welcome)")
	fmt.Println()

	server := demoserver.NewDemoServer(cfg)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
