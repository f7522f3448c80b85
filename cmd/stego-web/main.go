package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/stego-tools-mcp/internal/web"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("stego-web %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("stego-web - HTTP service for hiding text in PNG images")
			fmt.Println()
			fmt.Println("Usage: stego-web [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  PORT=5000                    Listen port")
			fmt.Println("  STEGO_DEFAULT_KEY=0x1A       Key used when a form has none")
			fmt.Println("  STEGO_ALLOWED_ORIGINS=...    Comma separated CORS origins (default: all)")
			return
		}
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := web.ConfigFromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	cfg.Version = Version

	router := web.NewRouter(cfg)

	log.Printf("stego-web v%s (built %s, commit %s) starting on port %s", Version, BuildTime, GitCommit, cfg.Port)
	log.Printf("API endpoints:")
	log.Printf("  POST /api/v1/embed    - Hide a message in a PNG (returns encoded PNG)")
	log.Printf("  POST /api/v1/extract  - Recover a hidden message")
	log.Printf("  POST /api/v1/capacity - Report how many characters a PNG can carry")
	log.Printf("  GET  /api/v1/health   - Health check")
	log.Printf("Uploads are limited to %d bytes and processed in memory", cfg.MaxUploadBytes)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
