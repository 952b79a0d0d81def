package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/claude/reprx/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// reprx-mcp serves the MCP tools over stdio against a remote reprx server.
func main() {
	baseURL := flag.String("url", os.Getenv("REPRX_URL"), "base URL of the reprx server")
	pin := flag.String("pin", os.Getenv("REPRX_PIN"), "unlock PIN")
	flag.Parse()

	// stdout carries the MCP protocol, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *baseURL == "" || *pin == "" {
		fmt.Fprintf(os.Stderr, "Usage: reprx-mcp -url https://reprx.tailnet.ts.net -pin 1234\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	token, err := mcp.Unlock(ctx, *baseURL, *pin)
	cancel()
	if err != nil {
		log.Error("unlock failed", "error", err)
		os.Exit(1)
	}

	s := mcp.New(mcp.NewHTTPClient(*baseURL, token), Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
