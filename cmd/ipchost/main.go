// Package main is the entrypoint for the ipc-host.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/morezero/ipc-bridge/internal/config"
	"github.com/morezero/ipc-bridge/internal/server"
	"github.com/morezero/ipc-bridge/pkg/channel"
)

const usage = `Usage: ipchost [command]

Commands:
  serve       (default) Start the host (NATS, IPC handlers, HTTP health).
  channels    Print the channel contract (version, invoke and notify tables) as JSON.
  config      Load and validate configuration from the environment, then exit.

Environment:
  COMMS_URL             NATS URL when not embedded (default nats://127.0.0.1:4222)
  SERVICE_NAME          NATS connection name and app name (default ipc-host)
  COMMS_EMBEDDED        Run NATS in-process (default false)
  COMMS_EMBEDDED_HOST   Embedded NATS listen host (default 127.0.0.1)
  COMMS_EMBEDDED_PORT   Embedded NATS listen port, -1 for random (default 4222)
  IPC_SUBJECT_PREFIX    Subject prefix for all bridge traffic (default ipc)
  VITE_DEV_SERVER_URL   Trust this dev server origin instead of the packaged app
  IPC_APP_SCHEME        Packaged app URL scheme (default app)
  IPC_FAILURE_POLICY    asymmetric, contain-all or propagate-all (default asymmetric)
  IPC_SETTINGS_FILE     Initial settings JSON (default config/settings.json, settings.json)
  HTTP_PORT             Health endpoint port, 0 disables (default 8080)
  HEALTH_CHECK_TIMEOUT  Shutdown grace period (default 5s)
  LOG_LEVEL             debug, info, warn or error (default info)
  LOG_FORMAT            text or json (default text)
`

func main() {
	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 && args[0] != "" {
		cmd = args[0]
	}

	switch cmd {
	case "channels":
		if err := runChannels(os.Stdout); err != nil {
			log.Fatalf("ipchost channels: %v", err)
		}
		return
	case "config":
		if err := runConfig(); err != nil {
			log.Fatalf("ipchost config: %v", err)
		}
		fmt.Println("ok")
		return
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	case "serve", "":
		// serve (explicit or default)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q.\n%s", cmd, usage)
		os.Exit(1)
	}

	if err := server.Run(); err != nil {
		log.Fatalf("ipchost: %v", err)
	}
}

func runChannels(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(channel.Describe())
}

func runConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return cfg.Validate()
}
