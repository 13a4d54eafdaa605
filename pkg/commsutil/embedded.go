package commsutil

import (
	"fmt"
	"log/slog"
	"time"

	commsserver "github.com/nats-io/nats-server/v2/server"
)

const embeddedLogPrefix = "commsutil:embedded"

// StartEmbedded starts an in-process COMMS server listening on host:port.
// Port -1 picks a random free port. The caller owns shutdown.
func StartEmbedded(host string, port int) (*commsserver.Server, error) {
	opts := &commsserver.Options{
		Host:   host,
		Port:   port,
		NoLog:  true,
		NoSigs: true,
	}

	ns, err := commsserver.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to create server: %w", embeddedLogPrefix, err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("%s - server on %s:%d not ready", embeddedLogPrefix, host, port)
	}

	slog.Info(fmt.Sprintf("%s - Embedded COMMS listening at %s", embeddedLogPrefix, ns.ClientURL()))
	return ns, nil
}

// StopEmbedded shuts ns down and waits for it to exit.
func StopEmbedded(ns *commsserver.Server) {
	if ns == nil {
		return
	}
	ns.Shutdown()
	ns.WaitForShutdown()
}
