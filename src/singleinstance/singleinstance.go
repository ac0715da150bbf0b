package singleinstance

// This file defines the API for single-instance ownership and command delegation.

import (
	"context"
)

// Kind identifies what a delegating client wants the resident to do.
type Kind int

const (
	// KindSnap asks the resident to run one interactive snapshot.
	KindSnap Kind = iota
	// KindRecord asks the resident to toggle a screen recording.
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindSnap:
		return "SNAP"
	case KindRecord:
		return "RECORD"
	}
	return "UNKNOWN"
}

// Server owns the TCP endpoint and answers delegated commands.
type Server interface {
	// Start begins listening on the start port of the configured range and accepting client requests.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection and exposes request + response API.
type Conn interface {
	// Request returns the parsed client request.
	Request() Request
	// RespondSuccess sends success with the resulting output path (may be
	// empty for a record toggle that started a recording).
	RespondSuccess(text string) error
	// RespondError sends an error with human-readable message.
	RespondError(msg string) error
	// Close closes the underlying connection.
	Close() error
}

// Request represents a single delegated client command.
type Request struct {
	Kind Kind
}

// Client attempts to delegate a command to a resident server.
type Client interface {
	// TryDelegate scans the configured TCP range, performs a handshake, and
	// hands the command to the resident. If no resident is found, returns
	// delegated=false, err=nil.
	TryDelegate(ctx context.Context, kind Kind) (delegated bool, reply string, err error)
}

// NewServer returns TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns TCP implementation.
func NewClient() Client { return newTcpClient() }
