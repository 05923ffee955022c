package tui

import "github.com/vito/progrock"

// MsgVertexStarted is sent when a package install begins.
type MsgVertexStarted struct {
	ID   string
	Name string
}

// MsgVertexCompleted is sent when a package install finishes.
type MsgVertexCompleted struct {
	ID     string
	Cached bool
	Err    error
}

// MsgTapeUpdate wraps the raw update from progrock.
type MsgTapeUpdate struct {
	Update *progrock.StatusUpdate
}

// MsgTapeEnded is sent when the tape is closed.
type MsgTapeEnded struct{}
