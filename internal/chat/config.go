package chat

import "time"

// Config tunes the per-connection pumps.
type Config struct {
	// MaxMessageSize caps an inbound frame; larger frames end the session.
	MaxMessageSize int64
	// SendBufferSize is the number of outbound messages a member may have
	// queued before it is evicted from its room.
	SendBufferSize int
	// WriteWait bounds every frame written to a peer.
	WriteWait time.Duration
	// PongWait is how long a peer may stay silent before it is dropped.
	PongWait time.Duration
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		MaxMessageSize: 512,
		SendBufferSize: 256,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
	}
}

func (c Config) sanitize() Config {
	defaults := DefaultConfig()
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = defaults.MaxMessageSize
	}
	if c.SendBufferSize <= 0 {
		c.SendBufferSize = defaults.SendBufferSize
	}
	if c.WriteWait <= 0 {
		c.WriteWait = defaults.WriteWait
	}
	if c.PongWait <= 0 {
		c.PongWait = defaults.PongWait
	}
	return c
}

// pingPeriod keeps pings comfortably inside the peer's pong deadline.
func (c Config) pingPeriod() time.Duration {
	return c.PongWait * 9 / 10
}
