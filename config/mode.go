package config

import (
	"fmt"
	"strings"
)

// RunMode decides whether a human is at the keyboard. It is resolved once at
// startup and handed to the components that care.
type RunMode string

const (
	// ModeHeadless runs without a visible window; challenges are fatal.
	ModeHeadless RunMode = "headless"
	// ModeInteractive opens a headed browser and waits for manual challenge solving.
	ModeInteractive RunMode = "interactive"
)

func ParseRunMode(s string) (RunMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "headless", "ci":
		return ModeHeadless, nil
	case "interactive", "headed":
		return ModeInteractive, nil
	default:
		return "", fmt.Errorf("unknown run mode %q (want headless or interactive)", s)
	}
}

func (m RunMode) Interactive() bool {
	return m == ModeInteractive
}

func (m RunMode) Headless() bool {
	return m != ModeInteractive
}
