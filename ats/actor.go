package ats

import (
	"fmt"
	"os"
)

// ActorDetector names the actor for attestations created without one.
type ActorDetector interface {
	DefaultActor() string
}

// DefaultActorDetector attributes attestations to the person at the
// terminal, as "human:user@host", which ranks at human credibility.
type DefaultActorDetector struct {
	// FallbackUser is used if the system username cannot be determined
	FallbackUser string
}

// DefaultActor returns "human:user@host" from USER/USERNAME and the hostname.
func (d *DefaultActorDetector) DefaultActor() string {
	username := getEnv("USER", getEnv("USERNAME", ""))
	if username == "" {
		username = d.FallbackUser
	}
	if username == "" {
		username = "unknown"
	}
	return formatActor(username, getHostname("localhost"))
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getHostname(fallback string) string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		return fallback
	}
	return hostname
}

func formatActor(username, hostname string) string {
	return fmt.Sprintf("human:%s@%s", username, hostname)
}
