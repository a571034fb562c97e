package siproto

import (
	"os"
	"sync"
)

// identity carries the hostname/appname pair every reconnect LogHeader
// reports (spec.md §4.4). Set once by the root package at startup;
// guarded since Base reads it from writer-task or producer goroutines.
var identity struct {
	mu      sync.RWMutex
	host    string
	appName string
}

func init() {
	h, err := os.Hostname()
	if err != nil {
		h = "unknown"
	}
	identity.host = h
	identity.appName = os.Args[0]
}

// SetIdentity overrides the hostname/appname reported in reconnect
// LogHeaders. Called once by smartinspect.SmartInspect at construction.
func SetIdentity(host, appName string) {
	identity.mu.Lock()
	defer identity.mu.Unlock()
	identity.host = host
	identity.appName = appName
}

func hostname() string {
	identity.mu.RLock()
	defer identity.mu.RUnlock()
	return identity.host
}

func appname() string {
	identity.mu.RLock()
	defer identity.mu.RUnlock()
	return identity.appName
}
