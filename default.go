package smartinspect

import "sync"

var (
	defaultMu sync.RWMutex
	defaultSI *SmartInspect
)

// InitDefault builds the package-level default instance from a
// connections string, the way src/minilog's Init() builds the
// package-level logger set from flags. Safe to call again after
// CloseDefault.
func InitDefault(appName, connections string) error {
	si := New(appName)
	if err := si.SetConnections(connections); err != nil {
		return err
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultSI = si
	return nil
}

// Default returns the package-level instance set up by InitDefault, or
// nil if InitDefault was never called (or CloseDefault was called
// since).
func Default() *SmartInspect {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultSI
}

// CloseDefault stops the default instance's protocols and clears it.
func CloseDefault() {
	defaultMu.Lock()
	si := defaultSI
	defaultSI = nil
	defaultMu.Unlock()

	if si != nil {
		si.Close()
	}
}
