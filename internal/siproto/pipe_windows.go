//go:build windows

package siproto

import (
	"context"
	"net"

	"github.com/Microsoft/go-winio"
)

// dialPipe connects to \\.\pipe\<name> via go-winio (spec.md §4.8
// "addressed as \\.\pipe\<name> on Windows-style pipe APIs").
func dialPipe(name string) (net.Conn, error) {
	return winio.DialPipeContext(context.Background(), `\\.\pipe\`+name)
}
