package pkglog

import (
	"net"
	"os"
	"sync"
)

// Sentinels used when host identity cannot be resolved. A log call must never
// fail because of a resolver hiccup.
const (
	unknownHost = "unknown-host"
	unknownIP   = "unknown-ip"
)

//nolint:gochecknoglobals // resolved once, read-only afterwards
var (
	hostOnce sync.Once
	hostName string
	hostAddr string
)

// hostIdentity returns the cached hostname and IP, resolving them on first
// use. Resolution failures degrade to sentinel values.
func hostIdentity() (string, string) {
	hostOnce.Do(func() {
		hostName = unknownHost
		hostAddr = unknownIP

		name, err := os.Hostname()
		if err != nil {
			return
		}
		hostName = name

		addrs, err := net.LookupIP(name)
		if err != nil {
			return
		}
		for _, addr := range addrs {
			if addr.IsLoopback() {
				continue
			}
			hostAddr = addr.String()
			return
		}
		if len(addrs) > 0 {
			hostAddr = addrs[0].String()
		}
	})

	return hostName, hostAddr
}
