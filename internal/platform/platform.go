// Package platform answers which runtime context the process runs in and
// converts native file URIs into ones the display surface can load.
package platform

import (
	"fmt"
	"os"
	"strings"
)

// Platform is a runtime context class.
type Platform string

const (
	// Hybrid has native filesystem and camera access.
	Hybrid Platform = "hybrid"
	// Web has no durable filesystem, only blobs and network fetch.
	Web Platform = "web"
)

// Detector reports whether the current runtime has native filesystem access.
// The answer is constant for the life of the process.
type Detector interface {
	IsHybrid() bool
}

type static Platform

func (s static) IsHybrid() bool { return Platform(s) == Hybrid }

// Static returns a Detector that always reports p.
func Static(p Platform) Detector { return static(p) }

// Parse validates a platform name. The empty string is not accepted.
func Parse(name string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(name))) {
	case Hybrid:
		return Hybrid, nil
	case Web:
		return Web, nil
	}
	return "", fmt.Errorf("unknown platform %q", name)
}

// Detect picks the platform for this process. An explicit name wins.
// Otherwise the runtime is hybrid when dataDir exists (or can be created)
// and is writable.
func Detect(name, dataDir string) (Platform, error) {
	if name != "" {
		return Parse(name)
	}
	if dataDir == "" {
		return Web, nil
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return Web, nil
	}
	probe, err := os.CreateTemp(dataDir, ".probe-*")
	if err != nil {
		return Web, nil
	}
	probe.Close()
	os.Remove(probe.Name())
	return Hybrid, nil
}
