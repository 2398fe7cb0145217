package midi

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"kitchen-party/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// ErrPortScanTimeout is returned when the MIDI backend doesn't answer
var ErrPortScanTimeout = errors.New("midi: port scan timed out")

const scanTimeout = 3 * time.Second

// Ports is a snapshot of the system's MIDI ports
type Ports struct {
	In  []string
	Out []string
}

// ListPorts returns the current port names. CoreMIDI can hang, so the scan
// gives up after a few seconds or when ctx is done.
func ListPorts(ctx context.Context) (Ports, error) {
	ch := make(chan Ports, 1)
	go func() {
		var p Ports
		for _, in := range gomidi.GetInPorts() {
			p.In = append(p.In, in.String())
		}
		for _, out := range gomidi.GetOutPorts() {
			p.Out = append(p.Out, out.String())
		}
		ch <- p
	}()

	select {
	case p := <-ch:
		return p, nil
	case <-ctx.Done():
		return Ports{}, ctx.Err()
	case <-time.After(scanTimeout):
		return Ports{}, ErrPortScanTimeout
	}
}

// PortEvent is emitted when a routed output port appears or goes away
type PortEvent struct {
	Output    string // logical output
	Port      string
	Connected bool
}

// PortManager watches the routed output ports and keeps the router's cache
// honest across hot-plug.
type PortManager struct {
	router *Router
	list   func(ctx context.Context) (Ports, error)

	mu        sync.RWMutex
	connected map[string]bool // by port name

	events   chan PortEvent
	pollRate time.Duration
}

// NewPortManager creates a watcher for the router's routes
func NewPortManager(router *Router) *PortManager {
	return &PortManager{
		router:    router,
		list:      ListPorts,
		connected: make(map[string]bool),
		events:    make(chan PortEvent, 16),
		pollRate:  time.Second,
	}
}

// Events returns a channel of connect/disconnect events
func (pm *PortManager) Events() <-chan PortEvent {
	return pm.events
}

// Connected reports whether a logical output's port is present
func (pm *PortManager) Connected(output string) bool {
	route, ok := pm.router.Route(output)
	if !ok {
		return false
	}
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.connected[route.Port]
}

// Run starts the polling loop (blocking - run in goroutine)
func (pm *PortManager) Run(ctx context.Context) {
	ticker := time.NewTicker(pm.pollRate)
	defer ticker.Stop()

	// Initial scan
	pm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			close(pm.events)
			return
		case <-ticker.C:
			pm.scan(ctx)
		}
	}
}

func (pm *PortManager) scan(ctx context.Context) {
	ports, err := pm.list(ctx)
	if err != nil {
		// backend hung or shutting down - skip this scan
		debug.Log("midi", "port scan: %v", err)
		return
	}

	// logical outputs grouped by port, sorted for stable event order
	byPort := make(map[string][]string)
	for name, route := range pm.router.routes {
		byPort[route.Port] = append(byPort[route.Port], name)
	}
	portNames := make([]string, 0, len(byPort))
	for p := range byPort {
		portNames = append(portNames, p)
		sort.Strings(byPort[p])
	}
	sort.Strings(portNames)

	for _, p := range portNames {
		present := PortPresent(ports.Out, p)

		pm.mu.Lock()
		was, seen := pm.connected[p]
		pm.connected[p] = present
		pm.mu.Unlock()

		if seen && was == present {
			continue
		}
		if !present {
			pm.router.Forget(p)
		}
		if !seen && !present {
			debug.Log("midi", "port %q not present", p)
		}
		for _, output := range byPort[p] {
			pm.emit(PortEvent{Output: output, Port: p, Connected: present})
		}
	}
}

// emit never blocks the scan; a slow UI just misses a status update
func (pm *PortManager) emit(ev PortEvent) {
	select {
	case pm.events <- ev:
	default:
		debug.Log("midi", "port event dropped: %+v", ev)
	}
}

// PortPresent reports whether an output port matches name, exactly or by
// case-insensitive substring
func PortPresent(outs []string, name string) bool {
	for _, o := range outs {
		if o == name {
			return true
		}
	}
	for _, o := range outs {
		if containsCI(o, name) {
			return true
		}
	}
	return false
}
