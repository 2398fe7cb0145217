package midi

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"kitchen-party/config"
	"kitchen-party/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// port is an opened output
type port struct {
	send  func(msg gomidi.Message) error
	close func() error
}

// opener opens an output port by name
type opener func(name string) (port, error)

// Router sends notes from logical outputs to MIDI ports. Ports are opened on
// first use and kept open. Failures are logged and dropped: the show goes on
// if a lighting desk is unplugged.
type Router struct {
	routes map[string]config.Route

	open    opener
	ports   map[string]port
	portsMu sync.RWMutex

	sent    atomic.Uint64
	dropped atomic.Uint64
}

// NewRouter creates a router for the configured routes
func NewRouter(cfg *config.Config) *Router {
	routes := make(map[string]config.Route, len(config.Outputs))
	for _, name := range config.Outputs {
		routes[name] = cfg.Route(name)
	}
	for name, r := range cfg.Routes {
		routes[name] = r
	}
	return &Router{
		routes: routes,
		open:   openOutPort,
		ports:  make(map[string]port),
	}
}

// Output returns the logical output with the given name
func (r *Router) Output(name string) *Output {
	return &Output{router: r, name: name}
}

// Route returns where a logical output is sent
func (r *Router) Route(name string) (config.Route, bool) {
	route, ok := r.routes[name]
	return route, ok
}

// Stats returns how many messages were sent and dropped
func (r *Router) Stats() (sent, dropped uint64) {
	return r.sent.Load(), r.dropped.Load()
}

// Send delivers one event on a logical output
func (r *Router) Send(name string, ev Event) {
	route, ok := r.routes[name]
	if !ok {
		r.drop(name, ev, fmt.Errorf("no route"))
		return
	}

	p, err := r.getPort(route.Port)
	if err != nil {
		r.drop(name, ev, err)
		return
	}

	if err := p.send(ev.Message()); err != nil {
		r.drop(name, ev, err)
		// reopen on next send
		r.Forget(route.Port)
		return
	}
	r.sent.Add(1)
	debug.Log("midi", "%s -> %s: %s", name, route.Port, ev)
}

func (r *Router) drop(name string, ev Event, err error) {
	r.dropped.Add(1)
	debug.Log("midi", "dropped %s %s: %v", name, ev, err)
}

// getPort returns an open port, lazily opening it
func (r *Router) getPort(name string) (port, error) {
	r.portsMu.RLock()
	if p, ok := r.ports[name]; ok {
		r.portsMu.RUnlock()
		return p, nil
	}
	r.portsMu.RUnlock()

	r.portsMu.Lock()
	defer r.portsMu.Unlock()

	// Double-check after acquiring write lock
	if p, ok := r.ports[name]; ok {
		return p, nil
	}

	p, err := r.open(name)
	if err != nil {
		return port{}, err
	}
	r.ports[name] = p
	debug.Log("midi", "opened output %q", name)
	return p, nil
}

// Forget closes a cached port so the next send reopens it. Used when a port
// disappears or a send fails.
func (r *Router) Forget(name string) {
	r.portsMu.Lock()
	defer r.portsMu.Unlock()
	if p, ok := r.ports[name]; ok {
		if p.close != nil {
			p.close()
		}
		delete(r.ports, name)
	}
}

// Close closes every opened port
func (r *Router) Close() error {
	r.portsMu.Lock()
	defer r.portsMu.Unlock()
	var firstErr error
	for name, p := range r.ports {
		if p.close != nil {
			if err := p.close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("close %q: %w", name, err)
			}
		}
		delete(r.ports, name)
	}
	return firstErr
}

// openOutPort finds an output by exact name, then by case-insensitive
// substring (ALSA decorates names with client numbers)
func openOutPort(name string) (port, error) {
	outs := gomidi.GetOutPorts()
	match := -1
	for i, p := range outs {
		if p.String() == name {
			match = i
			break
		}
	}
	if match < 0 {
		for i, p := range outs {
			if containsCI(p.String(), name) {
				match = i
				break
			}
		}
	}
	if match < 0 {
		return port{}, fmt.Errorf("output port %q not found", name)
	}

	out := outs[match]
	send, err := gomidi.SendTo(out)
	if err != nil {
		return port{}, fmt.Errorf("open output %q: %w", name, err)
	}
	return port{send: send, close: out.Close}, nil
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// Output is one logical output. It satisfies trigger.Sink.
type Output struct {
	router *Router
	name   string
}

// Name returns the logical output name
func (o *Output) Name() string {
	return o.name
}

func (o *Output) NoteOn(note, velocity int) {
	o.note(NoteOn, note, velocity)
}

func (o *Output) NoteOff(note, velocity int) {
	o.note(NoteOff, note, velocity)
}

func (o *Output) note(typ uint8, note, velocity int) {
	route, _ := o.router.Route(o.name)
	ev, err := NewNote(typ, route.Channel, note, velocity)
	if err != nil {
		o.router.drop(o.name, Event{Type: typ, Channel: route.Channel}, err)
		return
	}
	o.router.Send(o.name, ev)
}
