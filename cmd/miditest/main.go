package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"kitchen-party/config"
	"kitchen-party/midi"
	"kitchen-party/trigger"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	router := midi.NewRouter(cfg)
	defer router.Close()

	switch os.Args[1] {
	case "list":
		listPorts()
	case "fire":
		fire(router, os.Args[2:])
	case "cues":
		walkCues(router)
	case "session":
		session(router, os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                         - List all MIDI ports")
	fmt.Println("  fire <output> <note> [vel]   - Send note on, wait, note off (output: Lighting, QLAB, Drums, Keys, Horn)")
	fmt.Println("  cues                         - Walk every lighting cue the installation uses")
	fmt.Println("  session start|stop           - Send the QLab session start/stop note")
}

func listPorts() {
	fmt.Println("(waiting up to 3 seconds...)")
	ports, err := midi.ListPorts(context.Background())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("=== MIDI Input Ports ===")
	for i, p := range ports.In {
		fmt.Printf("  %d: %s\n", i, p)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range ports.Out {
		fmt.Printf("  %d: %s\n", i, p)
	}
}

func fire(router *midi.Router, args []string) {
	if len(args) < 2 {
		usage()
		return
	}
	if _, ok := router.Route(args[0]); !ok {
		fmt.Printf("Unknown output %q\n", args[0])
		return
	}
	note, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Printf("Bad note %q: %v\n", args[1], err)
		return
	}
	vel := trigger.Velocity
	if len(args) > 2 {
		if vel, err = strconv.Atoi(args[2]); err != nil {
			fmt.Printf("Bad velocity %q: %v\n", args[2], err)
			return
		}
	}

	out := router.Output(args[0])
	fmt.Printf("Sending %s note %d vel %d\n", out.Name(), note, vel)
	out.NoteOn(note, vel)
	time.Sleep(500 * time.Millisecond)
	out.NoteOff(note, vel)
	report(router)
}

// walkCues fires each group's lighting cues in order, then idle and ready
func walkCues(router *midi.Router) {
	lighting := router.Output(config.OutputLighting)
	groups := []struct {
		group trigger.Group
		size  int
	}{
		{trigger.GroupKeys, len(trigger.Keys)},
		{trigger.GroupDrums, len(trigger.Drums)},
		{trigger.GroupHorns, len(trigger.Horns)},
	}
	for _, g := range groups {
		for i := 0; i < g.size; i++ {
			cue := trigger.LightingBase(g.group) + i
			fmt.Printf("  %s[%d] cue %d\n", g.group, i, cue)
			lighting.NoteOn(cue, trigger.Velocity)
			time.Sleep(300 * time.Millisecond)
			lighting.NoteOff(cue, trigger.Velocity)
		}
	}
	fmt.Println("  idle")
	lighting.NoteOn(trigger.LightingIdle, trigger.Velocity)
	time.Sleep(100 * time.Millisecond)
	fmt.Println("  ready")
	lighting.NoteOn(trigger.LightingReady, trigger.Velocity)
	report(router)
}

func session(router *midi.Router, args []string) {
	if len(args) < 1 {
		usage()
		return
	}
	vel := trigger.QLabStart
	switch args[0] {
	case "start":
	case "stop":
		vel = trigger.QLabStop
	default:
		usage()
		return
	}
	router.Output(config.OutputQLab).NoteOn(trigger.QLabSessionNote, vel)
	report(router)
}

func report(router *midi.Router) {
	sent, dropped := router.Stats()
	fmt.Printf("Done! sent=%d dropped=%d\n", sent, dropped)
	if dropped > 0 {
		fmt.Println("Some messages were dropped - check the route ports with: kitchen-party ports")
	}
}
