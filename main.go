package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"kitchen-party/config"
	"kitchen-party/debug"
	"kitchen-party/display"
	"kitchen-party/midi"
	"kitchen-party/theme"
	"kitchen-party/trigger"
	"kitchen-party/tui"
	"kitchen-party/window"
)

var (
	configPath  string
	displayMode string
	debugOn     bool
	debugPath   string
	forceInit   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kitchen-party",
	Short: "Kitchen appliance instruments: touch triggers to MIDI and projection",
	Long: `kitchen-party turns touch sensors (wired as a keyboard) into MIDI triggers
for lighting, QLab, and instrument patches, with full-screen color feedback.

  Piano: Q W E R T Y
  Horn:  arrow keys
  Drums: U I O P [

QLab, MainStage and QLC+ must be listening on the routed ports.`,
	SilenceUsage: true,
	RunE:         runShow,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the installation (default)",
	RunE:  runShow,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI ports and show where each output is routed",
	RunE:  runPorts,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default routes",
	RunE:  runConfigInit,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.config/kitchen-party/config.json)")
	rootCmd.PersistentFlags().BoolVar(&debugOn, "debug", false, "Write a debug log")
	rootCmd.PersistentFlags().StringVar(&debugPath, "debug-log", "", "Debug log path (default ~/.config/kitchen-party/debug.log)")
	rootCmd.Flags().StringVarP(&displayMode, "display", "d", "", "Front-end: window or tui (overrides config)")
	runCmd.Flags().StringVarP(&displayMode, "display", "d", "", "Front-end: window or tui (overrides config)")

	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing config")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if displayMode != "" {
		cfg.Display = config.DisplayMode(displayMode)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func loadTheme(cfg *config.Config) (*theme.Theme, error) {
	if cfg.Palette == "" {
		return theme.New(), nil
	}
	p, err := theme.LoadGPL(cfg.Palette)
	if err != nil {
		return nil, fmt.Errorf("load palette: %w", err)
	}
	return theme.FromPalette(p), nil
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	th, err := loadTheme(cfg)
	if err != nil {
		return err
	}

	if debugOn {
		if err := debug.Enable(debugPath); err != nil {
			return fmt.Errorf("enable debug log: %w", err)
		}
		defer debug.Disable()
	}
	if debug.Enabled() {
		debug.Log("config", "display=%s idle=%s repeatDelay=%s releaseAfter=%s hornNoteOff=%v",
			cfg.Display, cfg.IdleDelay(), cfg.RepeatDelay(), cfg.ReleaseAfter(), cfg.HornReleaseNoteOff)
		for _, name := range config.Outputs {
			r := cfg.Route(name)
			debug.Log("config", "route %s -> %q ch %d", name, r.Port, r.Channel+1)
		}
	}

	router := midi.NewRouter(cfg)
	defer router.Close()

	screen := display.NewScreen()
	mapper := trigger.NewMapper(trigger.Outputs{
		Lighting: router.Output(config.OutputLighting),
		QLab:     router.Output(config.OutputQLab),
		Drums:    router.Output(config.OutputDrums),
		Keys:     router.Output(config.OutputKeys),
		Horn:     router.Output(config.OutputHorn),
	}, screen, trigger.Options{
		IdleDelay:          cfg.IdleDelay(),
		HornReleaseNoteOff: cfg.HornReleaseNoteOff,
	})

	// Start port manager in background (handles hot-plug)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ports := midi.NewPortManager(router)
	go ports.Run(ctx)

	mapper.Start()

	switch cfg.Display {
	case config.DisplayTUI:
		m := tui.NewModel(mapper, screen, th, router, ports, tui.Hold{
			FirstRepeat: cfg.RepeatDelay(),
			Repeat:      cfg.ReleaseAfter(),
		})
		if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
	default:
		go func() {
			for ev := range ports.Events() {
				debug.Log("midi", "port %s (%s) connected=%v", ev.Output, ev.Port, ev.Connected)
			}
		}()
		if err := window.Run(window.NewGame(mapper, screen, th)); err != nil {
			return fmt.Errorf("window: %w", err)
		}
	}
	return nil
}

func runPorts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("(waiting up to 3 seconds...)")
	ports, err := midi.ListPorts(cmd.Context())
	if err != nil {
		if errors.Is(err, midi.ErrPortScanTimeout) {
			fmt.Println("TIMEOUT! CoreMIDI is hung.")
			fmt.Println("Fix: sudo killall coreaudiod midiserver")
		}
		return err
	}

	fmt.Println("=== MIDI Input Ports ===")
	for i, p := range ports.In {
		fmt.Printf("  %d: %s\n", i, p)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range ports.Out {
		fmt.Printf("  %d: %s\n", i, p)
	}

	fmt.Println("\n=== Routes ===")
	for _, name := range config.Outputs {
		r := cfg.Route(name)
		status := "missing"
		if midi.PortPresent(ports.Out, r.Port) {
			status = "ok"
		}
		fmt.Printf("  %-9s -> %q ch %d  [%s]\n", name, r.Port, r.Channel+1, status)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if _, err := os.Stat(path); err == nil && !forceInit {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	if configPath != "" {
		if err := cfg.SaveTo(path); err != nil {
			return err
		}
	} else if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Println("wrote", path)
	return nil
}
