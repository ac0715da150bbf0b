package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"screen-capture-tool/src/capture"
	"screen-capture-tool/src/clipboard"
	"screen-capture-tool/src/config"
	"screen-capture-tool/src/overlay"
	"screen-capture-tool/src/session"
	"screen-capture-tool/src/singleinstance"
)

type commonOptions struct {
	outputDir  string
	verbose    bool
	standalone bool
	geom       geometry
}

type snapOptions struct {
	commonOptions
	clipboard bool
}

type recordOptions struct {
	commonOptions
	fps      float64
	duration time.Duration
}

// geometry selects the capture rectangle without an overlay: either an
// explicit rectangle or a whole display by index.
type geometry struct {
	x, y, width, height int
	display             int
}

func (g geometry) explicit() bool { return g.width > 0 || g.height > 0 }

func (g geometry) region() (capture.Region, error) {
	if g.width > 0 || g.height > 0 {
		return capture.NewRegion(g.x, g.y, g.width, g.height)
	}
	return capture.DisplayRegion(g.display)
}

func (g *geometry) registerFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&g.x, "x", 0, "Region origin X (with --width/--height)")
	cmd.Flags().IntVar(&g.y, "y", 0, "Region origin Y (with --width/--height)")
	cmd.Flags().IntVar(&g.width, "width", 0, "Region width in pixels")
	cmd.Flags().IntVar(&g.height, "height", 0, "Region height in pixels")
	cmd.Flags().IntVar(&g.display, "display", -1, "Capture a whole display by index")
}

// headless reports whether the command can run without the interactive overlay.
func (g geometry) headless() bool { return g.explicit() || g.display >= 0 }

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"screen-capture"}
	}

	cmd := newRootCmd()
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-capture",
		Short:         "Capture screen regions as PNG stills or MP4 recordings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newSnapCmd(), newRecordCmd())
	return cmd
}

func newSnapCmd() *cobra.Command {
	opts := &snapOptions{}
	cmd := &cobra.Command{
		Use:   "snap",
		Short: "Save one screenshot of a region",
		Long: "Saves a region of the screen as a timestamped PNG. Without geometry flags\n" +
			"the selection is interactive, delegated to a resident instance when one is\n" +
			"running so the overlay appears immediately.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnap(*opts)
		},
	}
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "Output directory (default from config)")
	cmd.Flags().BoolVar(&opts.clipboard, "clipboard", false, "Also copy the image to the clipboard")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.Flags().BoolVar(&opts.standalone, "standalone", false, "Never delegate to a resident instance")
	opts.geom.registerFlags(cmd)
	return cmd
}

func newRecordCmd() *cobra.Command {
	opts := &recordOptions{}
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a region to an MP4 file",
		Long: "Records a region of the screen to a timestamped MP4. With --duration the\n" +
			"recording stops on its own; otherwise it runs until interrupted (Ctrl+C).\n" +
			"Without geometry flags and without --standalone the toggle is delegated to\n" +
			"a resident instance when one is running.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(*opts)
		},
	}
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "Output directory (default from config)")
	cmd.Flags().Float64Var(&opts.fps, "fps", 0, "Frames per second (default from config)")
	cmd.Flags().DurationVarP(&opts.duration, "duration", "d", 0, "Stop after this long (0 = until Ctrl+C)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.Flags().BoolVar(&opts.standalone, "standalone", false, "Never delegate to a resident instance")
	opts.geom.registerFlags(cmd)
	return cmd
}

func setupLogging(verbose bool) {
	if verbose {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}
}

func runSnap(opts snapOptions) error {
	setupLogging(opts.verbose)

	// Load .env early so SINGLEINSTANCE_PORT_* applies to the delegation scan.
	cfg, err := config.LoadWithOptions(config.LoadOptions{OutputDirOverride: opts.outputDir})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if !opts.geom.headless() && !opts.standalone {
		delegated, reply, err := delegate(singleinstance.KindSnap)
		if err != nil {
			return err
		}
		if delegated {
			fmt.Println(reply)
			return nil
		}
		log.Printf("No resident detected, running standalone")
	}

	selector, err := chooseSelector(opts.geom)
	if err != nil {
		return err
	}

	if opts.clipboard {
		if err := clipboard.Init(); err != nil {
			return fmt.Errorf("failed to initialize clipboard: %w", err)
		}
	}
	if err := capture.Init(); err != nil {
		return err
	}

	res, err := session.Snapshot(context.Background(), session.SnapshotOptions{
		SelectRegion:    selector.Select,
		OutputDir:       cfg.OutputDir,
		CopyToClipboard: opts.clipboard,
	})
	if err != nil {
		return err
	}
	fmt.Println(res.Path)
	return nil
}

func runRecord(opts recordOptions) error {
	setupLogging(opts.verbose)

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		OutputDirOverride: opts.outputDir,
		FPSOverride:       opts.fps,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if !opts.geom.headless() && !opts.standalone && opts.duration <= 0 {
		delegated, reply, err := delegate(singleinstance.KindRecord)
		if err != nil {
			return err
		}
		if delegated {
			fmt.Println(reply)
			return nil
		}
		log.Printf("No resident detected, running standalone")
	}

	selector, err := chooseSelector(opts.geom)
	if err != nil {
		return err
	}
	if err := capture.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.duration <= 0 {
		fmt.Fprintln(os.Stderr, "Recording until interrupted (Ctrl+C to stop)...")
	}

	res, err := session.Record(ctx, session.RecordOptions{
		SelectRegion: selector.Select,
		OutputDir:    cfg.OutputDir,
		FPS:          cfg.FPS,
		Duration:     opts.duration,
		StopTimeout:  time.Duration(cfg.StopTimeoutSec) * time.Second,
	})
	if err != nil {
		return err
	}
	fmt.Println(res.Path)
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] %d frames in %s\n", res.Frames, res.Duration.Round(time.Millisecond))
	}
	return nil
}

// delegate hands the command to a resident instance if one is listening.
func delegate(kind singleinstance.Kind) (bool, string, error) {
	// No ctx deadline: the resident blocks on interactive selection and the
	// user decides how long that takes.
	client := singleinstance.NewClient()
	delegated, reply, err := client.TryDelegate(context.Background(), kind)
	if !delegated {
		return false, "", nil
	}
	if err != nil {
		return true, "", fmt.Errorf("resident reported: %w", err)
	}
	return true, reply, nil
}

// chooseSelector picks fixed geometry when given, otherwise the interactive
// overlay for this platform.
func chooseSelector(g geometry) (overlay.Selector, error) {
	if g.headless() {
		region, err := g.region()
		if err != nil {
			return nil, err
		}
		return overlay.FixedSelector{Region: region}, nil
	}
	return overlay.NewSelector(), nil
}

// normalizeLegacyArgs maps GNU-ish single-dash long flags to the double-dash
// form cobra expects.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	longFlags := []string{"output", "clipboard", "verbose", "standalone", "fps", "duration", "display", "width", "height", "x", "y"}
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		if !strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "--") {
			continue
		}
		body := arg[1:]
		for _, name := range longFlags {
			if len(name) > 1 && (body == name || strings.HasPrefix(body, name+"=")) {
				normalized[i] = "-" + arg
				break
			}
		}
	}

	return normalized
}
