// Package shell provides the interactive command-line interface of
// camkit-ctl.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/camkit-project/camkit-go/pkg/device"
	"github.com/camkit-project/camkit-go/pkg/discovery"
	"github.com/camkit-project/camkit-go/pkg/inspect"
	"github.com/camkit-project/camkit-go/pkg/manager"
	"github.com/camkit-project/camkit-go/pkg/output"
	"github.com/camkit-project/camkit-go/pkg/session"
	"github.com/chzyer/readline"
)

// Config configures a Shell.
type Config struct {
	// Out receives command output. Defaults to os.Stdout; Run replaces it
	// with the readline terminal.
	Out io.Writer

	// Browser is used by the discover command (optional).
	Browser discovery.Browser

	// DiscoverTimeout bounds the discover command (default: 3s).
	DiscoverTimeout time.Duration
}

// Shell drives a camera manager from typed commands. It holds at most one
// open device and one running session.
type Shell struct {
	mgr       *manager.Manager
	cfg       Config
	formatter *inspect.Formatter

	outMu sync.Mutex
	out   io.Writer

	handle      *device.Handle
	stopWatch   func()
	sess        *session.Session
	preview     *output.PreviewOutput
	photo       *output.PhotoOutput
	removeAvail func()
}

// New creates a shell on mgr.
func New(mgr *manager.Manager, cfg Config) *Shell {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.DiscoverTimeout <= 0 {
		cfg.DiscoverTimeout = 3 * time.Second
	}
	s := &Shell{
		mgr:       mgr,
		cfg:       cfg,
		formatter: inspect.NewFormatter(),
		out:       cfg.Out,
	}
	s.removeAvail = mgr.AddAvailabilityListener(func(ev manager.AvailabilityEvent) {
		s.printf("[hotplug] %s %s\n", ev.DeviceID, ev.Status)
	})
	return s
}

// printf writes to the shell output. Listeners call it from other
// goroutines.
func (s *Shell) printf(format string, args ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) setOutput(w io.Writer) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	s.out = w
}

// Run reads commands until quit, EOF or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "camkit> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    s.completer(),
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()
	s.setOutput(rl.Stdout())

	s.printHelp()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			s.printf("Exiting...\n")
			return nil
		}
		if s.Exec(ctx, line) {
			s.printf("Exiting...\n")
			return nil
		}
	}
}

// completer completes command names, camera IDs and tag names.
func (s *Shell) completer() readline.AutoCompleter {
	devices := readline.PcItemDynamic(func(string) []string {
		var ids []string
		for _, d := range s.mgr.Devices() {
			ids = append(ids, d.ID())
		}
		return ids
	})
	paths := readline.PcItemDynamic(func(string) []string {
		var out []string
		for _, d := range s.mgr.Devices() {
			out = append(out, d.ID())
			for _, name := range inspect.TagNames() {
				out = append(out, d.ID()+"/"+name)
			}
		}
		return out
	})
	settings := make([]readline.PrefixCompleterInterface, 0, len(settingNames))
	for _, name := range settingNames {
		settings = append(settings, readline.PcItem(name))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("devices"),
		readline.PcItem("refresh"),
		readline.PcItem("inspect", paths),
		readline.PcItem("outputs", devices),
		readline.PcItem("open", devices),
		readline.PcItem("set", settings...),
		readline.PcItem("status"),
		readline.PcItem("start"),
		readline.PcItem("capture", readline.PcItem("high"), readline.PcItem("medium"), readline.PcItem("low")),
		readline.PcItem("stop"),
		readline.PcItem("close"),
		readline.PcItem("discover"),
		readline.PcItem("quit"),
	)
}

// Exec runs one command line and reports whether the shell should exit.
func (s *Shell) Exec(ctx context.Context, line string) (quit bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch cmd {
	case "help", "?":
		s.printHelp()
	case "devices", "ls":
		s.cmdDevices()
	case "refresh":
		err = s.cmdRefresh(ctx)
	case "inspect", "i":
		err = s.cmdInspect(args)
	case "outputs":
		err = s.cmdOutputs(args)
	case "open":
		err = s.cmdOpen(ctx, args)
	case "set":
		err = s.cmdSet(ctx, args)
	case "status", "st":
		s.cmdStatus()
	case "start":
		err = s.cmdStart(ctx)
	case "capture", "snap":
		err = s.cmdCapture(ctx, args)
	case "stop":
		err = s.cmdStop(ctx)
	case "close":
		err = s.Close(ctx)
	case "discover":
		err = s.cmdDiscover(ctx)
	case "quit", "exit", "q":
		return true
	default:
		err = fmt.Errorf("unknown command: %s (type 'help' for commands)", cmd)
	}
	if err != nil {
		s.printf("Error: %v\n", err)
	}
	return false
}

// Close releases the session, the outputs and the open device.
func (s *Shell) Close(ctx context.Context) error {
	var errs []error
	if s.sess != nil {
		errs = append(errs, s.sess.Release(ctx))
		s.sess = nil
	}
	if s.preview != nil {
		errs = append(errs, s.preview.Release(ctx))
		s.preview = nil
	}
	if s.photo != nil {
		errs = append(errs, s.photo.Release(ctx))
		s.photo = nil
	}
	if s.handle != nil {
		s.stopWatch()
		errs = append(errs, s.handle.Release(ctx))
		s.handle = nil
	}
	return errors.Join(errs...)
}

// Shutdown closes everything and detaches from the manager.
func (s *Shell) Shutdown(ctx context.Context) error {
	s.removeAvail()
	return s.Close(ctx)
}

func (s *Shell) printHelp() {
	s.printf(`Commands:
  devices                   List cameras
  refresh                   Enumerate cameras again
  inspect <id>[/<tag>]      Show capabilities of a camera
  outputs <id>              Show supported output profiles
  open <id>                 Open a camera
  set <setting> <value>     Change a setting of the open camera
                            (%s)
  status                    Show the open camera and session
  start                     Start a preview and photo session
  capture [high|medium|low] Take a photo
  stop                      Stop the session
  close                     Release the session and the camera
  discover                  Browse for camera services
  quit                      Exit
`, strings.Join(settingNames, ", "))
}
