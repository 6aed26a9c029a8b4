package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bkodra/xtouch/internal/capture"
	"github.com/bkodra/xtouch/internal/config"
	"github.com/bkodra/xtouch/internal/input"
	"github.com/bkodra/xtouch/internal/logger"
	"github.com/bkodra/xtouch/internal/render"
	"github.com/bkodra/xtouch/internal/x11"
)

var (
	displayFlag   string
	fdFlag        int
	modeFlag      string
	clipboardFlag bool
	grabFlag      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the input bridge",
	Long: `Run the input bridge: connect to the remote display server, capture local
input devices and forward classified gestures as protocol requests.`,
	RunE: runBridge,
}

func init() {
	runCmd.Flags().StringVarP(&displayFlag, "display", "d", "", "X display string, e.g. :1")
	runCmd.Flags().IntVar(&fdFlag, "fd", -1, "Already-connected socket descriptor")
	runCmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "Input mode: trackpad, simulated_touch or touch")
	runCmd.Flags().BoolVar(&clipboardFlag, "clipboard", true, "Enable clipboard synchronization")
	runCmd.Flags().BoolVar(&grabFlag, "grab", true, "Grab input devices exclusively while forwarding")

	// Bind flags to viper
	viper.BindPFlag("display.display", runCmd.Flags().Lookup("display"))
	viper.BindPFlag("display.fd", runCmd.Flags().Lookup("fd"))
	viper.BindPFlag("input.mode", runCmd.Flags().Lookup("mode"))
	viper.BindPFlag("clipboard.sync_enabled", runCmd.Flags().Lookup("clipboard"))
	viper.BindPFlag("input.grab_devices", runCmd.Flags().Lookup("grab"))

	rootCmd.AddCommand(runCmd)
}

// logFrontend satisfies the classifier's UI callbacks for the headless CLI.
type logFrontend struct{}

func (logFrontend) MoveCursor(p render.Point) {}

func (logFrontend) ShowInputFeedback(kind input.FeedbackKind, p render.Point) {
	logger.Debugf("input feedback %d at (%.0f, %.0f)", kind, p.X, p.Y)
}

func (logFrontend) SwipeUp() { logger.Debug("three-finger swipe up") }

func (logFrontend) SwipeDown() { logger.Debug("three-finger swipe down") }

func runBridge(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Get()

	cb := x11.NewClipboard(cfg.Clipboard.SyncEnabled, func(text string) {
		logger.Debugf("clipboard: received %d bytes", len(text))
		if cfg.Clipboard.LocalMirror {
			if err := clipboard.WriteAll(text); err != nil {
				logger.Warnf("clipboard: local mirror: %v", err)
			}
		}
	})

	manager := x11.NewManager(cb)
	defer manager.Close()

	if cfg.Display.FD >= 0 {
		if err := manager.ConnectFD(cfg.Display.FD); err != nil {
			return err
		}
	} else {
		if err := manager.ConnectDisplay(cfg.Display.Display); err != nil {
			return err
		}
	}

	sender := manager.Sender()
	sender.SetPreferScancodes(cfg.Input.PreferScancodes)

	rs := render.NewState()
	handler := input.NewHandler(rs, logFrontend{}, sender, input.Config{
		Density:          cfg.Input.Density,
		EdgeSlopPx:       cfg.Input.EdgeSlopPx,
		SwipeThresholdDp: cfg.Input.SwipeThresholdDp,
	})

	mode := input.ParseMode(cfg.Input.Mode)
	handler.SetInputMode(mode)
	logger.Infof("Input mode: %s", cfg.Input.Mode)

	// Without a resize-reporting UI the remote screen doubles as the local
	// view, giving an identity transform.
	if w, h := manager.ScreenSize(); w > 0 && h > 0 {
		handler.HandleClientSizeChanged(w, h)
		handler.HandleHostSizeChanged(w, h)
	}

	capt := capture.NewCapture(cfg.Input.TouchDevice, cfg.Input.MouseDevice, cfg.Input.KeyboardDevice)

	// The classifier is single-threaded; capture goroutines funnel their
	// work through this channel.
	work := make(chan func(), 128)

	capt.OnPointerEvent(func(e input.PointerEvent) {
		fn := func() {
			if e.ToolType == input.ToolMouse {
				// Local mice report relative motion.
				handler.HandleCapturedEvent(e)
				return
			}
			handler.HandleTouchEvent(e)
		}
		select {
		case work <- fn:
		default:
			logger.Warn("Input queue full, dropping event")
		}
	})
	capt.OnKeyEvent(func(code int, down bool) {
		select {
		case work <- func() { sender.SendKeyEvent(code, 0, down) }:
		default:
			logger.Warn("Input queue full, dropping key event")
		}
	})
	capt.OnTick(func() {
		select {
		case work <- handler.Tick:
		default:
		}
	})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case fn := <-work:
				fn()
			}
		}
	}()

	if err := capt.Start(ctx); err != nil {
		return fmt.Errorf("start input capture: %w", err)
	}
	defer func() {
		if err := capt.Stop(); err != nil {
			logger.Warnf("Stop input capture: %v", err)
		}
	}()

	if cfg.Input.GrabDevices {
		// Exclusive access keeps forwarded events from also reaching the
		// local session.
		if err := capt.Grab(); err != nil {
			logger.Warnf("Could not grab input devices: %v", err)
		} else {
			defer capt.Ungrab()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Bridge running, press Ctrl+C to stop")
	select {
	case sig := <-sigCh:
		logger.Infof("Received signal %v, shutting down", sig)
	case <-ctx.Done():
	}

	return nil
}
