package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/five82/crown/internal/config"
	"github.com/five82/crown/internal/crown"
	"github.com/five82/crown/internal/journal"
	"github.com/five82/crown/internal/prefs"
	"github.com/five82/crown/internal/stacks"
	"github.com/five82/crown/internal/state"
	"github.com/five82/crown/internal/telemetry"
	"github.com/five82/crown/internal/ui"
	"github.com/five82/crown/internal/wallet"
)

// appName is the name the signer bridge shows in its approval prompts.
const appName = "crown"

var (
	_ state.Recorder = (*journal.Store)(nil)
	_ ui.EventLister = (*journal.Store)(nil)
	_ ui.Controller  = (*state.Controller)(nil)
)

// Options configure the crown application.
type Options struct {
	ConfigPath string
	PrefsPath  string    // empty uses default ~/.config/crown/prefs.toml
	Once       bool      // print the current crown and exit
	Stdout     io.Writer // -once output; nil means os.Stdout
	Version    string
}

// Run boots the crown TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	contract, err := cfg.Contract()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client, err := stacks.NewClient(cfg.APIURL)
	if err != nil {
		return fmt.Errorf("init stacks client: %w", err)
	}
	reader := crown.NewReader(client, contract)

	if opts.Once {
		out := opts.Stdout
		if out == nil {
			out = os.Stdout
		}
		return printOnce(ctx, reader, out)
	}

	closeLog, err := redirectLog(cfg.LogPath())
	if err != nil {
		return err
	}
	defer closeLog()

	shutdown, err := telemetry.Setup(ctx, cfg.OTelEndpoint, opts.Version)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	bridge, err := wallet.NewBridge(cfg.WalletURL)
	if err != nil {
		return fmt.Errorf("init wallet bridge: %w", err)
	}
	session := wallet.NewSession(bridge, appName)
	if err := session.Resume(ctx); err != nil {
		// The bridge may simply not be running yet; the user can connect later.
		log.Printf("wallet session resume failed: %v", err)
	} else if session.IsSignedIn() {
		log.Printf("wallet signed in: %s", session.CurrentAccount())
	}

	store, err := journal.Open(ctx, cfg.JournalPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() { _ = store.Close() }()

	submitter := crown.NewSubmitter(crown.SubmitterOptions{
		Signer:         bridge,
		Session:        session,
		Contract:       contract,
		Network:        cfg.Network,
		PostConditions: wallet.PostConditionMode(cfg.PostConditions),
	})
	controller := state.New(state.Options{
		Reader:    reader,
		Submitter: submitter,
		Session:   session,
		Recorder:  store,
	})
	defer controller.Close()

	log.Printf("crown %s starting: contract=%s network=%s", opts.Version, contract, cfg.Network)

	// The UI starts straight away and shows the loading state until the
	// first fetch lands.
	go func() {
		if err := controller.Initialize(ctx); err != nil {
			log.Printf("initial crown fetch failed, waiting for next poll: %v", err)
		}
	}()

	pollCtx, stopPolling := context.WithCancel(ctx)
	cancelPoller := StartPoller(pollCtx, PollInterval, func() { controller.Tick(pollCtx) })
	defer func() {
		cancelPoller()
		stopPolling()
	}()

	userPrefs := prefs.Load(opts.PrefsPath)
	return ui.Run(ui.Options{
		Context:    ctx,
		Controller: controller,
		Session:    session,
		Events:     store,
		LogPath:    cfg.LogPath(),
		Contract:   contract.String(),
		Network:    cfg.Network,
		ThemeName:  userPrefs.Theme,
		View:       userPrefs.View,
		PrefsPath:  opts.PrefsPath,
	})
}

// printOnce performs a single read and writes the crown to out.
func printOnce(ctx context.Context, reader crown.Fetcher, out io.Writer) error {
	st, err := reader.Fetch(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "holder:  %s\nprice:   %s STX (%d micro)\nmessage: %s\n",
		st.Holder, crown.FormatPrice(st.Price), st.Price, st.Message)
	return err
}

// redirectLog sends the standard logger to path while the TUI owns the
// terminal. The returned func restores stderr and closes the file.
func redirectLog(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}
