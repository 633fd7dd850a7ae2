package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pkt.systems/dlmgr"
	"pkt.systems/dlmgr/apiclient"
	"pkt.systems/dlmgr/internal/appconfig"
	"pkt.systems/dlmgr/internal/format"
	"pkt.systems/dlmgr/internal/version"
	"pkt.systems/kryptograf/keymgmt"
	"pkt.systems/pslog"
)

// runtime is what a command body receives.
type runtime struct {
	cfg     appconfig.Config
	app     *dlmgr.App
	api     *apiclient.Client
	printer *format.Printer
}

type runFunc func(ctx context.Context, rt *runtime, args []string) error

// withClient loads the config, builds the client and runs fn. The app is
// closed afterwards.
func withClient(flags *globalFlags, fn runFunc, opts ...dlmgr.Option) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd, flags, opts...)
		if err != nil {
			return err
		}
		defer rt.app.Close()
		return fn(cmd.Context(), rt, args)
	}
}

func newRuntime(cmd *cobra.Command, flags *globalFlags, opts ...dlmgr.Option) (*runtime, error) {
	cfg, err := appconfig.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = version.UserAgent()
	}
	printer, err := newPrinter(cmd, flags)
	if err != nil {
		return nil, err
	}
	opts = append([]dlmgr.Option{dlmgr.WithLogger(pslog.Ctx(cmd.Context()))}, opts...)
	app, err := dlmgr.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, app: app, api: app.API, printer: printer}, nil
}

func newPrinter(cmd *cobra.Command, flags *globalFlags) (*format.Printer, error) {
	output, err := format.ParseOutput(flags.output)
	if err != nil {
		return nil, err
	}
	return format.NewPrinter(cmd.OutOrStdout(), output, flags.query)
}

// printResult prints v when err is nil.
func (rt *runtime) printResult(v any, err error) error {
	if err != nil {
		return err
	}
	return rt.printer.Print(v)
}

// requireLogin fails early when no credential is held.
func (rt *runtime) requireLogin() error {
	if !rt.app.Credentials.Has() {
		return errors.New("not logged in (run dlmgr login)")
	}
	return nil
}

func authed(fn runFunc) runFunc {
	return func(ctx context.Context, rt *runtime, args []string) error {
		if err := rt.requireLogin(); err != nil {
			return err
		}
		return fn(ctx, rt, args)
	}
}

// readSecret prompts on a terminal and otherwise reads one line from stdin.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	in := cmd.InOrStdin()
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		secret, err := keymgmt.PromptPassphrase(in, prompt, cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return string(secret), nil
	}
	return readLine(in)
}

// readNewSecret prompts twice on a terminal.
func readNewSecret(cmd *cobra.Command, prompt string) (string, error) {
	secret, err := readSecret(cmd, prompt)
	if err != nil {
		return "", err
	}
	if file, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		confirm, err := readSecret(cmd, "Confirm "+strings.ToLower(prompt))
		if err != nil {
			return "", err
		}
		if confirm != secret {
			return "", errors.New("passwords do not match")
		}
	}
	if secret == "" {
		return "", errors.New("password is empty")
	}
	return secret, nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readInput returns the contents of path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func parseID(value, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, value)
	}
	return id, nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
