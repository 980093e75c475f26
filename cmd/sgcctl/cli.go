package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/form"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/resource"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/service"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/config"
	appErrors "github.com/shehrozeikram/SGCEducation-sub002/pkg/errors"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/metrics"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/storage"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	cfg          *config.Config
	logger       *zap.Logger
	metrics      *metrics.Recorder
	store        storage.Store
	out          io.Writer
	in           *bufio.Reader
	readPassword func(fd int) ([]byte, error)
	now          func() time.Time

	console *service.Console
	// banner is the last status message shown to the operator.
	banner *form.Banner
}

func (cli *commandLine) printUsage() {
	fmt.Fprint(cli.out, `Usage: sgcctl <command> [flags]

Session:
  login -email EMAIL [-institution ID] [-password-stdin]
  use -institution ID            switch institution (super admin)
  logout
  whoami [-json]

Browse:
  list RESOURCE [-search TEXT] [-filter key=value]... [-page N] [-limit N] [-json]
  show RESOURCE ID [-json]
  stats [-institution ID] [-json]   results overview
  settings [-set key=value]...      settings by category
  options [-institution ID] [-class ID] [-section ID] [-group ID] [-department ID] [-json]
                                 choices of the dependent selectors

Change:
  create RESOURCE -set field=value... [-json]
  update RESOURCE ID -set field=value... [-json]
  toggle RESOURCE ID             activate or deactivate
  delete RESOURCE ID [-yes]
  publish RESULT_ID [-json]
  send MESSAGE_ID [-json]
  generate REPORT_ID [-json]
  promote -op promote|transfer|passout -students ID,ID -from-class ID [-to-class ID]...
                                 students must be listed under the source class

Monitor:
  monitor [-interval off|10s|30s|60s] [-serve] [-once]
  fake-backend [-addr :5000] [-secret S]   in-memory backend with demo data

Resources: `+strings.Join(resourceNames(), ", ")+"\n")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	command, rest := args[1], args[2:]
	handlers := map[string]func(context.Context, []string) error{
		"login":        cli.login,
		"use":          cli.use,
		"logout":       cli.logout,
		"whoami":       cli.whoami,
		"list":         cli.list,
		"show":         cli.show,
		"stats":        cli.stats,
		"settings":     cli.settings,
		"options":      cli.options,
		"create":       cli.create,
		"update":       cli.update,
		"toggle":       cli.toggle,
		"delete":       cli.delete,
		"publish":      cli.publish,
		"send":         cli.send,
		"generate":     cli.generate,
		"promote":      cli.promote,
		"monitor":      cli.monitor,
		"fake-backend": cli.fakeBackend,
	}
	handler, ok := handlers[command]
	if !ok {
		cli.printUsage()
		return errHelp
	}
	return handler(ctx, rest)
}

// open builds the console on first use.
func (cli *commandLine) open(ctx context.Context) (*service.Console, error) {
	if cli.console != nil {
		return cli.console, nil
	}
	console, err := service.NewConsole(ctx, cli.cfg, cli.store, cli.logger, cli.metrics)
	if err != nil {
		return nil, err
	}
	cli.console = console
	return console, nil
}

// authed opens the console and requires a live session.
func (cli *commandLine) authed(ctx context.Context) (*service.Console, error) {
	console, err := cli.open(ctx)
	if err != nil {
		return nil, err
	}
	if !console.Session.IsAuthenticated() {
		return nil, appErrors.Clone(appErrors.ErrNotAuthenticated, "not logged in, run: sgcctl login -email EMAIL")
	}
	return console, nil
}

func (cli *commandLine) close() {
	if cli.console != nil {
		if err := cli.console.Close(); err != nil {
			cli.logger.Warn("close console", zap.Error(err))
		}
	}
}

func (cli *commandLine) clock() time.Time {
	if cli.now != nil {
		return cli.now()
	}
	return time.Now()
}

// notify prints a success message and keeps it as the current banner for
// BANNER_TTL.
func (cli *commandLine) notify(text string) {
	cli.banner = form.SuccessBanner(text, cli.clock(), cli.cfg.Forms.BannerTTL)
	fmt.Fprintln(cli.out, text)
}

// alert makes err the current banner. Error banners stay until replaced or
// dismissed.
func (cli *commandLine) alert(err error, fallback string) *form.Banner {
	cli.banner = form.ErrorBanner(err, fallback)
	return cli.banner
}

func (cli *commandLine) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parse accepts flags before and after positional arguments, so both
// `show classes c1 -json` and `show -json classes c1` work.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, errHelp
			}
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func lookup(name string) (resource.Descriptor, error) {
	d, ok := resource.All[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return resource.Descriptor{}, fmt.Errorf("unknown resource %q (one of: %s)", name, strings.Join(resourceNames(), ", "))
	}
	return d, nil
}

func resourceNames() []string {
	names := make([]string, 0, len(resource.All))
	for name := range resource.All {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// pairs collects repeated key=value flags.
type pairs map[string]string

func (p pairs) String() string {
	keys := make([]string, 0, len(p))
	for k, v := range p {
		keys = append(keys, k+"="+v)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

func (p pairs) Set(raw string) error {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", raw)
	}
	p[key] = value
	return nil
}

func (cli *commandLine) printJSON(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (cli *commandLine) table(headers []string, rows [][]string) error {
	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func (cli *commandLine) confirm(prompt string) bool {
	fmt.Fprintf(cli.out, "%s [y/N]: ", prompt)
	line, _ := cli.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func stdinFD() int {
	return int(os.Stdin.Fd())
}
