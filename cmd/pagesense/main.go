package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"pagesense/internal/browser"
	"pagesense/internal/config"
	"pagesense/internal/dom"
	"pagesense/internal/facts"
	mcpserver "pagesense/internal/mcp"
	"pagesense/internal/semantic"
	"pagesense/internal/serialize"
)

// newFlagSet returns a FlagSet that reports parse errors to the caller
// instead of calling os.Exit directly, so every subcommand can map a usage
// error onto the exitUsage code.
func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

const (
	exitOK           = 0
	exitUsage        = 2
	exitDriverFail   = 3
	exitPipelineFail = 4
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(exitUsage)
	}

	switch os.Args[1] {
	case "snapshot":
		os.Exit(runSnapshot(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:], false))
	case "mcp-http":
		os.Exit(runMCP(os.Args[2:], true))
	case "-h", "--help", "help":
		usage()
		os.Exit(exitOK)
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", os.Args[1])
		usage()
		os.Exit(exitUsage)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  pagesense snapshot <source> [-f text|json] [--launch bin] [--port N]
  pagesense mcp [--config path] [--launch bin] [--port N]
  pagesense mcp-http [--config path] [--http-port P] [--host H] [--launch bin] [--port N]`)
}

func runSnapshot(args []string) int {
	fs := newFlagSet("snapshot")
	format := fs.String("f", "text", "output format: text|json")
	launch := fs.String("launch", "", "Chrome binary to launch for a URL source")
	port := fs.Int("port", 0, "attach to an already-running Chrome's remote debugging port")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "snapshot requires exactly one source argument")
		return exitUsage
	}
	source := fs.Arg(0)
	// Flags may also follow the source argument.
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		return exitUsage
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "snapshot requires exactly one source argument")
		return exitUsage
	}

	root, header, err := loadSnapshotSource(source, *launch, *port)
	if err != nil {
		if errors.Is(err, errDriverFailure) {
			log.Printf("driver failure: %v", err)
			return exitDriverFail
		}
		log.Printf("pipeline failure: %v", err)
		return exitPipelineFail
	}

	switch *format {
	case "json":
		out, marshalErr := json.Marshal(serialize.JSON(root))
		if marshalErr != nil {
			log.Printf("pipeline failure: %v", marshalErr)
			return exitPipelineFail
		}
		fmt.Println(string(out))
	default:
		fmt.Print(serialize.Text(header, root))
	}
	return exitOK
}

var errDriverFailure = errors.New("driver failure")

// loadSnapshotSource resolves source (file path, "-" for stdin, or URL) into
// an HTML document, parses it, and runs the semantic pipeline. A URL source
// requires a driver, reached via --launch or --port.
func loadSnapshotSource(source, launchBin string, port int) (*semantic.Node, serialize.Header, error) {
	var html, url string

	switch {
	case source == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, serialize.Header{}, err
		}
		html = string(data)
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		if launchBin == "" && port == 0 {
			return nil, serialize.Header{}, fmt.Errorf("%w: URL source requires --launch or --port", errDriverFailure)
		}
		url = source
		cfg := config.BrowserConfig{}
		if launchBin != "" {
			cfg.Launch = []string{launchBin}
		}
		if port != 0 {
			cfg.DebuggerURL = fmt.Sprintf("http://127.0.0.1:%d", port)
		}
		fetched, err := fetchViaDriver(cfg, url)
		if err != nil {
			return nil, serialize.Header{}, fmt.Errorf("%w: %v", errDriverFailure, err)
		}
		html = fetched
	default:
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, serialize.Header{}, err
		}
		html = string(data)
	}

	root, err := dom.ParseString(html)
	if err != nil {
		return nil, serialize.Header{}, err
	}
	result := semantic.Run(root, nil)
	header := serialize.Header{Title: pageTitle(root), Host: url}
	return result.Root, header, nil
}

func pageTitle(n *dom.Node) string {
	var title string
	var walk func(*dom.Node)
	walk = func(n *dom.Node) {
		if title != "" || n == nil {
			return
		}
		if n.Kind == dom.KindElement && n.Tag == "title" {
			title = n.TextContent()
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return title
}

// dataDirFor derives the auth/recording storage root from the configured
// session store path, falling back to the current directory.
func dataDirFor(sessionStore string) string {
	if sessionStore == "" {
		return "."
	}
	return filepath.Dir(sessionStore)
}

func fetchViaDriver(cfg config.BrowserConfig, url string) (string, error) {
	sessions := browser.NewSessionManager(cfg, facts.New(config.MangleConfig{}), "")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.NavigationTimeout()+5*time.Second)
	defer cancel()
	if err := sessions.Start(ctx); err != nil {
		return "", err
	}
	defer func() { _ = sessions.Shutdown(context.Background()) }()

	summary, err := sessions.OpenTab(ctx, url)
	if err != nil {
		return "", err
	}
	tab, err := sessions.Tab(summary.ID)
	if err != nil {
		return "", err
	}
	return tab.Driver.FetchDOMHTML(ctx)
}

func runMCP(args []string, http bool) int {
	fs := newFlagSet("mcp")
	configPath := fs.String("config", "config.yaml", "path to the pagesense config file")
	launch := fs.String("launch", "", "Chrome binary to launch (overrides config)")
	port := fs.Int("port", 0, "attach to an already-running Chrome's remote debugging port")
	httpPort := 0
	host := "localhost"
	if http {
		fs.IntVar(&httpPort, "http-port", 8765, "port to serve the SSE/HTTP transport on")
		fs.StringVar(&host, "host", "localhost", "host to bind the SSE/HTTP transport to")
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return exitUsage
	}
	if *launch != "" {
		cfg.Browser.Launch = []string{*launch}
	}
	if *port != 0 {
		cfg.Browser.DebuggerURL = fmt.Sprintf("http://127.0.0.1:%d", *port)
	}
	if http {
		cfg.MCP.SSEPort = httpPort
	}

	if cfg.MCP.SSEPort == 0 && cfg.Server.LogFile != "" {
		logFile, openErr := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if openErr == nil {
			log.SetOutput(logFile)
			defer logFile.Close()
		} else {
			log.SetOutput(io.Discard)
		}
	}

	factLog := facts.New(cfg.Mangle)
	sessions := browser.NewSessionManager(cfg.Browser, factLog, dataDirFor(cfg.Browser.SessionStore))
	if cfg.Browser.AutoStart {
		if err := sessions.Start(ctx); err != nil {
			log.Printf("failed to start browser: %v", err)
			return exitDriverFail
		}
	} else {
		log.Printf("browser auto-start disabled; use open_tab to launch/attach later")
	}
	defer func() { _ = sessions.Shutdown(context.Background()) }()

	server, err := mcpserver.NewServer(cfg, sessions)
	if err != nil {
		log.Printf("failed to initialize MCP server: %v", err)
		return exitDriverFail
	}

	var startErr error
	if cfg.MCP.SSEPort > 0 {
		log.Printf("starting pagesense MCP SSE server on %s:%d", host, cfg.MCP.SSEPort)
		startErr = server.StartSSE(ctx, cfg.MCP.SSEPort)
	} else {
		log.Printf("starting pagesense MCP stdio server")
		startErr = server.Start(ctx)
	}

	if startErr != nil && !errors.Is(startErr, context.Canceled) {
		log.Printf("server exited with error: %v", startErr)
		return exitDriverFail
	}
	return exitOK
}
