package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"chatterm/internal/api"
	"chatterm/internal/config"
	"chatterm/internal/display"
	"chatterm/internal/logging"
	"chatterm/internal/markdown"
	"chatterm/internal/render"
	"chatterm/internal/service"
	"chatterm/internal/tui"

	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	activeProfile string
	debugMode     bool
	jsonOutput    bool
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Parse global flags first (--profile, --debug, --json)
	args = parseGlobalFlags(args)

	if dir, err := config.Dir(); err == nil {
		closer, err := logging.Setup(dir, debugMode)
		if err != nil {
			display.Warn(fmt.Sprintf("Debug log unavailable: %v", err))
		} else {
			defer closer.Close()
		}
	}
	slog.Debug("starting", "version", version, "profile", config.ProfileName(activeProfile), "args", args)

	// No args → launch interactive mode (default)
	if len(args) == 0 {
		args = []string{"chat"}
	}

	var err error

	switch args[0] {
	case "chat", "-i", "--interactive", "interactive":
		err = tui.Run(version, activeProfile)
	case "ask":
		err = cmdAsk(args[1:])
	case "render":
		err = cmdRender(args[1:], os.Stdin, os.Stdout)
	case "set":
		err = cmdSet(args[1:])
	case "config":
		err = cmdConfig(os.Stdout)
	case "profiles":
		err = cmdProfiles()
	case "help", "--help", "-h":
		printUsage()
	case "version", "--version", "-v":
		fmt.Println(versionString())
	default:
		display.Error(fmt.Sprintf("Unknown command: %s", args[0]))
		printUsage()
		return 1
	}

	if err != nil {
		slog.Error("command failed", "command", args[0], "error", err)
		display.Error(err.Error())
		return 1
	}
	return 0
}

// ─── ask ────────────────────────────────────────────────────────────────────

func cmdAsk(args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: chatterm ask <message>")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println(`  chatterm ask "Show me a Go HTTP server"`)
		fmt.Println(`  chatterm --profile local ask "What is AAPL trading at?"`)
		return nil
	}
	prompt := strings.Join(args, " ")

	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client := api.NewClient(cfg)
	conv := service.NewConversation(cfg.ConversationID)
	conv.AddUser(prompt)
	req := conv.Request()
	conv.BeginAssistant()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	width := terminalWidth()
	sd := display.NewStreamDisplay(conv, width-4, cfg.CodeTheme)

	if jsonOutput {
		sd.SetOutput(io.Discard)
	} else {
		fmt.Printf("\n %s── 💬 chatterm ───────────────────────────────────────────────────────%s\n", display.Dim, display.Reset)
		fmt.Println()
		for i, line := range wrapText(prompt, min(width, 80)-16) {
			label := "         "
			if i == 0 {
				label = "Prompt:  "
			}
			fmt.Printf("    %s%s%s%s\n", display.Dim, label, display.Reset, line)
		}
		fmt.Printf("    %sEndpoint:%s %s\n", display.Dim, display.Reset, truncate(cfg.Endpoint, 60))
		fmt.Println()
		fmt.Printf(" %s──────────────────────────────────────────────────────────────────────%s\n\n", display.Dim, display.Reset)
	}

	err = client.StreamChat(ctx, req, sd.HandleEvent)
	sd.Flush()

	if errors.Is(err, context.Canceled) {
		display.Warn("Cancelled.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("stream error: %w", err)
	}

	cfg.LastConversation = conv.ID
	if err := cfg.Save(); err != nil {
		slog.Warn("saving last conversation", "error", err)
	}

	if jsonOutput {
		msg, _ := conv.LastAssistant()
		return printJSON(os.Stdout, msg)
	}

	if sd.Err != "" {
		return fmt.Errorf("assistant reported an error: %s", sd.Err)
	}
	sd.PrintFollowUps()
	fmt.Println()
	return nil
}

// ─── render ─────────────────────────────────────────────────────────────────

type renderOptions struct {
	path   string
	html   bool
	legacy bool
	blocks bool
	yaml   bool
	engine string
	width  int
	theme  string
}

func parseRenderArgs(args []string) (renderOptions, error) {
	opts := renderOptions{engine: "builtin"}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--html":
			opts.html = true
		case "--legacy":
			opts.legacy = true
		case "--blocks":
			opts.blocks = true
		case "--yaml":
			opts.yaml = true
		case "--engine":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--engine requires a value")
			}
			i++
			opts.engine = args[i]
		case "-w", "--width":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--width requires a value")
			}
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil || n <= 0 {
				return opts, fmt.Errorf("invalid --width %q", args[i])
			}
			opts.width = n
		case "--theme":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--theme requires a value")
			}
			i++
			opts.theme = args[i]
		default:
			if opts.path != "" {
				return opts, fmt.Errorf("unexpected argument %q", args[i])
			}
			opts.path = args[i]
		}
	}

	switch opts.engine {
	case "builtin", "glamour":
	default:
		return opts, fmt.Errorf("unknown engine %q (valid: builtin, glamour)", opts.engine)
	}
	return opts, nil
}

func cmdRender(args []string, stdin io.Reader, out io.Writer) error {
	opts, err := parseRenderArgs(args)
	if err != nil {
		return err
	}

	var data []byte
	if opts.path == "" || opts.path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(opts.path)
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	text := string(data)

	if opts.width == 0 {
		opts.width = terminalWidth()
	}
	if opts.theme == "" {
		opts.theme = config.DefaultCodeTheme
		if cfg, err := config.Load(activeProfile); err == nil {
			opts.theme = cfg.CodeTheme
		}
	}

	switch {
	case opts.blocks:
		blocks := markdown.Scan(text)
		if jsonOutput {
			return printJSON(out, blocks)
		}
		if opts.yaml {
			return printYAML(out, blocks)
		}
		_, err = fmt.Fprint(out, display.DescribeBlocks(blocks))
	case opts.legacy:
		_, err = fmt.Fprintln(out, render.SanitizeLegacy(text))
	case opts.html:
		_, err = fmt.Fprintln(out, render.HTMLString(text))
	case opts.engine == "glamour":
		var s string
		if s, err = render.Glamour(text, opts.width); err == nil {
			_, err = fmt.Fprint(out, s)
		}
	default:
		_, err = fmt.Fprintln(out, render.NewTerminal(opts.width, opts.theme).RenderString(text))
	}
	return err
}

// ─── set ────────────────────────────────────────────────────────────────────

func cmdSet(args []string) error {
	if len(args) < 2 {
		fmt.Println("Usage: chatterm set <key> <value>")
		fmt.Println()
		fmt.Println("Keys:")
		fmt.Println("  endpoint         Chat endpoint URL  (e.g. http://localhost:3000/api/chat)")
		fmt.Println("  api_key          Bearer token sent with each request")
		fmt.Println("  model            Model name passed to the backend")
		fmt.Println("  system           System prompt passed to the backend")
		fmt.Println("  conversation_id  Conversation id used for new chats")
		fmt.Println("  code_theme       Code highlighting style (e.g. monokai, dracula, none)")
		return nil
	}

	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}

	key := strings.ToLower(args[0])
	if err := cfg.Set(key, strings.Join(args[1:], " ")); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	display.Success(fmt.Sprintf("%s set to %s", key, cfg.Get(key)))
	return nil
}

// ─── config ─────────────────────────────────────────────────────────────────

func cmdConfig(out io.Writer) error {
	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}

	if jsonOutput {
		settings := map[string]string{"profile": config.ProfileName(activeProfile)}
		for _, key := range config.Keys {
			settings[key] = cfg.Get(key)
		}
		settings["last_conversation"] = cfg.LastConversation
		return printJSON(out, settings)
	}

	display.Header("chatterm Configuration")
	display.Info("Profile:", config.ProfileName(activeProfile))

	for _, key := range config.Keys {
		value := cfg.Get(key)
		if value == "" {
			value = display.Dim + "(not set)" + display.Reset
		}
		display.Info(key+":", value)
	}

	last := cfg.LastConversation
	if last == "" {
		last = display.Dim + "(none)" + display.Reset
	}
	display.Info("last conversation:", last)
	fmt.Println()

	return nil
}

// ─── profiles ───────────────────────────────────────────────────────────────

func cmdProfiles() error {
	profiles, err := config.ListProfiles()
	if err != nil {
		return err
	}

	display.Header(fmt.Sprintf("Profiles (%d)", len(profiles)))

	if len(profiles) == 0 {
		display.Warn("No profiles found.")
		return nil
	}

	for _, p := range profiles {
		marker := " "
		if p == config.ProfileName(activeProfile) {
			marker = display.Green + "●" + display.Reset
		}
		fmt.Printf("  %s %s\n", marker, p)
	}
	fmt.Println()

	return nil
}

// ─── helpers ────────────────────────────────────────────────────────────────

func versionString() string {
	s := "chatterm " + version
	if commit == "" || commit == "none" {
		return s
	}
	return fmt.Sprintf("%s\n  commit: %s\n  built:  %s", s, commit, date)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText word-wraps text to width. Words longer than width stay whole.
func wrapText(text string, width int) []string {
	return strings.Split(wordwrap.String(text, width), "\n")
}

func parseGlobalFlags(args []string) []string {
	var remaining []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--profile":
			if i+1 < len(args) {
				i++
				activeProfile = args[i]
			}
			continue
		case "--debug":
			debugMode = true
			continue
		case "-j", "--json":
			jsonOutput = true
			continue
		}
		remaining = append(remaining, args[i])
	}
	return remaining
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// ─── usage ──────────────────────────────────────────────────────────────────

func printUsage() {
	fmt.Printf(`%schatterm%s · terminal chat client with markdown rendering (%s)

%sUsage:%s
  chatterm                                            Launch interactive chat (default)
  chatterm [--profile <name>] <command> [arguments]   Run a specific command

%sChat:%s
  chat                      Launch interactive chat
  ask "<message>"           Send one message and stream the reply

%sRendering:%s
  render [file|-]           Render markdown from a file or stdin
    --width <n>             Wrap width (default: terminal width)
    --theme <name>          Code highlighting style (default: config code_theme)
    --html                  Emit sanitized HTML
    --legacy                Emit the legacy inline substitution, sanitized
    --blocks                Show the scanned block structure
    --yaml                  With --blocks, print the structure as YAML
    --engine glamour        Render with glamour for comparison

%sSettings:%s
  set <key> <value>         Change a setting (endpoint, api_key, model, system,
                            conversation_id, code_theme)
  config                    Show current configuration
  profiles                  List all config profiles

%sGlobal flags:%s
  --profile <name>          Use a named config profile (default: unnamed)
  --debug                   Write a debug log to ~/.chatterm/debug.log
  -j, --json                JSON output for ask, config and render --blocks

%sExamples:%s
  chatterm set endpoint http://localhost:3000/api/chat
  chatterm ask "Write a bubble sort in Go"
  cat notes.md | chatterm render --width 100
  chatterm render README.md --html > readme.html

`, display.Bold, display.Reset, version,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset)
}
