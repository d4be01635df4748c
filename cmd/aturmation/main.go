package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aturmation/aturmation-cli/internal/config"
	"github.com/aturmation/aturmation-cli/internal/logging"
	"github.com/aturmation/aturmation-cli/internal/tui"
	"github.com/aturmation/aturmation-cli/pkg/client"
	"github.com/aturmation/aturmation-cli/pkg/forms"
	"github.com/aturmation/aturmation-cli/pkg/session"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("aturmation " + version)
			return nil
		case "help", "--help", "-h":
			printHelp(os.Stdout)
			return nil
		case "login":
			store, err := session.NewStore()
			if err != nil {
				return err
			}
			return runLogin(ctx, cfg, store, os.Stdin, os.Stdout)
		case "register":
			store, err := session.NewStore()
			if err != nil {
				return err
			}
			return runRegister(ctx, cfg, store, os.Stdin, os.Stdout)
		case "logout":
			return runLogout()
		case "whoami":
			return runWhoami(ctx, cfg)
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
			printHelp(os.Stderr)
			os.Exit(2)
		}
	}

	// The TUI owns stdout; logs go to a file.
	if _, err := logging.Init(logging.Options{Level: cfg.LogLevel, Path: cfg.LogFile}); err != nil {
		return err
	}

	store, err := session.NewStore()
	if err != nil {
		return err
	}

	// Any 401 clears the stored token and kicks the TUI back to the
	// login screen through this channel.
	expired := make(chan struct{}, 1)
	c := client.New(cfg.APIBaseURL, store.Token(),
		client.WithUnauthorizedHook(func() {
			_ = store.Clear()
			select {
			case expired <- struct{}{}:
			default:
			}
		}))

	app := tui.NewApp(c, store, expired, cfg.PageSize)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func runLogin(ctx context.Context, cfg *config.Config, store *session.Store, in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)
	username, err := prompt(r, out, "Username: ")
	if err != nil {
		return err
	}
	password, err := prompt(r, out, "Password: ")
	if err != nil {
		return err
	}

	form := forms.LoginForm{Username: username, Password: password}
	if errs := form.Validate(); !errs.Valid() {
		return formError(errs)
	}

	c := client.New(cfg.APIBaseURL, "")
	resp, err := c.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := store.Save(resp.Token); err != nil {
		return err
	}
	fmt.Fprintf(out, "Signed in as %s @%s (%s).\n", resp.User.Name, resp.User.Username, resp.User.Role)
	return nil
}

func runRegister(ctx context.Context, cfg *config.Config, store *session.Store, in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)
	form := forms.RegisterForm{}
	fields := []struct {
		label string
		dst   *string
	}{
		{"Name: ", &form.Name},
		{"Username: ", &form.Username},
		{"Email: ", &form.Email},
		{"Password: ", &form.Password},
		{"Confirm password: ", &form.Confirm},
	}
	for _, f := range fields {
		v, err := prompt(r, out, f.label)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	req, errs := form.Validate()
	if !errs.Valid() {
		return formError(errs)
	}

	c := client.New(cfg.APIBaseURL, "")
	resp, err := c.Register(ctx, req)
	if err != nil {
		return err
	}
	if err := store.Save(resp.Token); err != nil {
		return err
	}
	fmt.Fprintf(out, "Welcome, %s! You are signed in as @%s.\n", resp.User.Name, resp.User.Username)
	return nil
}

func prompt(r *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func formError(errs forms.Errors) error {
	msgs := make([]string, 0, len(errs))
	for _, msg := range errs {
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func runLogout() error {
	store, err := session.NewStore()
	if err != nil {
		return err
	}
	if store.Token() == "" {
		fmt.Println("Already logged out.")
		return nil
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

func runWhoami(ctx context.Context, cfg *config.Config) error {
	store, err := session.NewStore()
	if err != nil {
		return err
	}
	c := client.New(cfg.APIBaseURL, store.Token())
	sess, err := store.Current(ctx, c)
	if err != nil {
		return err
	}
	if sess == nil {
		fmt.Println("Not signed in.")
		return nil
	}
	fmt.Printf("%s @%s (%s)\n", sess.User.Name, sess.User.Username, sess.User.Role)
	return nil
}

func printHelp(w io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#38bdf8")).
		Bold(true).
		Render("A T U R M A T I O N")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Inventory, from the comfort of your terminal.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"aturmation", "Open the inventory TUI"},
		{"aturmation login", "Sign in and store the session"},
		{"aturmation register", "Create an account"},
		{"aturmation whoami", "Show the signed-in account"},
		{"aturmation logout", "Clear the stored session"},
		{"aturmation --version", "Show version"},
		{"aturmation help", "You are here"},
	}

	fmt.Fprintf(w, "\n  %s\n\n  %s\n\n  Commands:\n", title, tagline)
	for _, c := range commands {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", c.cmd)), descStyle.Render(c.desc))
	}
	env := descStyle.Render("ATURMATION_API_URL, ATURMATION_TOKEN, ATURMATION_PAGE_SIZE, ATURMATION_LOG_LEVEL, ATURMATION_LOG_FILE")
	fmt.Fprintf(w, "\n  Environment:\n    %s\n\n", env)
}
