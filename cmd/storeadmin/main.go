// Command storeadmin manages storefront events and content over the HTTP API.
//
//	storeadmin [-url URL] [-yes] <command> [args]
//
// Credentials come from STOREFRONT_ADMIN_USERNAME and STOREFRONT_ADMIN_PASSWORD, or a .env file.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"

	"storefront/internal/application/adminui"
	"storefront/internal/application/eventclient"
)

const usage = `usage: storeadmin [-url URL] [-yes] <command> [args]

commands:
  status                               check the admin credentials
  events list|add|edit ID|delete ID    manage events
  slides list|add|edit ID|delete ID    manage carousel slides
  testimonials list|add|edit ID|delete ID
  about show|edit                      view or edit the about section
  messages                             list contact form messages
  subscribers                          list newsletter subscribers
  audit [CATEGORY] [PAGE]              show the admin activity log
`

var errUsage = errors.New("invalid arguments")

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Getenv); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintln(os.Stderr, "storeadmin:", err)
		os.Exit(1)
	}
}

type app struct {
	client   *eventclient.Client
	in       *bufio.Scanner
	out      io.Writer
	yes      bool
	username string
	password string
	loggedIn bool
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer, getenv func(string) string) error {
	fs := flag.NewFlagSet("storeadmin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	baseURL := fs.String("url", envOr(getenv, "STOREFRONT_URL", "http://localhost:8080"), "storefront base URL")
	yes := fs.Bool("yes", false, "skip delete confirmation")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	client, err := eventclient.New(*baseURL)
	if err != nil {
		return err
	}
	a := &app{
		client:   client,
		in:       bufio.NewScanner(in),
		out:      out,
		yes:      *yes,
		username: envOr(getenv, "STOREFRONT_ADMIN_USERNAME", "admin"),
		password: getenv("STOREFRONT_ADMIN_PASSWORD"),
	}
	defer a.logout()
	return a.dispatch(ctx, fs.Args())
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "status":
		return a.status(ctx)
	case "events":
		return a.events(ctx, rest)
	case "slides":
		return a.slides(ctx, rest)
	case "testimonials":
		return a.testimonials(ctx, rest)
	case "about":
		return a.about(ctx, rest)
	case "messages":
		return a.messages(ctx)
	case "subscribers":
		return a.subscribers(ctx)
	case "audit":
		return a.audit(ctx, rest)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

// login starts an admin session once per run.
func (a *app) login(ctx context.Context) error {
	if a.loggedIn {
		return nil
	}
	if a.password == "" {
		a.password = a.ask("Password", "")
	}
	if _, err := a.client.Login(ctx, a.username, a.password); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	a.loggedIn = true
	return nil
}

func (a *app) logout() {
	if a.loggedIn {
		_ = a.client.Logout(context.Background())
	}
}

func (a *app) status(ctx context.Context) error {
	if err := a.login(ctx); err != nil {
		return err
	}
	st, err := a.client.Status(ctx)
	if err != nil {
		return err
	}
	if !st.IsAdmin {
		return errors.New("session not recognised")
	}
	fmt.Fprintf(a.out, "signed in as %s\n", st.Username)
	return nil
}

func (a *app) say(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}

// ask prompts for one line. An empty answer, or end of input, keeps current.
func (a *app) ask(label, current string) string {
	if current != "" {
		fmt.Fprintf(a.out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(a.out, "%s: ", label)
	}
	if !a.in.Scan() {
		return current
	}
	if v := strings.TrimSpace(a.in.Text()); v != "" {
		return v
	}
	return current
}

// askYesNo defaults to no.
func (a *app) askYesNo(question string) bool {
	fmt.Fprintf(a.out, "%s [y/N]: ", question)
	if !a.in.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(a.in.Text())) {
	case "y", "yes":
		return true
	}
	return false
}

// printNotice writes an editor notification.
func (a *app) printNotice(n adminui.Notice) {
	a.say("%s: %s", n.Kind, n.Message)
	for _, f := range n.Fields {
		a.say("  %s: %s", f.Field, f.Message)
	}
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}
