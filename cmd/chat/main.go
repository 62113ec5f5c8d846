package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"propertybot/internal/config"
	"propertybot/internal/widget"
)

var (
	serverURL string
	useWS     bool
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the property search assistant",
	Long: `Opens an interactive chat with the property server. Type a request such
as "3 bedroom flat in Lekki"; /open and /close toggle the panel and /quit exits.`,
	Args: cobra.NoArgs,
	RunE: runInteractive,
}

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Send one message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "chat server base URL (default CHAT_SERVER_URL)")
	rootCmd.PersistentFlags().BoolVar(&useWS, "ws", false, "talk to the server over a websocket")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "per-message timeout (0 waits for the server)")
	rootCmd.AddCommand(askCmd)
}

// newSender returns the transport chosen by flags and a func releasing it.
func newSender() (widget.Sender, func(), error) {
	base := serverURL
	if base == "" {
		base = config.ServerURL()
	}

	if useWS {
		ws, err := widget.NewWSClient(base)
		if err != nil {
			return nil, nil, err
		}
		return ws, func() { ws.Close() }, nil
	}
	return widget.NewHTTPClient(base, nil), func() {}, nil
}

func newController(out io.Writer, sender widget.Sender) *widget.Controller {
	return widget.New(sender,
		widget.WithHost(newTerminalHost(out)),
		widget.WithErrorHook(func(err error) {
			fmt.Fprintln(os.Stderr, mutedStyle.Render("  ("+err.Error()+")"))
		}),
	)
}

func runAsk(cmd *cobra.Command, args []string) error {
	sender, release, err := newSender()
	if err != nil {
		return err
	}
	defer release()

	c := newController(cmd.OutOrStdout(), sender)
	ctx, cancel := messageContext(cmd.Context(), timeout)
	defer cancel()
	c.SubmitMessage(ctx, strings.Join(args, " "))

	if last, ok := c.Transcript().Last(); ok && last.Message.Text == widget.ErrorText {
		return fmt.Errorf("server unreachable")
	}
	return nil
}

func runInteractive(cmd *cobra.Command, args []string) error {
	sender, release, err := newSender()
	if err != nil {
		return err
	}
	defer release()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	c := newController(cmd.OutOrStdout(), sender)
	c.Open()
	return repl(ctx, cmd.InOrStdin(), c)
}

// messageContext bounds one send by d. Zero leaves the send unbounded so a
// slow search is never reported as a failure.
func messageContext(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}

// repl feeds input lines to c until EOF, /quit or ctx is done.
func repl(ctx context.Context, in io.Reader, c *widget.Controller) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/open":
			c.Open()
			continue
		case "/close":
			c.Close()
			continue
		}

		if !c.Visible() {
			c.Open()
		}
		msgCtx, cancel := messageContext(ctx, timeout)
		c.SubmitMessage(msgCtx, line)
		cancel()
	}
	return scanner.Err()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
