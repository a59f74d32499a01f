package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"julenisse/app"
	"julenisse/config"
	"julenisse/models"
	"julenisse/services"
	"julenisse/services/agent"

	"github.com/spf13/cobra"
)

const exitWord = "slutt"

type chatAgent interface {
	ProcessMessage(ctx context.Context, threadID, input string, onToken agent.TokenFunc) (*models.AgentResponse, error)
}

type chatOptions struct {
	threadID   string
	sqlitePath string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &chatOptions{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Snakk med Julenissen i terminalen",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChatCommand(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.threadID, "thread", "", "resume an existing conversation thread")
	cmd.Flags().StringVar(&opts.sqlitePath, "sqlite", "", "store reputations and threads in this SQLite file instead of Postgres")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "print service logs")

	return cmd
}

func runChatCommand(cmd *cobra.Command, opts *chatOptions) error {
	if !opts.verbose {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.sqlitePath != "" {
		cfg.DatabaseDriver = config.DriverSQLite
		cfg.DatabaseURL = opts.sqlitePath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	out := cmd.OutOrStdout()
	threadID := opts.threadID
	if threadID == "" {
		threadID = application.Threads.NewThreadID()
	}
	fmt.Fprintf(out, "Samtale: %s\n", threadID)

	history, err := application.Threads.VisibleHistory(ctx, threadID)
	if err != nil {
		return err
	}
	printHistory(out, history)

	return runChat(ctx, cmd.InOrStdin(), out, application.Agent, threadID)
}

func printHistory(out io.Writer, history []models.AgentMessage) {
	if len(history) == 0 {
		fmt.Fprintf(out, "Julenissen: %s\n", services.Greeting)
		return
	}

	for _, msg := range history {
		speaker := "Deg"
		if msg.Role == models.RoleAssistant {
			speaker = "Julenissen"
		}
		fmt.Fprintf(out, "%s: %s\n", speaker, msg.Content)
	}
}

// runChat reads lines until the exit word or end of input, streaming each
// reply as it arrives.
func runChat(ctx context.Context, in io.Reader, out io.Writer, chat chatAgent, threadID string) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "Deg: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(line, exitWord) {
			return nil
		}
		if line == "" {
			continue
		}

		fmt.Fprint(out, "Julenissen: ")
		_, err := chat.ProcessMessage(ctx, threadID, line, func(token string) {
			fmt.Fprint(out, token)
		})
		fmt.Fprintln(out)
		if err != nil {
			fmt.Fprintf(out, "Noe gikk galt: %v\n", err)
		}
	}
}
