package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopsage/shopsage/internal/agent"
	"github.com/shopsage/shopsage/internal/dependency"
)

var askMessage string

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask the agent a question",
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askMessage, "message", "m", "", "Ask a single question and exit")
}

var exitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

func runAsk(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listenForSignals(cancel)

	container, err := dependency.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	orchestrator, err := container.Orchestrator()
	if err != nil {
		return err
	}

	if askMessage != "" {
		return runSingleQuestion(ctx, orchestrator, askMessage)
	}
	return runInteractive(ctx, orchestrator)
}

// runSingleQuestion answers one question and prints the response.
func runSingleQuestion(ctx context.Context, orchestrator *agent.Orchestrator, question string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	result := orchestrator.Run(ctx, question, printProgress)
	printResult(result)
	return nil
}

// runInteractive starts the REPL loop: reads questions from stdin and
// answers each before prompting again.
func runInteractive(ctx context.Context, orchestrator *agent.Orchestrator) error {
	fmt.Println("Interactive mode (type 'exit' or Ctrl+C to quit)")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("You: ")

		if !scanner.Scan() {
			fmt.Println("\nGoodbye!")
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if exitCommands[strings.ToLower(line)] {
			fmt.Println("Goodbye!")
			return nil
		}

		result := orchestrator.Run(ctx, line, printProgress)
		printResult(result)
	}
}

// listenForSignals cancels ctx on SIGINT or SIGTERM and exits.
func listenForSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nGoodbye!")
		cancel()
		os.Exit(0)
	}()
}

func printProgress(hint string) {
	fmt.Fprintf(os.Stderr, "  ↳ %s\n", hint)
}

func printResult(result agent.Result) {
	fmt.Printf("\nshopsage\n%s\n\n(tools used: %s)\n\n", result.Response, result.ToolsUsed)
}
