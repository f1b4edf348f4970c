// The mledger REPL: load a statement text file and ask questions about it
// from the terminal, no server required.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"mledger/internal/assistant"
	"mledger/internal/core"
	"mledger/internal/statement"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment")
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	var (
		file    = flag.String("f", "", "statement text file to load")
		noDelay = flag.Bool("no-delay", false, "answer immediately instead of simulating typing")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: mledger-cli -f statement.txt [-no-delay]")
		os.Exit(2)
	}

	text, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", *file, err)
		os.Exit(1)
	}

	txns, err := statement.Parse(string(text))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse %s: %v\n", *file, err)
		os.Exit(1)
	}

	snap := core.NewSnapshot(txns)
	responder := assistant.NewResponder()
	if *noDelay {
		responder = &assistant.Responder{}
	}

	fmt.Printf("Loaded %s from %s. Ask away (ctrl-d to quit).\n\n", statement.Describe(txns), *file)

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		answer, err := responder.Respond(ctx, snap, question)
		if err != nil {
			break
		}
		if strings.TrimSpace(answer) == "" {
			answer = assistant.NoResponse
		}
		fmt.Printf("\nAssistant: %s\n\n", answer)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "input error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("\nBye!")
}
