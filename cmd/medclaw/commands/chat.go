package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/jholhewres/medclaw/pkg/medclaw/assistant"
	"github.com/spf13/cobra"
)

// newChatCmd creates the `medclaw chat` command for medication questions.
func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask medication questions",
		Long: `Starts a conversation with the assistant. Send a single question
directly or enter interactive mode (no arguments).

Examples:
  medclaw chat "What is metformin used for?"
  medclaw chat  # interactive mode`,
		Args: cobra.MaximumNArgs(1),
		RunE: runChat,
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := buildAssistant(cmd)
	if err != nil {
		return err
	}
	if err := requireKey(a); err != nil {
		return err
	}

	if len(args) > 0 {
		reply, err := a.Ask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(reply)
		return nil
	}

	return runChatREPL(cmd, a)
}

// runChatREPL runs the interactive loop. One session spans the whole loop,
// so follow-up questions keep their context; /new starts over.
func runChatREPL(cmd *cobra.Command, a *assistant.Assistant) error {
	rl, err := readline.New("you> ")
	if err != nil {
		return fmt.Errorf("starting interactive mode: %w", err)
	}
	defer rl.Close()

	fmt.Println("MedClaw medication assistant. Type your question, or 'exit' to quit.")
	fmt.Println("Commands: /new (fresh conversation), /history (show exchange count)")
	fmt.Println()

	session := a.NewSession()
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit":
			return nil
		case line == "/new":
			session = a.NewSession()
			fmt.Println("Started a fresh conversation.")
			continue
		case line == "/history":
			fmt.Printf("%d messages in this conversation.\n", session.HistoryLen())
			continue
		}

		reply, err := a.Chat(cmd.Context(), session, line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Printf("\n%s\n\n", reply)
	}
}
