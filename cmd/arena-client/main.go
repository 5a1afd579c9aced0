// FILE: cmd/arena-client/main.go
// Package main implements an interactive debugging client for the arena server API.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"arena/internal/client/api"
	"arena/internal/client/commands"
	"arena/internal/client/display"
	"arena/internal/client/session"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080", "Arena server base URL")
	flag.Parse()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		display.Disable()
	}

	client := api.New(*apiURL)
	client.Out = os.Stdout
	s := &session.Session{
		APIBaseURL: *apiURL,
		Client:     client,
	}

	registry := commands.NewRegistry(s)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("arena"),
		HistoryFile:     ".arena_history",
		AutoComplete:    registry.Completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sArena Debug Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, s.APIBaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" || line == "x" {
			break
		}

		if strings.HasSuffix(line, " -v") {
			s.Verbose = true
			line = strings.TrimSuffix(line, " -v")
		} else {
			s.Verbose = false
		}

		registry.Execute(line)
	}
	display.Println(display.Cyan, "Goodbye!")
}

func buildPrompt(s *session.Session) string {
	promptStr := "arena"
	if s.CurrentMatch != "" {
		id := s.CurrentMatch
		if len(id) > 8 {
			id = id[:8]
		}
		promptStr += display.Yellow + " [" + display.White + id + display.Yellow + "]" + display.Reset
	}
	if s.Board != nil {
		promptStr += " - To move:" + display.ColorForPlayer(s.Board.CurrentPlayer)
	}
	if s.Match != nil {
		promptStr += " (" + s.Match.Status + ")"
	}
	return display.Prompt(promptStr)
}
