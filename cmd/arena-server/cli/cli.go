// FILE: cmd/arena-server/cli/cli.go
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"arena/internal/storage"
)

// Run is the entry point for the db maintenance mini-app
func Run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query, moves")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:])
	case "delete":
		return runDelete(args[1:])
	case "query":
		return runQuery(args[1:])
	case "moves":
		return runMoves(args[1:])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func openStore(fs *flag.FlagSet, args []string) (*storage.Store, *string, error) {
	path := fs.String("path", "", "Database file path (required)")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if *path == "" {
		return nil, nil, fmt.Errorf("database path required")
	}
	store, err := storage.NewStore(*path, false, zerolog.Nop())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, path, nil
}

func runInit(args []string) error {
	store, path, err := openStore(flag.NewFlagSet("init", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Printf("Database initialized at: %s\n", *path)
	return nil
}

func runDelete(args []string) error {
	store, path, err := openStore(flag.NewFlagSet("delete", flag.ContinueOnError), args)
	if err != nil {
		return err
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Printf("Database deleted: %s\n", *path)
	return nil
}

func runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	matchID := fs.String("matchId", "", "Match ID to filter (optional, * for all)")
	agentKey := fs.String("agent", "", "Agent key difficulty/personality to filter (optional, * for all)")
	store, _, err := openStore(fs, args)
	if err != nil {
		return err
	}
	defer store.Close()

	matches, err := store.QueryMatches(*matchID, *agentKey)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(matches) == 0 {
		fmt.Println("No matches found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Match ID\tAgent A\tAgent B\tStatus\tWinner\tMoves\tCreated")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, m := range matches {
		fmt.Fprintf(w, "%s\t%s (%s)\t%s (%s)\t%s\t%d\t%d\t%s\n",
			short(m.MatchID),
			m.AgentAKey, m.AgentAKind,
			m.AgentBKey, m.AgentBKind,
			m.Status,
			m.Winner,
			m.MoveCount,
			m.CreatedAtUTC.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	fmt.Printf("\nFound %d match(es)\n", len(matches))
	return nil
}

func runMoves(args []string) error {
	fs := flag.NewFlagSet("moves", flag.ContinueOnError)
	matchID := fs.String("matchId", "", "Match ID (required)")
	store, _, err := openStore(fs, args)
	if err != nil {
		return err
	}
	defer store.Close()

	if *matchID == "" {
		return fmt.Errorf("match ID required")
	}
	moves, err := store.QueryMoves(*matchID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPlayer\tMove\tPiece\tCaptured\tLatency")
	for _, m := range moves {
		fmt.Fprintf(w, "%d\t%d\t%s-%s\t%s\t%s\t%.2fms\n",
			m.MoveNumber, m.Player, m.FromSquare, m.ToSquare, m.Piece, m.Captured, m.LatencyMs)
	}
	w.Flush()

	fmt.Printf("\n%d move(s)\n", len(moves))
	return nil
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}
