// FILE: internal/client/commands/debug.go
package commands

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"arena/internal/client/display"
	"arena/internal/core"
)

func (r *Registry) registerDebugCommands() {
	r.Register(&Command{
		Name:        "health",
		Group:       groupUtility,
		ShortName:   ".",
		Description: "Check server health",
		Usage:       "health",
		Handler:     healthHandler,
	})

	r.Register(&Command{
		Name:        "url",
		Group:       groupUtility,
		ShortName:   "/",
		Description: "Set API base URL",
		Usage:       "url [apiUrl]",
		Handler:     urlHandler,
	})

	r.Register(&Command{
		Name:        "raw",
		Group:       groupUtility,
		ShortName:   ":",
		Description: "Send raw API request",
		Usage:       "raw <method> <path> [json-body]",
		Handler:     rawRequestHandler,
	})

	r.Register(&Command{
		Name:        "clear",
		Group:       groupUtility,
		ShortName:   "-",
		Description: "Clear screen",
		Usage:       "clear",
		Handler:     clearHandler,
	})

	r.Register(&Command{
		Name:        "agents",
		Group:       groupService,
		ShortName:   "g",
		Description: "List agent tiers",
		Usage:       "agents",
		Handler:     agentsHandler,
	})

	r.Register(&Command{
		Name:        "personalities",
		Group:       groupService,
		ShortName:   "y",
		Description: "List personality profiles",
		Usage:       "personalities",
		Handler:     personalitiesHandler,
	})

	r.Register(&Command{
		Name:        "report",
		Group:       groupService,
		ShortName:   "r",
		Description: "Show the performance report",
		Usage:       "report",
		Handler:     reportHandler,
	})

	r.Register(&Command{
		Name:        "stress",
		Group:       groupService,
		ShortName:   "z",
		Description: "Run a server-side stress test",
		Usage:       "stress [games] [movesPerGame]",
		Handler:     stressHandler,
	})
}

func healthHandler(s Session, args []string) error {
	resp, err := s.GetClient().Health()
	if err != nil {
		return err
	}

	fmt.Printf("%sServer Health:%s\n", display.Cyan, display.Reset)
	fmt.Printf("  Status:  %s\n", resp.Status)
	t := time.Unix(resp.Time, 0)
	fmt.Printf("  Time:    %s\n", t.Format("2006-01-02 15:04:05"))
	if resp.Storage != "" {
		fmt.Printf("  Storage: %s\n", resp.Storage)
	}
	return nil
}

func urlHandler(s Session, args []string) error {
	if len(args) == 0 {
		fmt.Printf("Current API URL: %s\n", s.GetAPIBaseURL())
		return nil
	}

	url := args[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}

	s.SetAPIBaseURL(url)
	s.GetClient().SetBaseURL(url)

	fmt.Printf("%sAPI URL set to: %s%s\n", display.Cyan, url, display.Reset)
	return nil
}

func rawRequestHandler(s Session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: raw <method> <path> [json-body]")
	}

	method := strings.ToUpper(args[0])
	path := args[1]

	body := ""
	if len(args) > 2 {
		body = strings.Join(args[2:], " ")
	}
	return s.GetClient().RawRequest(method, path, body)
}

func clearHandler(s Session, args []string) error {
	cmd := exec.Command("clear")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func agentsHandler(s Session, args []string) error {
	agents, err := s.GetClient().Agents()
	if err != nil {
		return err
	}
	fmt.Printf("%s%-8s %-8s %-6s %-8s %-8s%s\n", display.Cyan, "TIER", "ALGO", "DEPTH", "TARGET", "MAX", display.Reset)
	for _, a := range agents {
		fmt.Printf("%-8s %-8s %-6d %-8.0f %-8.0f\n", a.Difficulty, a.Algorithm, a.SearchDepth, a.TargetTimeMs, a.MaxTimeMs)
	}
	return nil
}

func personalitiesHandler(s Session, args []string) error {
	profiles, err := s.GetClient().Personalities()
	if err != nil {
		return err
	}
	fmt.Printf("%s%-11s %-6s %-6s %-6s %-6s %-6s%s\n", display.Cyan, "NAME", "AGGR", "RISK", "PAT", "BIAS", "PREF", display.Reset)
	for _, p := range profiles {
		fmt.Printf("%-11s %-6.2f %-6.2f %-6.2f %-6.2f %-6.2f\n",
			p.Name, p.Aggression, p.RiskTolerance, p.Patience, p.CaptureBias, p.CapturePreference)
	}
	return nil
}

func reportHandler(s Session, args []string) error {
	rep, err := s.GetClient().Report()
	if err != nil {
		return err
	}
	display.PrettyPrintJSON(rep)
	return nil
}

func stressHandler(s Session, args []string) error {
	req := core.StressTestRequest{ConcurrentGames: 100, MovesPerGame: 10}
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid game count: %s", args[0])
		}
		req.ConcurrentGames = n
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid move count: %s", args[1])
		}
		req.MovesPerGame = n
	}

	fmt.Printf("%sRunning %d games of up to %d moves...%s\n", display.Magenta, req.ConcurrentGames, req.MovesPerGame, display.Reset)
	rep, err := s.GetClient().StressTest(req)
	if err != nil {
		return err
	}
	display.PrettyPrintJSON(rep)
	return nil
}
