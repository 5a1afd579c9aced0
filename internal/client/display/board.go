// FILE: internal/client/display/board.go
package display

import (
	"fmt"
	"strings"

	"arena/internal/core"
)

// RenderBoard prints an ASCII board with player one in blue and player two
// in red. The first and last lines are file headers.
func RenderBoard(asciiBoard string) {
	lines := strings.Split(asciiBoard, "\n")
	last := len(lines) - 1

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		header := i == 0 || i == last

		for _, char := range line {
			switch {
			case header && char >= 'a' && char <= 'z':
				fmt.Printf("%s%c%s", Cyan, char, Reset)
			case char >= 'A' && char <= 'Z':
				fmt.Printf("%s%c%s", Blue, char, Reset)
			case char >= 'a' && char <= 'z':
				fmt.Printf("%s%c%s", Red, char, Reset)
			case char >= '0' && char <= '9':
				fmt.Printf("%s%c%s", Cyan, char, Reset)
			default:
				fmt.Printf("%c", char)
			}
		}
		fmt.Println()
	}
}

// ColorForPlayer returns a colored side name
func ColorForPlayer(p core.Player) string {
	switch p {
	case core.PlayerOne:
		return Blue + "One" + Reset
	case core.PlayerTwo:
		return Red + "Two" + Reset
	}
	return "-"
}
