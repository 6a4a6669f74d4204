// cmd/coil/main.go
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/LowLevelDaniel/COIL/cmd/coil/commands"
)

const VERSION = "0.1.0"

// Build variables - can be set during build with ldflags
var (
	BuildDate = time.Now().Format("2006-01-02")
	GitCommit = "unknown"
)

// Command aliases mapping
var commandAliases = map[string]string{
	"c": "compile",
	"a": "assemble",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
		args[0] = alias
	}

	if cmd == "--help" || cmd == "-h" || cmd == "help" {
		if len(args) > 1 {
			showCommandHelp(args[1])
		} else {
			showUsage()
		}
		return
	}

	if cmd == "--version" || cmd == "-v" || cmd == "version" {
		showVersion()
		return
	}

	var err error
	switch cmd {
	case "compile":
		err = commands.CompileCommand(args[1:])
	case "assemble":
		err = commands.AssembleCommand(args[1:])
	default:
		suggestCommand(cmd)
		return
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println("coil - COIL/HOIL compiler toolchain driver")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  coil compile <file.hoil>   Parse (and optionally validate/optimize) HOIL, write a .coil binary (alias: c)")
	fmt.Println("  coil assemble <file.coil>  Decode a .coil binary, emit native code or assembly (alias: a)")
	fmt.Println()
	fmt.Println("Help:")
	fmt.Println("  coil help <command>        Show detailed help for a command")
	fmt.Println("  coil --version             Show version information")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  coil compile foo.hoil --validate --optimize -o foo.coil")
	fmt.Println("  coil assemble foo.coil --opt-level normal --emit native -o foo.bin")
	fmt.Println("  coil assemble foo.coil --emit asm -o foo.s")
}

func showVersion() {
	fmt.Printf("coil v%s\n", VERSION)
	fmt.Printf("Build Date: %s\n", BuildDate)
	if GitCommit != "unknown" {
		fmt.Printf("Git Commit: %s\n", GitCommit)
	}
}

func showCommandHelp(command string) {
	if alias, ok := commandAliases[command]; ok {
		command = alias
	}

	help := map[string]string{
		"compile": `coil compile - parse HOIL source into a binary container

USAGE:
  coil compile <file.hoil> [flags]

FLAGS:
  --dump-ast      print the parsed module before validation/optimization
  --validate      run the semantic analyzer
  --optimize      run a basic-level optimizer pass
  -o <path>       output .coil path (default: input path with .coil extension)`,
		"assemble": `coil assemble - decode a binary container into native code or assembly

USAGE:
  coil assemble <file.coil> [flags]

FLAGS:
  --target <name>      target configuration name (default: "default")
  --opt-level <level>  none|basic|normal|aggressive (default: "none")
  --experimental       enable the optimizer's reserved aggressive-level hooks
  --dump-ir            print the decoded module before codegen
  --verbose            print the target summary before codegen
  --emit <kind>        native|asm (default: "native")
  -o <path>            output path (default: input path with .bin or .s extension)`,
	}

	if text, ok := help[command]; ok {
		fmt.Println(text)
		return
	}
	fmt.Fprintf(os.Stderr, "No detailed help for %q\n", command)
	showUsage()
}

// suggestCommand suggests similar commands when an unknown command is entered.
func suggestCommand(cmd string) {
	allCommands := []string{"compile", "assemble", "help", "version"}

	fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", cmd)

	suggestions := findSimilarCommands(cmd, allCommands, 3)
	if len(suggestions) > 0 {
		fmt.Fprintln(os.Stderr, "\nDid you mean one of these?")
		for _, suggestion := range suggestions {
			alias := ""
			for a, fullCmd := range commandAliases {
				if fullCmd == suggestion {
					alias = fmt.Sprintf(" (alias: %s)", a)
					break
				}
			}
			fmt.Fprintf(os.Stderr, "  coil %s%s\n", suggestion, alias)
		}
	}

	fmt.Fprintln(os.Stderr, "\nRun 'coil help' to see all available commands")
	os.Exit(1)
}

func findSimilarCommands(input string, commands []string, maxDistance int) []string {
	var similar []string
	for _, cmd := range commands {
		if levenshteinDistance(input, cmd) <= maxDistance {
			similar = append(similar, cmd)
		}
	}
	return similar
}

func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			matrix[i][j] = minInt(
				matrix[i-1][j]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j-1]+cost,
			)
		}
	}

	return matrix[len(s1)][len(s2)]
}

func minInt(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
