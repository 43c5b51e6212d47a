package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	BioLogin(ctx context.Context) error
	Status(ctx context.Context) error
	Profile(ctx context.Context) error
	Refresh(ctx context.Context) error
	BioOn(ctx context.Context) error
	BioOff(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the SessionKeeper CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account
//	  - login          — authenticate with email and password
//	  - biologin       — authenticate with saved biometric credentials
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - status         — show session and user details
//	  - profile        — edit the profile
//	  - refresh        — force a token refresh
//	  - bio on|off     — enable or disable biometric login
//	  - logout         — log out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("sk> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: status, profile, refresh, bio on, bio off, logout, exit")
			} else {
				printlnFn("Available commands: register, login, biologin, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "biologin":
			_ = a.BioLogin(ctx)

		case "status":
			_ = a.Status(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "bio":
			if len(parts) < 2 {
				printlnFn("Usage: bio on|off")
				continue
			}
			switch parts[1] {
			case "on":
				_ = a.BioOn(ctx)
			case "off":
				_ = a.BioOff(ctx)
			default:
				printlnFn("Usage: bio on|off")
			}

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
