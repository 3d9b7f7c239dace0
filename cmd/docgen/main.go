// Command docgen serves and renders documents from versioned templates.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/alnah/go-docgen/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

// ErrUsage reports an unknown command or invalid arguments.
var ErrUsage = errors.New("usage error")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	code := runMain(ctx, os.Args[1:], DefaultEnv())
	stop()
	os.Exit(code)
}

// runMain dispatches to a subcommand and maps its error to an exit code.
// With no command, or when the first argument is a flag, it serves.
func runMain(ctx context.Context, args []string, env *Environment) int {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe(ctx, args, env)
	case "render":
		err = runRender(ctx, args, env)
	case "templates":
		err = runTemplates(args, env)
	case "doctor":
		return runDoctor(ctx, args, env)
	case "version":
		fmt.Fprintf(env.Stdout, "docgen %s\n", Version)
		return ExitSuccess
	case "help":
		printUsage(env.Stdout)
		return ExitSuccess
	default:
		err = fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
		printUsage(env.Stderr)
	}

	if err != nil {
		fmt.Fprintf(env.Stderr, "docgen %s: %v%s\n", cmd, err, hintFor(err))
	}
	return exitCodeFor(err)
}

// hintFor adds command-level hints to the library ones.
func hintFor(err error) string {
	if errors.Is(err, ErrWriteOutput) {
		return hints.ForOutputDirectory()
	}
	return hints.For(err)
}
