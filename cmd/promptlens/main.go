// Package main provides the promptlens command line tool. It collects the
// images of a web page and turns each one into a text-to-image prompt, and it
// groups, searches and summarizes browser tabs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/promptlens/pkg/logging"
)

const version = "0.1.0"

// errUsage is returned after usage has been printed.
var errUsage = errors.New("invalid usage")

// app holds the state shared by all commands.
type app struct {
	storePath string
	logger    *logging.Logger
}

func main() {
	global := flag.NewFlagSet("promptlens", flag.ExitOnError)
	storePath := global.String("store", "", "Settings file (default ~/.promptlens/config.json)")
	showVersion := global.Bool("version", false, "Show version and exit")
	global.Usage = usage(global)
	_ = global.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("promptlens v%s\n", version)
		return
	}

	args := global.Args()
	if len(args) == 0 {
		global.Usage()
		os.Exit(2)
	}

	logger, err := logging.NewLogger("cli")
	if err != nil {
		log.Printf("File logging unavailable: %v", err)
	}
	defer logger.Close()

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nStopping...")
		cancel()
	}()

	a := &app{storePath: *storePath, logger: logger}
	if runErr := a.dispatch(ctx, args[0], args[1:]); runErr != nil {
		cancel()
		if errors.Is(runErr, errUsage) || errors.Is(runErr, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.Errorf("%s failed: %v", args[0], runErr)
		log.Fatalf("Error: %v", runErr)
	}
	cancel()
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "scrape":
		return a.runScrape(ctx, args)
	case "tabs":
		return a.runTabs(ctx, args)
	case "settings":
		return a.runSettings(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		return errUsage
	}
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "promptlens - image prompts and tab tools for web pages\n\n")
		fmt.Fprintf(os.Stderr, "Usage: promptlens [options] <command> [command options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  scrape              Generate a prompt for every image on a page\n")
		fmt.Fprintf(os.Stderr, "  tabs                Group tabs by domain, optionally filtered\n")
		fmt.Fprintf(os.Stderr, "  tabs summarize      Summarize a page in one sentence\n")
		fmt.Fprintf(os.Stderr, "  tabs suggest        Suggest websites for a search query\n")
		fmt.Fprintf(os.Stderr, "  settings show|set   Show or change saved settings\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PROMPTLENS_API_KEY   API key (GEMINI_API_KEY is also read)\n")
		fmt.Fprintf(os.Stderr, "  PROMPTLENS_BASE_URL  OpenAI-compatible API base URL\n")
		fmt.Fprintf(os.Stderr, "  PROMPTLENS_LOG_LEVEL Log file level: debug, info, warn, error\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  promptlens scrape -url https://example.com/gallery\n")
		fmt.Fprintf(os.Stderr, "  promptlens scrape -config run.yaml -copy\n")
		fmt.Fprintf(os.Stderr, "  promptlens tabs -file tabs.json -search docs -exclude '*.internal'\n")
		fmt.Fprintf(os.Stderr, "  promptlens settings set aiModel=gemini-1.5-pro apiKey=...\n")
	}
}
