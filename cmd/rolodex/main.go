package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/five82/rolodex/internal/app"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flagSet := pflag.NewFlagSet("rolodex", pflag.ContinueOnError)
	configPath := flagSet.String("config", "", "override config path (optional)")
	prefsPath := flagSet.String("prefs", "", "override preferences path (optional)")
	pollSeconds := flagSet.Int("poll", 0, "refresh interval in seconds (optional, defaults to the config value)")
	importFile := flagSet.String("import", "", "import contacts from a YAML file and exit")
	search := flagSet.StringP("search", "s", "", "open a fixed result view for this search term")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "rolodex: %v\n", err)
		return 2
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		fmt.Fprintf(os.Stderr, "rolodex: unexpected argument: %s\n", rest[0])
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *importFile != "" {
		n, err := app.Import(ctx, *configPath, *importFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rolodex: %v\n", err)
			return 1
		}
		fmt.Printf("imported %d contacts\n", n)
		return 0
	}

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		Search:     *search,
	}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "rolodex: %v\n", err)
		return 1
	}
	return 0
}
