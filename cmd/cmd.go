// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// serveCommand runs the HTTP server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server exposing /get_song and /stream_related_songs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}

// searchCommand resolves a seed song
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Look up a seed song and print its details",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Search,
	}
}

// relatedCommand runs discovery in-process
func relatedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "related",
		Usage: "Find songs related to a seed and print them as they arrive",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown or csv",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the export to this path (markdown: directory, csv: base name, text: file)",
			},
			&cli.IntFlag{
				Name:  "max",
				Usage: "Maximum related songs to consider (overrides discovery.max_related)",
			},
		},
		Action: r.Related,
	}
}

// listenCommand acts as a client of a running server
func listenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "listen",
		Usage: "Submit a seed to a running server and print its event stream",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "song",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Name recorded with the request",
				Value:   defaultUsername(),
			},
			&cli.StringFlag{
				Name:  "server",
				Usage: "Base URL of the server (defaults to server.host and server.port)",
			},
			&cli.StringFlag{
				Name:  "session",
				Usage: "Session ID to request",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print each event as a JSON line",
			},
		},
		Action: r.Listen,
	}
}

// historyCommand lists recorded requests
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded song requests, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of requests to return",
				Value:   20,
			},
			&cli.StringFlag{
				Name:  "session",
				Usage: "Only requests for this session",
			},
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Only requests by this user",
			},
			&cli.StringFlag{
				Name:  "delete",
				Usage: "Delete the request with this ID instead of listing",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// setupCommand initializes local state
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the request history database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a config file populated with defaults",
				Action: r.SetupConfig,
			},
		},
	}
}

// tuiCommand launches the interactive UI
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Interactive related-songs explorer",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "remote",
				Usage: "Stream from a running server instead of running discovery in-process",
			},
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Name recorded with remote requests",
				Value:   defaultUsername(),
			},
		},
		Action: r.TUI,
	}
}
