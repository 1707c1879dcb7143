package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/tombowditch/codedump/client"
	"github.com/tombowditch/codedump/internal/cli"
)

var (
	version = "dev"
	commit  = ""
)

func main() {
	v := version
	if commit != "" {
		v += " (" + commit + ")"
	}

	root := cli.New(v)
	if err := root.ExecuteContext(context.Background()); err != nil {
		if client.IsNoAPIKey(err) {
			slog.Error("no API key defined; set CODEDUMP_TOKEN_KEY or pass --key")
			os.Exit(1)
		}
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
