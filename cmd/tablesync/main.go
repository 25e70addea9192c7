// Command tablesync syncs Airtable tables into a database.
package main

import (
	"context"
	"os"

	"github.com/custodia-labs/tablesync/internal/adapters/driving/cli"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(context.Background(), version); err != nil {
		os.Exit(1)
	}
}
