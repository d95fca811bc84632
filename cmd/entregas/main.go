// Command entregas records sales and deliveries in a local SQLite file.
package main

import (
	"os"

	"github.com/roach88/entregas/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
