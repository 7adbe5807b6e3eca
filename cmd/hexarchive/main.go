// Command hexarchive extracts files from a hex-dumped archive.
package main

import (
	"os"

	"github.com/meigma/hexarchive/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
