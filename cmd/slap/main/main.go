package main

import (
	"os"

	"github.com/slapcli/slap/cmd/slap"
)

func main() {
	os.Exit(slap.Execute())
}
