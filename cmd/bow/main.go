package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Wazadriano/bow-tavira-sub002/core/appbootstrap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := appbootstrap.Run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "bow: %v\n", err)
		os.Exit(1)
	}
}
