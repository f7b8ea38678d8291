package main

import (
	"fmt"
	"os"

	"github.com/fjod/swordshop/internal/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "swordshop",
		Usage: "cart and checkout engine for the sword shop storefront",
		Commands: []*cli.Command{
			serveCommand(),
			productsCommand(),
		},
	}

	err := app.Run(os.Args)
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
