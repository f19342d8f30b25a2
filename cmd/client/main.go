package main

import (
	"context"
	"log"
	"os"

	"guestsnap/internal/client/cli"
	"guestsnap/internal/client/config"
	"guestsnap/internal/flagx"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	args := flagx.StripArgs(os.Args[1:],
		[]string{"-a", "-e", "-n", "-d", "-b", "-r", "-c", "-config"})

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	if err := app.Run(ctx, args); err != nil {
		log.Fatalf("%v", err)
	}
}
