package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/dmitrijs2005/giveaway/internal/admincli"
	"github.com/dmitrijs2005/giveaway/internal/server/config"
)

func main() {

	ctx := context.Background()
	positional, flags := admincli.SplitArgs(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := admincli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	err = app.Run(ctx, positional)
	if cerr := app.Close(); cerr != nil {
		log.Printf("close: %v", cerr)
	}
	if err != nil {
		if errors.Is(err, admincli.ErrUsage) {
			log.Print(err)
			os.Exit(2)
		}
		log.Fatalf("%v", err)
	}

}
