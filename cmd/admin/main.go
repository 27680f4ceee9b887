package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/portfolio/internal/admin"
	"github.com/dmitrijs2005/portfolio/internal/server/config"
)

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := admin.NewApp(cfg, os.Stdout).Run(ctx, os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}

}
