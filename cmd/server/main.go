package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/ReC82/LodyLand/internal/config"
	"github.com/ReC82/LodyLand/internal/serverapp"
)

func main() {
	configPath := flag.String("config", "lodyland_config.yml", "path to the yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	handler, err := serverapp.NewHandler(serverapp.Options{
		Config: cfg,
		Logger: log.Default(),
	})
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	log.Printf("listening on %s", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, handler))
}
