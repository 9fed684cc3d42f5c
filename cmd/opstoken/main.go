// Command opstoken mints a bearer token for the server's /api routes.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"lbry-tech/internal/auth"
	"lbry-tech/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (environment variables when empty)")
	subject := flag.String("sub", "ops", "token subject, shown in the server's request context")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	token, err := auth.NewService(cfg.Ops.JWTSecret).Issue(*subject, *ttl)
	if err != nil {
		log.Fatalf("❌ Failed to issue token: %v", err)
	}

	fmt.Fprintln(os.Stdout, token)
}
