// README: Issues HS256 bearer tokens for local development against jwt auth mode.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"transfers/internal/config"
	"transfers/internal/infra"
)

func main() {
	subject := flag.String("sub", "dev-admin", "token subject (uid)")
	email := flag.String("email", "", "email claim; client routes require it")
	role := flag.String("role", "admin", `role claim ("admin" or empty for a client)`)
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Auth.Mode != config.AuthModeJWT {
		log.Fatalf("auth mode is %q; tokens are only accepted in jwt mode", cfg.Auth.Mode)
	}

	token, err := infra.SignJWT(cfg.Auth.JWTSecret, *subject, *email, *role, *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
