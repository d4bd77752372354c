// tokengen issues an access token for local development and operational
// scripts. Production tokens come from the identity provider in front of this
// service; this tool just signs one with the configured secret.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/memento-hq/funeraria-backend-go/internal/config"
	"github.com/memento-hq/funeraria-backend-go/internal/pkg/jwt"
)

func main() {
	userID := flag.String("user", "", "user id claim")
	organizationID := flag.String("org", "", "organization id claim")
	role := flag.String("role", "admin", "role claim")
	flag.Parse()

	if *userID == "" || *organizationID == "" {
		fmt.Fprintln(os.Stderr, "usage: tokengen -user <uuid> -org <uuid> [-role <role>]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	token, expiresAt, err := jwtService.GenerateAccessToken(*userID, *organizationID, *role)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at unix %d\n", expiresAt)
}
