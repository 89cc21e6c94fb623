package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/feedbackhub/backend/internal/auth"
	"github.com/zhouzirui/feedbackhub/backend/internal/config"
	"github.com/zhouzirui/feedbackhub/backend/internal/service/intake"
)

// ownertoken mints a bearer token for an account owner, for local testing
// against the owner-only routes.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] failed to load .env, using system environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	handle := flag.String("handle", "", "account handle the token is issued for")
	ttl := flag.Duration("ttl", cfg.Auth.TokenTTL, "token lifetime")
	flag.Parse()

	if !cfg.Auth.Enabled() {
		log.Fatal("AUTH_JWT_SECRET is not set")
	}
	if err := intake.ValidateHandle(*handle); err != nil {
		flag.Usage()
		log.Fatalf("invalid -handle: %v", err)
	}

	token, err := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer).Issue(*handle, *ttl)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}
	fmt.Println(token)
}
