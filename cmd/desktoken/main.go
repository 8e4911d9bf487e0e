// Command desktoken mints a staff bearer token for the admin API, signed with
// the server's JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"

	"gym_checkin_backend/internal/config"
	"gym_checkin_backend/pkg/utils"
)

func main() {
	staff := flag.String("staff", "", "staff member the token is issued to")
	role := flag.String("role", utils.RoleAdmin, "token role (admin or desk)")
	ttl := flag.Duration("ttl", utils.DeskTokenTTL, "token lifetime")
	flag.Parse()

	if *staff == "" {
		fmt.Fprintln(os.Stderr, "desktoken: -staff is required")
		flag.Usage()
		os.Exit(2)
	}
	if *role != utils.RoleAdmin && *role != utils.RoleDesk {
		fmt.Fprintf(os.Stderr, "desktoken: unknown role %q\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "desktoken:", err)
		os.Exit(1)
	}
	if !cfg.AdminEnabled() {
		fmt.Fprintln(os.Stderr, "desktoken: JWT_SECRET is not set")
		os.Exit(1)
	}

	token, err := utils.GenerateAccessToken([]byte(cfg.JWTSecret), *staff, *role, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "desktoken:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
