package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/taskhive/taskhive-api/internal/config"
	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/services"
)

// Staff and account toggles live in a CLI instead of the API so they can
// only be run with direct database access.
func main() {
	demote := flag.Bool("demote", false, "remove staff instead of granting it")
	deactivate := flag.Bool("deactivate", false, "disable the account and revoke its sessions")
	reactivate := flag.Bool("reactivate", false, "re-enable a disabled account")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: promote-staff [-demote|-deactivate|-reactivate] <email>")
		os.Exit(1)
	}
	email := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	users := services.NewUserService(db)

	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		log.Fatalf("No user found with email %s: %v", email, err)
	}

	switch {
	case *deactivate:
		if err := users.SetActive(ctx, user.ID, false); err != nil {
			log.Fatalf("Failed to deactivate account: %v", err)
		}
		fmt.Printf("Deactivated %s\n", email)
	case *reactivate:
		if err := users.SetActive(ctx, user.ID, true); err != nil {
			log.Fatalf("Failed to reactivate account: %v", err)
		}
		fmt.Printf("Reactivated %s\n", email)
	default:
		isStaff := !*demote
		if _, err := db.Pool.Exec(ctx, `
			UPDATE users SET is_staff = $1, updated_at = NOW()
			WHERE id = $2
		`, isStaff, user.ID); err != nil {
			log.Fatalf("Failed to update user: %v", err)
		}
		if isStaff {
			fmt.Printf("Promoted %s to staff\n", email)
		} else {
			fmt.Printf("Removed staff from %s\n", email)
		}
	}
}
