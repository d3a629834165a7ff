// Seeds the default BAS account plan for one user or for every user that is
// missing accounts. Safe to re-run: existing accounts are left alone.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/nordsaldo/bokforing_backend/appctx"
	"bitbucket.org/nordsaldo/bokforing_backend/config"
	"bitbucket.org/nordsaldo/bokforing_backend/models"
)

func main() {
	userId := flag.Int("user-id", 0, "Optional: seed only one user. If 0, seeds all users.")
	flag.Parse()

	// background job: no request user, so the tenant guard must stand down
	ctx := appctx.Set(context.Background(), appctx.ContextKeySkipTenantScope, true)
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	models.MigrateTable()

	var userIds []int
	if *userId > 0 {
		userIds = []int{*userId}
	} else {
		err := db.WithContext(ctx).Model(&models.User{}).Pluck("id", &userIds).Error
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to list users: %v\n", err)
			os.Exit(1)
		}
	}
	if len(userIds) == 0 {
		fmt.Fprintln(os.Stderr, "no users found to seed")
		os.Exit(1)
	}

	for _, id := range userIds {
		created, err := models.SeedAccountsForUser(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "user %d: %v\n", id, err)
			os.Exit(1)
		}
		fmt.Printf("user %d: %d accounts created\n", id, created)
	}
}
