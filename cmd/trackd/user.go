package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/uschtwill/trackd/internal/config"
	"github.com/uschtwill/trackd/internal/storage/factory"
	"github.com/uschtwill/trackd/internal/types"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user records",
}

// userAddCmd seeds a User row. Users are normally owned by the external
// identity provider; this is the operator-side substitute.
var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a user",
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		image, _ := cmd.Flags().GetString("image")
		if email == "" {
			FatalError("--email is required")
		}

		ctx := context.Background()
		store, err := factory.NewFromConfig(ctx, config.GetString("dir"))
		if err != nil {
			FatalError("opening storage: %v", err)
		}
		defer func() { _ = store.Close() }()

		user := &types.User{
			ID:    uuid.NewString(),
			Name:  name,
			Email: email,
			Image: image,
		}
		if err := store.CreateUser(ctx, user); err != nil {
			FatalError("%v", err)
		}
		fmt.Printf("Created user %s (%s)\n", user.ID, user.Email)
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store, err := factory.NewFromConfig(ctx, config.GetString("dir"))
		if err != nil {
			FatalError("opening storage: %v", err)
		}
		defer func() { _ = store.Close() }()

		users, err := store.ListUsers(ctx)
		if err != nil {
			FatalError("%v", err)
		}
		for _, u := range users {
			fmt.Printf("%s\t%s\t%s\n", u.ID, u.Name, u.Email)
		}
	},
}

func init() {
	userAddCmd.Flags().String("name", "", "display name")
	userAddCmd.Flags().String("email", "", "email address (unique)")
	userAddCmd.Flags().String("image", "", "avatar URL")
	userCmd.AddCommand(userAddCmd, userListCmd)
}
