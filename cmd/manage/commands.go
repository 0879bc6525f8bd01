package main

import (
	"fmt"
	"os"

	"github.com/localnerve/foodgram/data"
	"github.com/localnerve/foodgram/internal/database"
	"github.com/localnerve/foodgram/internal/services"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := connect()
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Schema is up to date")
		return nil
	},
}

// fixture reads the --file flag, falling back to the embedded fixture.
func fixture(cmd *cobra.Command, embedded []byte) ([]byte, error) {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		return embedded, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return raw, nil
}

var loadIngredientsCmd = &cobra.Command{
	Use:   "load-ingredients",
	Short: "Seed ingredients from a JSON array of {name, measurement_unit}",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := fixture(cmd, data.Ingredients)
		if err != nil {
			return err
		}
		_, db, err := connect()
		if err != nil {
			return err
		}
		defer database.Close(db)

		n, err := database.LoadIngredients(db, raw)
		if err != nil {
			return err
		}
		fmt.Printf("Loaded %d new ingredients\n", n)
		return nil
	},
}

var loadTagsCmd = &cobra.Command{
	Use:   "load-tags",
	Short: "Seed tags from a JSON array of {name, slug}",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := fixture(cmd, data.Tags)
		if err != nil {
			return err
		}
		_, db, err := connect()
		if err != nil {
			return err
		}
		defer database.Close(db)

		n, err := database.LoadTags(db, raw)
		if err != nil {
			return err
		}
		fmt.Printf("Loaded %d new tags\n", n)
		return nil
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Register a staff user who may edit and delete any recipe",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv("ADMIN_PASSWORD")
		}

		_, db, err := connect()
		if err != nil {
			return err
		}
		defer database.Close(db)

		users := services.NewUserService(db, nil, nil)
		user, err := users.Register(cmd.Context(), services.RegisterInput{
			Email:     email,
			Username:  username,
			FirstName: username,
			LastName:  "admin",
			Password:  password,
		})
		if err != nil {
			return err
		}
		if err := users.Promote(cmd.Context(), user.ID); err != nil {
			return err
		}
		fmt.Printf("Created staff user %s (id %d)\n", user.Username, user.ID)
		return nil
	},
}

func init() {
	loadIngredientsCmd.Flags().String("file", "", "JSON fixture path (default: embedded ingredients)")
	loadTagsCmd.Flags().String("file", "", "JSON fixture path (default: embedded tags)")

	createAdminCmd.Flags().String("email", "", "admin email")
	createAdminCmd.Flags().String("username", "admin", "admin username")
	createAdminCmd.Flags().String("password", "", "admin password (default: $ADMIN_PASSWORD)")
	_ = createAdminCmd.MarkFlagRequired("email")
}
