package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-auth-api/internal/app"
	"go-auth-api/internal/model"
	"go-auth-api/internal/validation"
)

func NewCreateSuperuserCmd(cfg configFunc) *cobra.Command {
	var (
		email    string
		username string
		password string
		fullName string
	)

	cmd := &cobra.Command{
		Use:   "create-superuser",
		Short: "Create an active superuser account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := model.RegisterRequest{
				Email:           email,
				Username:        username,
				Password:        password,
				PasswordConfirm: password,
			}
			if fullName != "" {
				req.FullName = &fullName
			}
			if err := validation.Struct(req); err != nil {
				return fmt.Errorf("invalid superuser: %w", err)
			}

			user, err := app.CreateSuperuser(cmd.Context(), cfg(), model.NewUser{
				Email:    req.Email,
				Username: req.Username,
				FullName: req.FullName,
				Password: req.Password,
			})
			if err != nil {
				return err
			}

			cmd.Printf("Superuser %s created with id %d\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "superuser email")
	cmd.Flags().StringVar(&username, "username", "", "superuser username")
	cmd.Flags().StringVar(&password, "password", "", "superuser password")
	cmd.Flags().StringVar(&fullName, "full-name", "", "optional display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
