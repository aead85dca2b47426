// Command createuser seeds a user account from the command line.
// Предназначена для первичного наполнения БД администратором:
// пароль запрашивается интерактивно без эха.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/farmgate-dev/farmgate/internal/crypto"
	"github.com/farmgate-dev/farmgate/internal/models"
	"github.com/farmgate-dev/farmgate/internal/server/storage/sqlite"
	"github.com/farmgate-dev/farmgate/internal/validation"
)

func main() {
	dbPath := flag.String("d", "farmgate.db", "SQLite database path")
	email := flag.String("email", "", "email of the new user")
	fullName := flag.String("name", "", "full name of the new user (optional)")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: createuser -email user@example.com [-name \"Full Name\"] [-d farmgate.db]")
		os.Exit(1)
	}

	if err := run(*dbPath, *email, *fullName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath, email, fullName string) error {
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	if err := validation.ValidatePassword(password); err != nil {
		return err
	}

	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}

	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}

	ctx := context.Background()

	store, err := sqlite.New(ctx, dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}

	if err := store.CreateUser(ctx, user); err != nil {
		return err
	}

	fmt.Printf("User created: %s (%s)\n", user.Email, user.ID)

	return nil
}

// promptPassword читает пароль без отображения ввода
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}
