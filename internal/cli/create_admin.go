package cli

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/auth"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/config"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/database"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
)

// CreateAdminCommand creates a staff account from the command line,
// bypassing the HTTP setup endpoint. Useful for recovery when every
// admin account is locked out.
type CreateAdminCommand struct {
	Username     string
	Email        string
	Password     string
	FullName     string
	Role         string
	DatabasePath string
}

// NewCreateAdminCommand creates a new CreateAdminCommand
func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

// ParseFlags parses command line flags
func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username for the new account (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email for the new account (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password (prompted interactively if not given)")
	fs.StringVar(&cmd.FullName, "full-name", "", "Full name of the staff member")
	fs.StringVar(&cmd.Role, "role", string(entities.StaffRoleAdmin), "Role: admin, librarian or assistant")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a staff account directly in the database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-admin -username head -email head@library.local\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s create-admin -username desk1 -email desk1@library.local -role assistant\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		return fmt.Errorf("-username is required")
	}
	if cmd.Email == "" {
		return fmt.Errorf("-email is required")
	}

	switch entities.StaffRole(cmd.Role) {
	case entities.StaffRoleAdmin, entities.StaffRoleLibrarian, entities.StaffRoleAssistant:
	default:
		return fmt.Errorf("invalid role %q: must be admin, librarian or assistant", cmd.Role)
	}

	return nil
}

// Run executes the command
func (cmd *CreateAdminCommand) Run() error {
	if cmd.Password == "" {
		password, err := promptPassword()
		if err != nil {
			return err
		}
		cmd.Password = password
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	service := auth.NewService(db.DB, cfg.Auth)

	user, err := service.CreateStaffUser(auth.CreateStaffInput{
		Username: cmd.Username,
		Email:    cmd.Email,
		Password: cmd.Password,
		FullName: cmd.FullName,
		Role:     entities.StaffRole(cmd.Role),
	})
	if err != nil {
		return fmt.Errorf("failed to create staff account: %w", err)
	}

	fmt.Printf("Created %s account '%s' (id %d)\n", user.Role, user.Username, user.ID)
	return nil
}

func promptPassword() (string, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Password: ")
	password, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password = strings.TrimRight(password, "\r\n")

	fmt.Print("Confirm password: ")
	confirm, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password confirmation: %w", err)
	}
	confirm = strings.TrimRight(confirm, "\r\n")

	if password != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return password, nil
}
