// Package useradmin implements the operator commands for managing qaboard
// accounts outside the HTTP API: creating users with an explicit role and
// changing the role of an existing user.
package useradmin

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/qaboard/internal/common"
	"github.com/dmitrijs2005/qaboard/internal/flagx"
	"github.com/dmitrijs2005/qaboard/internal/server/models"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var ErrUsage = errors.New("usage: useradmin create -email <email> [-role user|admin] | promote -email <email> | setrole -email <email> -role <role>")

// UserManager is the subset of the user service the commands need.
type UserManager interface {
	CreateUser(ctx context.Context, email, password, role string) (*models.User, error)
	SetRole(ctx context.Context, email, role string) (*models.User, error)
}

type Admin struct {
	users UserManager
	out   io.Writer
}

func New(users UserManager, out io.Writer) *Admin {
	return &Admin{users: users, out: out}
}

type options struct {
	email string
	role  string
}

func parseOptions(name string, args []string, defaultRole string) (options, error) {
	var o options

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.email, "email", "", "account email")
	fs.StringVar(&o.role, "role", defaultRole, "account role (user|admin)")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-email", "-role"})); err != nil {
		return o, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if o.email == "" {
		return o, ErrUsage
	}
	return o, nil
}

// Run dispatches args[0] to the matching command.
func (a *Admin) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "create":
		o, err := parseOptions(cmd, rest, common.RoleUser)
		if err != nil {
			return err
		}
		return a.create(ctx, o)
	case "promote":
		o, err := parseOptions(cmd, rest, common.RoleAdmin)
		if err != nil {
			return err
		}
		o.role = common.RoleAdmin
		return a.setRole(ctx, o)
	case "setrole":
		o, err := parseOptions(cmd, rest, "")
		if err != nil {
			return err
		}
		return a.setRole(ctx, o)
	default:
		return ErrUsage
	}
}

func (a *Admin) create(ctx context.Context, o options) error {
	pw, err := a.passwordTwice()
	if err != nil {
		return err
	}

	u, err := a.users.CreateUser(ctx, o.email, pw, o.role)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(a.out, "Created user %d <%s> with role %s\n", u.ID, u.Email, u.Role)
	return nil
}

func (a *Admin) setRole(ctx context.Context, o options) error {
	u, err := a.users.SetRole(ctx, o.email, o.role)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}

	fmt.Fprintf(a.out, "User %d <%s> now has role %s\n", u.ID, u.Email, u.Role)
	return nil
}

// passwordTwice reads the password and its confirmation without echo.
func (a *Admin) passwordTwice() (string, error) {
	pw, err := a.prompt("Enter password: ")
	if err != nil {
		return "", err
	}
	defer common.WipeBytes(pw)

	confirm, err := a.prompt("Repeat password: ")
	if err != nil {
		return "", err
	}
	defer common.WipeBytes(confirm)

	if !bytes.Equal(pw, confirm) {
		return "", errors.New("passwords do not match")
	}
	return string(pw), nil
}

func (a *Admin) prompt(label string) ([]byte, error) {
	fmt.Fprint(a.out, label)
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	return pw, nil
}
