// Package admin implements the operator CLI: hashing a password for manual
// provisioning and creating an administrator in the database.
package admin

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/portfolio/internal/flagx"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/auth"
	"github.com/dmitrijs2005/portfolio/internal/server/config"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/portfolio/internal/server/services"
)

const usage = `usage:
  portfolio-admin hash
  portfolio-admin [-d dsn] create-admin -user NAME [-email ADDR]`

// AdminCreator stores a new administrator.
type AdminCreator interface {
	CreateAdmin(ctx context.Context, username, email, password string) (*models.User, error)
}

type App struct {
	config *config.Config
	hasher *auth.Hasher
	out    io.Writer
	fd     int
	// connect opens the store used by create-admin; the returned func
	// releases it.
	connect func(ctx context.Context) (AdminCreator, func() error, error)
}

func NewApp(c *config.Config, out io.Writer) *App {
	a := &App{
		config: c,
		hasher: auth.NewHasher(c.BcryptCost),
		out:    out,
		fd:     int(os.Stdin.Fd()),
	}
	a.connect = a.connectDB
	return a
}

func (a *App) connectDB(ctx context.Context) (AdminCreator, func() error, error) {
	db, err := sql.Open("pgx", a.config.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}
	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	logger := logging.NewJSON(os.Stderr, a.config.LogLevel)
	return services.NewAuthService(db, rm, nil, nil, a.hasher, logger), db.Close, nil
}

// Run executes the first command found in args. Server flags that precede
// the command are skipped; config has already consumed them.
func (a *App) Run(ctx context.Context, args []string) error {
	for i, arg := range args {
		switch arg {
		case "hash":
			return a.hash()
		case "create-admin":
			return a.createAdmin(ctx, args[i+1:])
		case "help", "-h", "-help":
			fmt.Fprintln(a.out, usage)
			return nil
		}
	}
	return fmt.Errorf("no command given\n%s", usage)
}

func (a *App) hash() error {
	pw, err := GetNewPassword(a.out, a.fd)
	if err != nil {
		return err
	}
	defer wipe(pw)

	h, err := a.hasher.Hash(string(pw))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, h)
	return nil
}

func (a *App) createAdmin(ctx context.Context, args []string) error {
	var username, email string

	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(a.out)
	fs.StringVar(&username, "user", a.config.AdminUsername, "admin username")
	fs.StringVar(&email, "email", a.config.AdminEmail, "admin email")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-user", "-email"})); err != nil {
		return err
	}

	pw, err := GetNewPassword(a.out, a.fd)
	if err != nil {
		return err
	}
	defer wipe(pw)

	creator, closeFn, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	u, err := creator.CreateAdmin(ctx, username, email, string(pw))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "admin %q created (id %s)\n", u.Username, u.ID)
	return nil
}
