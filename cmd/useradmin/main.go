// Command useradmin creates qaboard accounts and changes their roles.
//
//	useradmin create -email root@example.com -role admin
//	useradmin promote -email someone@example.com
//	useradmin setrole -email someone@example.com -role user
//
// Server configuration (JSON file, environment, -d DSN) is honored.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/qaboard/internal/server/config"
	"github.com/dmitrijs2005/qaboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/qaboard/internal/server/services"
	"github.com/dmitrijs2005/qaboard/internal/useradmin"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, useradmin.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.LoadConfig()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	// The admin commands never upload pictures or send mail.
	us := services.NewUserService(db, rm, nil, nil, cfg)

	return useradmin.New(us, os.Stdout).Run(ctx, os.Args[1:])
}
