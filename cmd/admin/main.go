package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/electrosoundpack/storefront-backend/internal/users"
	"github.com/electrosoundpack/storefront-backend/pkg/config"
	"github.com/electrosoundpack/storefront-backend/pkg/db"
	"github.com/electrosoundpack/storefront-backend/pkg/env"
	"github.com/electrosoundpack/storefront-backend/pkg/logger"
	"github.com/electrosoundpack/storefront-backend/pkg/security"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "admin"})

	_ = godotenv.Load()

	email := flag.String("email", env.Get("STOREFRONT_ADMIN_EMAIL", ""), "admin email (created or promoted)")
	nombre := flag.String("nombre", env.Get("STOREFRONT_ADMIN_NAME", "Administrador"), "display name for a new admin")
	telefono := flag.String("telefono", "", "phone for a new admin")
	password := flag.String("password", env.Get("STOREFRONT_ADMIN_PASSWORD", ""), "password for a new admin (generated when empty)")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "missing -email (or STOREFRONT_ADMIN_EMAIL)")
		os.Exit(1)
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "admin",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	res, err := users.EnsureAdmin(ctx, users.NewRepository(dbClient.DB()), security.NewHasher(cfg.Password), users.AdminBootstrap{
		Email:    *email,
		Nombre:   *nombre,
		Telefono: *telefono,
		Password: *password,
	})
	requireResource(ctx, logg, "admin bootstrap", err)

	ctx = logg.WithFields(ctx, map[string]any{"email": res.User.Email, "created": res.Created})
	logg.Info(ctx, "admin ready")
	if res.TempPassword != "" {
		fmt.Printf("temporary password for %s: %s\n", res.User.Email, res.TempPassword)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
