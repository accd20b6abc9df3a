package main

import (
	"errors"
	"flag"
	"log"
	"net/url"
	"voucher_wheel/internal/pkg/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	down := flag.Bool("down", false, "roll back one migration")
	force := flag.Int("force", -1, "force the given version and exit (clears dirty state)")
	dir := flag.String("path", "file://migrations", "migration source")
	flag.Parse()

	config.LoadConfig()
	cfg := config.GlobalConfig.Database
	dsn := (&url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host + ":" + cfg.Port,
		Path:     "/" + cfg.DBName,
		RawQuery: "sslmode=" + cfg.SSLMode,
	}).String()

	m, err := migrate.New(*dir, dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	if *force >= 0 {
		if err := m.Force(*force); err != nil {
			log.Fatal("Failed to force version:", err)
		}
		log.Printf("Forced version %d", *force)
		return
	}

	if *down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			log.Fatalf("Database is dirty at version %d, fix it and rerun with -force", dirty.Version)
		}
		log.Fatal(err)
	}

	version, isDirty, _ := m.Version()
	log.Printf("Migration successful, version=%d dirty=%v", version, isDirty)
}
