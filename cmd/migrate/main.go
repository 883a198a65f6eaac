package main

import (
	"errors"
	"flag"
	"net/url"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/shared/utils"
)

const usage = "up, down, steps <n>, version, force <version>"

func main() {
	set := flag.String("module", "chat", "migration set under migrations/")
	command := flag.String("cmd", "up", "one of: "+usage)
	flag.Parse()

	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env, cfg.LogLevel)

	source := "file://migrations/" + *set
	log.Info().
		Str("set", *set).
		Str("source", source).
		Str("database", maskDatabaseURL(cfg.DatabaseURL)).
		Msg("🔄 chat schema migration")

	m, err := migrate.New(source, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ failed to open migration source")
	}
	defer m.Close()

	if err := run(m, *command, flag.Args()); err != nil {
		log.Fatal().Err(err).Str("cmd", *command).Msg("❌ migration failed")
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info().Msg("📌 schema is empty")
	case err != nil:
		log.Fatal().Err(err).Msg("❌ failed to read schema version")
	default:
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("📌 schema version")
	}
}

func run(m *migrate.Migrate, command string, args []string) error {
	switch command {
	case "up":
		return ignoreNoChange(m.Up())
	case "down":
		return ignoreNoChange(m.Down())
	case "steps":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return ignoreNoChange(m.Steps(n))
	case "force":
		v, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Force(v)
	case "version":
		return nil
	default:
		return errors.New("unknown command, use: " + usage)
	}
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Msg("✅ nothing to migrate")
		return nil
	}
	return err
}

func intArg(args []string) (int, error) {
	if len(args) < 1 {
		return 0, errors.New("missing numeric argument")
	}
	return strconv.Atoi(args[0])
}

// maskDatabaseURL hides the password of a database URL for logging
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return "***"
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
