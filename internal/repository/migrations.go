package repository

import "embed"

// MigrationsFS embeds the goose SQL migrations applied at startup.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// MigrationsDir is the directory inside MigrationsFS holding the SQL files.
const MigrationsDir = "migrations"
