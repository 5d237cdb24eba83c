package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/MinhaulMahmud/PersonalBlog/post_service/models"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrations embed.FS

// InitDBConnections opens the primary (writes) and replica (reads) pools
// and migrates the primary.
func InitDBConnections(config models.Config, logger *zap.Logger) (*sql.DB, *sql.DB, error) {
	primaryPath := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName)

	primaryDB, err := sql.Open("postgres", primaryPath)
	if err != nil {
		logger.Error("Failed to connect to primary DB", zap.Error(err))
		return nil, nil, err
	}

	replicaHost := config.DBReplicaHost
	if replicaHost == "" {
		// no replica configured, reads go to the primary
		replicaHost, config.DBReplicaPort, config.DBReplicaUser = config.DBHost, config.DBPort, config.DBUser
		config.DBReplicaPassword, config.DBReplicaName = config.DBPassword, config.DBName
	}
	replicaPath := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		replicaHost, config.DBReplicaPort, config.DBReplicaUser,
		config.DBReplicaPassword, config.DBReplicaName)

	replicaDB, err := sql.Open("postgres", replicaPath)
	if err != nil {
		primaryDB.Close()
		logger.Error("Failed to connect to replica DB", zap.Error(err))
		return nil, nil, err
	}

	// TODO: tune pool sizes once real traffic numbers exist
	primaryDB.SetMaxOpenConns(15)
	primaryDB.SetMaxIdleConns(5)

	replicaDB.SetMaxOpenConns(25)
	replicaDB.SetMaxIdleConns(10)

	driver, err := postgres.WithInstance(primaryDB, &postgres.Config{})
	if err != nil {
		primaryDB.Close()
		replicaDB.Close()
		return nil, nil, fmt.Errorf("postgres migration driver: %w", err)
	}
	if err := applyMigration(driver, "postgres", config.DBName, logger); err != nil {
		primaryDB.Close()
		replicaDB.Close()
		return nil, nil, err
	}
	return primaryDB, replicaDB, nil
}

// InitSqlite opens (creating if needed) the database file at path and migrates it.
func InitSqlite(path string, logger *zap.Logger) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}
	DB, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		logger.Error("Failed to open sqlite DB", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	// one writer at a time
	DB.SetMaxOpenConns(1)

	driver, err := sqlite.WithInstance(DB, &sqlite.Config{})
	if err != nil {
		DB.Close()
		return nil, fmt.Errorf("sqlite migration driver: %w", err)
	}
	if err := applyMigration(driver, "sqlite", "main", logger); err != nil {
		DB.Close()
		return nil, err
	}
	return DB, nil
}

func applyMigration(driver database.Driver, dialect, dbname string, logger *zap.Logger) error {
	source, err := iofs.New(migrations, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("load %s migrations: %w", dialect, err)
	}
	m, err := migrate.NewWithInstance("iofs", source, dbname, driver)
	if err != nil {
		logger.Error("Failed to prepare migrations", zap.Error(err))
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Migration of Database failed", zap.Error(err))
		return err
	}

	logger.Info("Migrations applied successfully", zap.String("dialect", dialect))
	return nil
}
