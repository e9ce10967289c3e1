// internal/db/db.go
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"muzplay.kz/internal/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

var DB *sql.DB

func RunMigrations(dbConn *sql.DB, dbName string) error {
	driverInstance, err := mysql.WithInstance(dbConn, &mysql.Config{
		DatabaseName: dbName,
	})
	if err != nil {
		return fmt.Errorf("не удалось создать драйвер миграций mysql: %w", err)
	}

	// Путь к миграциям считаем от расположения db.go, чтобы не зависеть от CWD.
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return fmt.Errorf("не удалось получить путь к текущему файлу для определения пути миграций")
	}
	projectRoot := filepath.Join(filepath.Dir(currentFilePath), "..", "..")
	migrationsPath := filepath.Join(projectRoot, "migrations")

	migrationsURL := "file://" + migrationsPath

	m, err := migrate.NewWithDatabaseInstance(migrationsURL, "mysql", driverInstance)
	if err != nil {
		slog.Error("Ошибка создания экземпляра migrate", "url", migrationsURL, "dbName", dbName, "error", err)
		return fmt.Errorf("ошибка создания экземпляра migrate (проверьте путь '%s'): %w", migrationsURL, err)
	}

	slog.Info("Применение миграций MariaDB...", "path", migrationsURL)
	err = m.Up()

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		version, dirty, verr := m.Version()
		if verr != nil {
			slog.Error("Ошибка получения статуса миграции после неудачного Up", "migration_error", err, "status_error", verr)
		} else {
			slog.Error("Ошибка применения миграций.", "current_version", version, "dirty_state", dirty, "error_up", err)
		}
		return fmt.Errorf("ошибка применения миграций MariaDB: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("Миграции MariaDB: нет изменений.")
	} else {
		slog.Info("Миграции MariaDB успешно применены.")
	}

	return nil
}

func InitDB(appConfig *config.Config) error {
	var err error
	var dsn string

	dbCfg := appConfig.Database

	if dbCfg.Path != "" && strings.Contains(dbCfg.Path, "://") {
		dsn = dbCfg.Path
		if !strings.Contains(dsn, "multiStatements=true") {
			if strings.Contains(dsn, "?") {
				dsn += "&multiStatements=true"
			} else {
				dsn += "?multiStatements=true"
			}
		}
		slog.Info("Используется DATABASE_DSN для подключения к MariaDB.", "dsn_preview", strings.Split(dsn, "@")[0]+"@...")
	} else if dbCfg.Host != "" && dbCfg.User != "" && dbCfg.DBName != "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&multiStatements=true",
			dbCfg.User,
			dbCfg.Password,
			dbCfg.Host,
			dbCfg.Port,
			dbCfg.DBName,
		)
		slog.Info("Формируется DSN из компонентов для MariaDB.")
	} else {
		return fmt.Errorf("недостаточно параметров для подключения к MariaDB: DSN или Host+User+DBName должны быть заданы")
	}

	safeDSN := dsn
	if dbCfg.Password != "" && strings.Contains(dsn, dbCfg.Password) {
		safeDSN = strings.Replace(dsn, dbCfg.Password, "****", 1)
	}
	slog.Info("Подключение к MariaDB", "dsn_for_connection", safeDSN)

	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("ошибка открытия соединения с MariaDB: %w", err)
	}

	DB.SetConnMaxLifetime(time.Minute * 3)
	DB.SetMaxOpenConns(10)
	DB.SetMaxIdleConns(10)

	if err = DB.Ping(); err != nil {
		openedDB := DB
		if openedDB != nil {
			_ = openedDB.Close()
		}
		return fmt.Errorf("ошибка подключения к MariaDB (ping failed): %w. DSN: %s", err, safeDSN)
	}
	slog.Info("Успешное подключение к MariaDB.")

	if err = RunMigrations(DB, dbCfg.DBName); err != nil {
		if DB != nil {
			_ = DB.Close()
		}
		return fmt.Errorf("ошибка выполнения миграций MariaDB: %w", err)
	}

	// Таблица сессий для scs/mysqlstore.
	createTableSQL := `CREATE TABLE IF NOT EXISTS sessions (
		token CHAR(43) PRIMARY KEY,
		data BLOB NOT NULL,
		expiry TIMESTAMP(6) NOT NULL
	);`
	createIndexSQL := `CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions (expiry);`

	if _, errTable := DB.Exec(createTableSQL); errTable != nil {
		slog.Error("Не удалось создать таблицу 'sessions'.", "error", errTable)
	} else {
		slog.Info("Таблица 'sessions' проверена/создана.")
		if _, errIndex := DB.Exec(createIndexSQL); errIndex != nil {
			slog.Warn("Не удалось создать индекс 'sessions_expiry_idx'.", "error", errIndex)
		}
	}

	slog.Info("База данных MariaDB успешно инициализирована (включая миграции).")
	return nil
}
