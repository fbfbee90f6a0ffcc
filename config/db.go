package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"roombook-backend/models"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	cfg := mysqldriver.NewConfig()
	cfg.User = u.User.Username()
	cfg.Passwd, _ = u.User.Password()
	cfg.Net = "tcp"

	port := u.Port()
	if port == "" {
		port = "3306"
	}
	cfg.Addr = net.JoinHostPort(u.Hostname(), port)

	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	if cfg.DBName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	for key, values := range u.Query() {
		if len(values) == 0 {
			continue
		}
		switch key {
		case "parseTime":
			cfg.ParseTime = strings.EqualFold(values[0], "true")
		case "loc":
			if loc, err := time.LoadLocation(values[0]); err == nil {
				cfg.Loc = loc
			}
		default:
			cfg.Params[key] = values[0]
		}
	}
	return cfg.FormatDSN(), nil
}

// ResolveMySQLDSN picks MYSQL_URL, then DATABASE_URL, then the discrete DB_* variables.
func ResolveMySQLDSN(db DatabaseConfig) (string, error) {
	raw := strings.TrimSpace(db.URL)
	if raw == "" {
		raw = strings.TrimSpace(db.FallbackURL)
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		if _, err := mysqldriver.ParseDSN(raw); err != nil {
			return "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		return raw, nil
	}

	cfg := mysqldriver.NewConfig()
	cfg.User = db.User
	cfg.Passwd = db.Pass
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(db.Host, db.Port)
	cfg.DBName = db.Name
	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN(), nil
}

// ConnectDatabase opens the MySQL connection and migrates the room document table.
func ConnectDatabase(db DatabaseConfig) (*gorm.DB, error) {
	dsn, err := ResolveMySQLDSN(db)
	if err != nil {
		return nil, err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	conn, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	if err := conn.AutoMigrate(&models.RoomDocument{}); err != nil {
		return nil, fmt.Errorf("migrate room documents: %w", err)
	}
	return conn, nil
}
