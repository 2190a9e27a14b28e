package db

import (
	"context"
	"net"

	"github.com/LambdaTest/forkplan/config"
	"github.com/LambdaTest/forkplan/pkg/constants"
	"github.com/LambdaTest/forkplan/pkg/core"
	"github.com/LambdaTest/forkplan/pkg/lumber"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Connect opens the execution history database and checks that it answers
// before ctx expires.
func Connect(ctx context.Context, cfg *config.Config, logger lumber.Logger) (core.DB, error) {
	conn, err := sqlx.ConnectContext(ctx, "mysql", dsn(&cfg.DB))
	if err != nil {
		return nil, err
	}
	conn.SetMaxIdleConns(constants.MysqlMaxIdleConnection)
	conn.SetMaxOpenConns(constants.MysqlMaxOpenConnection)
	conn.SetConnMaxLifetime(constants.MysqlMaxConnectionLifetime)

	logger.Infof("connected to timing history database %s at %s:%s", cfg.DB.Name, cfg.DB.Host, cfg.DB.Port)
	return &DB{conn: conn, logger: logger}, nil
}

// dsn builds the driver connection string. Timestamps are parsed so lookback
// windows compare against time.Time.
func dsn(cfg *config.DBConfig) string {
	mysqlCfg := mysql.NewConfig()
	mysqlCfg.User = cfg.User
	mysqlCfg.Passwd = cfg.Password
	mysqlCfg.Net = "tcp"
	mysqlCfg.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	mysqlCfg.DBName = cfg.Name
	mysqlCfg.ParseTime = true
	mysqlCfg.Params = map[string]string{"charset": "utf8mb4"}
	return mysqlCfg.FormatDSN()
}
