package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations 将数据库结构迁移到最新版本。
// 迁移脚本随二进制嵌入发布，启动时无需外部文件。
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("加载内嵌迁移脚本失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("创建 postgres 迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("初始化迁移实例失败: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		version, _, _ := m.Version()
		logger.Info("数据库结构已是最新", zap.Uint("version", version))
		return nil
	case err != nil:
		return fmt.Errorf("执行迁移失败: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil {
		return fmt.Errorf("读取迁移版本失败: %w", verr)
	}
	if dirty {
		// Up 成功后不应出现 dirty；出现说明有人手工改过 schema_migrations
		logger.Warn("数据库迁移处于 dirty 状态", zap.Uint("version", version))
		return nil
	}

	logger.Info("数据库迁移完成", zap.Uint("version", version))
	return nil
}
