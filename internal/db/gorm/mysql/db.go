package mysql

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/mkatbalasd/PDFCompress/config"
	"github.com/mkatbalasd/PDFCompress/entity"
)

const maxOpenConns = 200

// NewDB opens the MySQL handle, instruments it with otelgorm and
// migrates the persistence schema.
func NewDB(cfg config.MYSQL) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Dbname)

	db, err := gorm.Open(mysql.New(mysql.Config{DSN: dsn}), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open db connection")
	}

	if err := db.Use(otelgorm.NewPlugin(otelgorm.WithDBName(cfg.Dbname))); err != nil {
		return nil, errors.Wrap(err, "register otelgorm plugin")
	}

	if err := db.AutoMigrate(&entity.Caller{}, &entity.CompressionJob{}); err != nil {
		return nil, errors.Wrap(err, "migrate schema")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql db")
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)

	return db, nil
}
