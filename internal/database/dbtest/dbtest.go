// Package dbtest поднимает изолированную SQLite базу в памяти для тестов.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"absence-tracker/internal/database"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var seq atomic.Int64

// New возвращает мигрированную базу, которая закрывается по окончании теста
func New(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	db, err := database.Open("sqlite", dsn, log)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}
