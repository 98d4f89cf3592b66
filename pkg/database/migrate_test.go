package database

import (
	"strings"
	"testing"
)

func TestEmbeddedVersions(t *testing.T) {
	versions, err := EmbeddedVersions()
	if err != nil {
		t.Fatalf("读取内嵌迁移失败: %v", err)
	}
	if len(versions) == 0 || versions[0] != 1 {
		t.Fatalf("期望首个迁移版本为 1，实际 %v", versions)
	}
	for i := 1; i < len(versions); i++ {
		if versions[i] <= versions[i-1] {
			t.Errorf("迁移版本应严格递增，实际 %v", versions)
		}
	}
}

func TestInitMigrationCreatesManagedTables(t *testing.T) {
	up, err := migrationsFS.ReadFile("migrations/000001_init_routine.up.sql")
	if err != nil {
		t.Fatalf("读取迁移文件失败: %v", err)
	}
	for _, table := range ManagedTables {
		if !strings.Contains(string(up), "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("初始迁移应创建表 %s", table)
		}
	}
}
