package metadata

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- 通用读写 ---

// GetValue 从metadata表读取一个键的值。键不存在时返回空串，不是错误。
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue 以upsert语义写入一个键值对。
func SetValue(db *gorm.DB, key, value string) error {
	meta := Metadata{
		Key:   key,
		Value: value,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&meta).Error
}

// --- 具体键的类型化读写 ---

// GetSchemaVersion 读取数据库的表结构版本。未写入过时返回0。
func GetSchemaVersion(db *gorm.DB) (int, error) {
	valueStr, err := GetValue(db, SchemaVersionKey)
	if err != nil {
		return 0, err
	}
	if valueStr == "" {
		return 0, nil
	}
	version, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("无法解析元数据 '%s' 的值: %w", SchemaVersionKey, err)
	}
	return version, nil
}

// SetSchemaVersion 写入数据库的表结构版本。
func SetSchemaVersion(db *gorm.DB, version int) error {
	return SetValue(db, SchemaVersionKey, strconv.Itoa(version))
}

// SetLastRebuildAt 记录最近一次台账整体重建完成的时刻。
func SetLastRebuildAt(db *gorm.DB, at time.Time) error {
	return SetValue(db, LastRebuildAtKey, at.Format(time.RFC3339))
}

// GetLastRebuildAt 读取最近一次台账整体重建完成的时刻。
// 未记录过时返回零值时间。
func GetLastRebuildAt(db *gorm.DB) (time.Time, error) {
	valueStr, err := GetValue(db, LastRebuildAtKey)
	if err != nil || valueStr == "" {
		return time.Time{}, err
	}
	at, err := time.Parse(time.RFC3339, valueStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法解析元数据 '%s' 的值: %w", LastRebuildAtKey, err)
	}
	return at, nil
}

// SetCleanShutdownAt 记录优雅停机完成的时刻。
func SetCleanShutdownAt(db *gorm.DB, at time.Time) error {
	return SetValue(db, CleanShutdownAtKey, at.Format(time.RFC3339))
}
