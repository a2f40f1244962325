package metadata

// --- SQLite Keys ---
// 这些键用于metadata表的key列。
const (
	// SchemaVersionKey 存储数据库表结构的版本号，
	// 用于在将来引入不兼容迁移时做启动检查。
	SchemaVersionKey = "schema_version"

	// LastRebuildAtKey 存储最近一次分数台账整体重建完成的时刻(RFC3339)。
	LastRebuildAtKey = "last_rebuild_at"

	// CleanShutdownAtKey 存储最近一次优雅停机完成的时刻(RFC3339)。
	// 启动时可以据此判断上一次进程是否异常退出。
	CleanShutdownAtKey = "clean_shutdown_at"
)

// CurrentSchemaVersion 是当前代码对应的表结构版本。
const CurrentSchemaVersion = 1
