package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

const (
	MimePNG = "image/png"

	// SelectionScopeHeader 前端在切换班级/年份时携带，用于取消同一视图上过期的加载
	SelectionScopeHeader = "X-Selection-Scope"
)
