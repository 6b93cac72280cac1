package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 技能链接图标上传相关常量
const (
	MimeImage   = "image/"
	MaxIconSize = 2 << 20
)

var (
	AllowedIconExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg"}
)

// gin 上下文中保存当前用户的键
const ContextUserKey = "user"
