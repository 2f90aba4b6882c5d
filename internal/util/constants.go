package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// 证书文件相关常量
const (
	CertificateContentType = "application/pdf"
	CertificateDirName     = "certificates"
)
