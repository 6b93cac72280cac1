package util

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

var ErrInvalidFileType = errors.New("invalid file type")

// ValidateMimeType 读取文件头校验 MIME 类型
// allowedTypes: 允许的 MIME 前缀或完整类型，如 "image/"
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}

// IconExtension 返回小写扩展名，不在白名单内时返回 ErrInvalidFileType
func IconExtension(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedIconExtensions {
		if ext == allowed {
			return ext, nil
		}
	}
	return "", ErrInvalidFileType
}

// IsImage 检测是否为图片
func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, MimeImage)
}
