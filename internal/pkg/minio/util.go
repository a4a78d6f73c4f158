package minio

import (
	"Glimpse/internal/api/config"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
)

// UploadFile 上传文件到MinIO
func UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	if Client == nil {
		return "", fmt.Errorf("minio client is not initialized")
	}

	uploadInfo, err := Client.PutObject(ctx, MediaBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return uploadInfo.Key, nil
}

// DeleteFile 删除MinIO中的文件
func DeleteFile(ctx context.Context, objectName string) error {
	if Client == nil {
		return fmt.Errorf("minio client is not initialized")
	}

	err := Client.RemoveObject(ctx, MediaBucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// GetPublicURL 获取文件的公共访问URL，已经是完整 URL 的旧数据原样返回
func GetPublicURL(objectName string) string {
	if objectName == "" {
		return ""
	}
	if strings.HasPrefix(objectName, "http://") || strings.HasPrefix(objectName, "https://") {
		return objectName
	}

	cfg := config.Cfg.MinIO
	return fmt.Sprintf("https://%s/%s/%s", cfg.ExternalEndpoint, cfg.MediaBucket, objectName)
}
