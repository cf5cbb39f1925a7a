package service

import (
	"classroom_backend/internal/config"
	"classroom_backend/internal/util"
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// FileLinker 把作业/资料中保存的文件引用转换为可下载的地址
type FileLinker interface {
	Link(ctx context.Context, ref string) (string, error)
}

// LocalFileLinker 本地存储，文件由 /uploads 静态路由提供
type LocalFileLinker struct{}

func (LocalFileLinker) Link(ctx context.Context, ref string) (string, error) {
	if isAbsoluteLink(ref) {
		return ref, nil
	}
	return "/uploads/" + strings.TrimPrefix(ref, "/"), nil
}

// MinioFileLinker 生成限时的预签名下载链接
type MinioFileLinker struct {
	Client *minio.Client
	Bucket string
	Expiry time.Duration
}

func NewMinioFileLinker(cfg *config.StorageConfig) (*MinioFileLinker, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	expiry := cfg.LinkExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &MinioFileLinker{Client: client, Bucket: cfg.MinioBucket, Expiry: expiry}, nil
}

func (p *MinioFileLinker) Link(ctx context.Context, ref string) (string, error) {
	if isAbsoluteLink(ref) {
		return ref, nil
	}
	u, err := p.Client.PresignedGetObject(ctx, p.Bucket, strings.TrimPrefix(ref, "/"), p.Expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// OSSFileLinker 阿里云 OSS 签名下载链接，签名在本地计算不访问网络
type OSSFileLinker struct {
	Bucket *oss.Bucket
	Expiry time.Duration
}

func NewOSSFileLinker(cfg *config.StorageConfig) (*OSSFileLinker, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, err
	}
	expiry := cfg.LinkExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &OSSFileLinker{Bucket: bucket, Expiry: expiry}, nil
}

func (p *OSSFileLinker) Link(ctx context.Context, ref string) (string, error) {
	if isAbsoluteLink(ref) {
		return ref, nil
	}
	return p.Bucket.SignURL(strings.TrimPrefix(ref, "/"), oss.HTTPGet, int64(p.Expiry/time.Second))
}

// NewFileLinker 按 storage.type 选择实现
func NewFileLinker(cfg *config.StorageConfig) (FileLinker, error) {
	switch cfg.Type {
	case util.StorageMinio:
		return NewMinioFileLinker(cfg)
	case util.StorageOSS:
		return NewOSSFileLinker(cfg)
	}
	return LocalFileLinker{}, nil
}

func isAbsoluteLink(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
