package service

import (
	"github.com/Novusha-LPP/eximdev-sub002/internal/config"
	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/repository"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services bundles every service for wiring.
type Services struct {
	Job    *JobService
	Upload *UploadService
}

// NewServices creates all services.
func NewServices(repos *repository.Repositories, rdb *redis.Client, mc *minio.Client, cfg *config.Config, logger *zap.Logger) *Services {
	jobSvc := NewJobService(repos.Job, rdb, logger)
	return &Services{
		Job:    jobSvc,
		Upload: NewUploadService(repos.Job, jobSvc, mc, cfg.MinIO.Bucket, logger),
	}
}
