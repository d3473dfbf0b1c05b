package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/entity"
	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/repository"
	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/sse"
	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/status"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	listCacheTTL  = 5 * time.Minute
	genKeyPrefix  = "dsr:jobs:gen:"
	pageKeyPrefix = "dsr:jobs:page:"
)

// JobService owns job reads and partial updates, the persisted
// detailed-status derivation and the per-year list cache.
type JobService struct {
	repo   *repository.JobRepository
	rdb    *redis.Client
	logger *zap.Logger
}

func NewJobService(repo *repository.JobRepository, rdb *redis.Client, logger *zap.Logger) *JobService {
	return &JobService{repo: repo, rdb: rdb, logger: logger}
}

// Get returns the full record for a job.
func (s *JobService) Get(ctx context.Context, year, jobNo string) (*entity.Job, error) {
	return s.repo.FindByJobNo(ctx, year, jobNo)
}

// identity and bookkeeping fields a PATCH may never touch
var protectedFields = map[string]bool{
	"id":              true,
	"job_no":          true,
	"year":            true,
	"created_at":      true,
	"created_by":      true,
	"updated_at":      true,
	"detailed_status": true,
}

// Patch merges the given JSON fields into the job, recomputes the detailed
// status and unresolved-query flag from the merged record, persists it,
// invalidates the year's list cache and broadcasts the update. Editors send
// only the subset of fields they own.
func (s *JobService) Patch(ctx context.Context, id string, fields map[string]interface{}, updatedBy string) (*entity.Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	for k := range protectedFields {
		delete(fields, k)
	}

	// Merge by round-tripping through JSON so editors can patch nested
	// container and query lists with the same keys the API serves.
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal patch: %w", err)
	}
	if err := json.Unmarshal(raw, job); err != nil {
		return nil, fmt.Errorf("apply patch: %w", err)
	}

	job.DetailedStatus = status.Compute(job)
	job.HasUnresolvedQueries = job.Queries.Unresolved() > 0
	job.UpdatedBy = updatedBy
	job.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, job); err != nil {
		return nil, err
	}

	s.InvalidateYear(ctx, job.Year)
	sse.PublishJobUpdate(job.Year, job.JobNo, job.DetailedStatus)

	return job, nil
}

// ListResult is one page of the filtered job list.
type ListResult struct {
	Data            []entity.Job `json:"data"`
	Total           int64        `json:"total"`
	TotalPages      int          `json:"totalPages"`
	CurrentPage     int          `json:"currentPage"`
	UnresolvedCount int64        `json:"unresolvedCount,omitempty"`
}

// List serves one page of jobs, memoized in redis per year. Cache keys embed
// the year's generation counter, so InvalidateYear makes every older entry
// unreachable without deleting it; a fetch completing after an invalidation
// stores under the new generation and stays fresh. Redis being down degrades
// to plain database reads.
func (s *JobService) List(ctx context.Context, p repository.ListParams) (*ListResult, error) {
	gen := s.generation(ctx, p.Year)
	key := s.pageKey(gen, p)

	if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var result ListResult
		if err := json.Unmarshal(cached, &result); err == nil {
			return &result, nil
		}
	} else if err != redis.Nil {
		s.logger.Warn("list cache read failed", zap.Error(err))
	}

	if p.Limit <= 0 {
		p.Limit = 100
	}
	if p.Page <= 0 {
		p.Page = 1
	}

	jobs, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, err
	}

	result := &ListResult{
		Data:        jobs,
		Total:       total,
		TotalPages:  int((total + int64(p.Limit) - 1) / int64(p.Limit)),
		CurrentPage: p.Page,
	}
	if p.Status == entity.StatusPending {
		count, err := s.repo.UnresolvedCount(ctx, p)
		if err != nil {
			return nil, err
		}
		result.UnresolvedCount = count
	}

	// Stamp with the generation current now, not the one read before the
	// query: an invalidation that landed mid-fetch moves this entry to the
	// new generation instead of burying fresh data.
	if raw, err := json.Marshal(result); err == nil {
		stampKey := s.pageKey(s.generation(ctx, p.Year), p)
		if err := s.rdb.Set(ctx, stampKey, raw, listCacheTTL).Err(); err != nil {
			s.logger.Warn("list cache write failed", zap.Error(err))
		}
	}

	return result, nil
}

// Typeahead returns autocomplete candidates; never cached.
func (s *JobService) Typeahead(ctx context.Context, year, search, icdCode, importer string, limit int) ([]repository.JobSuggestion, error) {
	return s.repo.Typeahead(ctx, year, search, icdCode, importer, limit)
}

// ImporterList returns the importers with jobs in the year.
func (s *JobService) ImporterList(ctx context.Context, year string) ([]string, error) {
	return s.repo.ImporterList(ctx, year)
}

// Years returns the known fiscal years.
func (s *JobService) Years(ctx context.Context) ([]string, error) {
	return s.repo.Years(ctx)
}

// LastJobsDate returns the most recent job creation date.
func (s *JobService) LastJobsDate(ctx context.Context) (time.Time, error) {
	return s.repo.LastJobsDate(ctx)
}

// InvalidateYear bumps the year's cache generation.
func (s *JobService) InvalidateYear(ctx context.Context, year string) {
	if err := s.rdb.Incr(ctx, genKeyPrefix+year).Err(); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("year", year), zap.Error(err))
	}
}

func (s *JobService) generation(ctx context.Context, year string) int64 {
	gen, err := s.rdb.Get(ctx, genKeyPrefix+year).Int64()
	if err != nil && err != redis.Nil {
		s.logger.Warn("cache generation read failed", zap.Error(err))
	}
	return gen
}

func (s *JobService) pageKey(gen int64, p repository.ListParams) string {
	h := sha1.Sum([]byte(fmt.Sprintf("%s|%s|%s|%s|%s|%t|%d|%d",
		p.Status, p.DetailedStatus, p.ICDCode, p.Importer, p.Search,
		p.UnresolvedOnly, p.Page, p.Limit)))
	return fmt.Sprintf("%s%s:%d:%s", pageKeyPrefix, p.Year, gen, hex.EncodeToString(h[:]))
}
