package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobRepository persists clearance jobs.
type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// ListParams scope a paginated job query. Empty or "all" values disable the
// corresponding filter.
type ListParams struct {
	Year           string
	Status         string
	DetailedStatus string
	ICDCode        string
	Importer       string
	Search         string
	UnresolvedOnly bool
	Page           int
	Limit          int
}

// FindByID looks a job up by primary key.
func (r *JobRepository) FindByID(ctx context.Context, id string) (*entity.Job, error) {
	var job entity.Job
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// FindByJobNo looks a job up by its number within a year.
func (r *JobRepository) FindByJobNo(ctx context.Context, year, jobNo string) (*entity.Job, error) {
	var job entity.Job
	err := r.db.WithContext(ctx).
		Where("year = ? AND job_no = ?", year, jobNo).
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// Create inserts a job.
func (r *JobRepository) Create(ctx context.Context, job *entity.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// Save writes the full record.
func (r *JobRepository) Save(ctx context.Context, job *entity.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// UpdateFields applies a partial update to one job.
func (r *JobRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Job{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of jobs plus the total row count for the filters.
// Ordering is by job number within the year; pagination is page based.
func (r *JobRepository) List(ctx context.Context, p ListParams) ([]entity.Job, int64, error) {
	query := r.scopedQuery(ctx, p)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if p.Limit <= 0 {
		p.Limit = 100
	}
	if p.Page <= 0 {
		p.Page = 1
	}

	var jobs []entity.Job
	err := query.
		Order("job_no ASC").
		Offset((p.Page - 1) * p.Limit).
		Limit(p.Limit).
		Find(&jobs).Error
	return jobs, total, err
}

// UnresolvedCount counts jobs with open queries in the pending bucket of a
// year, ignoring the unresolved-only filter itself.
func (r *JobRepository) UnresolvedCount(ctx context.Context, p ListParams) (int64, error) {
	p.UnresolvedOnly = false
	p.Status = entity.StatusPending

	var count int64
	err := r.scopedQuery(ctx, p).
		Where("has_unresolved_queries = ?", true).
		Count(&count).Error
	return count, err
}

func (r *JobRepository) scopedQuery(ctx context.Context, p ListParams) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&entity.Job{}).
		Where("year = ?", p.Year)

	if p.Status != "" && p.Status != "all" {
		query = query.Where("status = ?", p.Status)
	}
	if p.DetailedStatus != "" && p.DetailedStatus != "all" {
		query = query.Where("detailed_status = ?", p.DetailedStatus)
	}
	if p.ICDCode != "" && p.ICDCode != "all" {
		query = query.Where("custom_house = ?", p.ICDCode)
	}
	if p.Importer != "" && p.Importer != "all" {
		query = query.Where("importer = ?", p.Importer)
	}
	if p.UnresolvedOnly {
		query = query.Where("has_unresolved_queries = ?", true)
	}
	if p.Search != "" {
		like := "%" + p.Search + "%"
		query = query.Where(
			"job_no ILIKE ? OR importer ILIKE ? OR awb_bl_no ILIKE ? OR be_no ILIKE ?",
			like, like, like, like,
		)
	}
	return query
}

// JobSuggestion is a lightweight typeahead row.
type JobSuggestion struct {
	JobNo    string `json:"job_no"`
	Importer string `json:"importer"`
	AwbBlNo  string `json:"awb_bl_no"`
	BENo     string `json:"be_no"`
}

// Typeahead returns up to limit candidate jobs matching the input.
func (r *JobRepository) Typeahead(ctx context.Context, year, search, icdCode, importer string, limit int) ([]JobSuggestion, error) {
	if limit <= 0 || limit > 25 {
		limit = 8
	}

	query := r.db.WithContext(ctx).
		Model(&entity.Job{}).
		Where("year = ?", year)
	if icdCode != "" && icdCode != "all" {
		query = query.Where("custom_house = ?", icdCode)
	}
	if importer != "" && importer != "all" {
		query = query.Where("importer = ?", importer)
	}
	like := "%" + search + "%"
	query = query.Where(
		"job_no ILIKE ? OR importer ILIKE ? OR awb_bl_no ILIKE ? OR be_no ILIKE ?",
		like, like, like, like,
	)

	var suggestions []JobSuggestion
	err := query.
		Select("job_no", "importer", "awb_bl_no", "be_no").
		Order("job_no ASC").
		Limit(limit).
		Scan(&suggestions).Error
	return suggestions, err
}

// ImporterList returns the distinct importers with jobs in the year.
func (r *JobRepository) ImporterList(ctx context.Context, year string) ([]string, error) {
	var importers []string
	err := r.db.WithContext(ctx).
		Model(&entity.Job{}).
		Where("year = ? AND importer <> ''", year).
		Distinct("importer").
		Order("importer ASC").
		Pluck("importer", &importers).Error
	return importers, err
}

// Years returns the fiscal years present in the jobs table, newest first.
func (r *JobRepository) Years(ctx context.Context) ([]string, error) {
	var years []string
	err := r.db.WithContext(ctx).
		Model(&entity.Job{}).
		Distinct("year").
		Order("year DESC").
		Pluck("year", &years).Error
	return years, err
}

// LastJobsDate returns the creation time of the most recently added job.
func (r *JobRepository) LastJobsDate(ctx context.Context) (time.Time, error) {
	var job entity.Job
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, err
	}
	return job.CreatedAt, nil
}

// UpsertBatch inserts jobs, updating existing rows on the (job_no, year)
// identity. Used by the spreadsheet import.
func (r *JobRepository) UpsertBatch(ctx context.Context, jobs []entity.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "job_no"}, {Name: "year"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"custom_house", "importer", "shipping_line", "awb_bl_no",
				"type_of_b_e", "consignment_type", "vessel_berthing",
				"gateway_igm_date", "discharge_date", "out_of_charge",
				"pcv_date", "be_no", "be_date", "container_nos",
				"detailed_status", "updated_by", "updated_at",
			}),
		}).
		Create(&jobs).Error
}
