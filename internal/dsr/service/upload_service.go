package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/entity"
	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/repository"
	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/status"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const presignExpiry = 7 * 24 * time.Hour

// UploadService handles the bulk spreadsheet import and document uploads.
type UploadService struct {
	repo   *repository.JobRepository
	jobs   *JobService
	mc     *minio.Client
	bucket string
	logger *zap.Logger
}

func NewUploadService(repo *repository.JobRepository, jobs *JobService, mc *minio.Client, bucket string, logger *zap.Logger) *UploadService {
	return &UploadService{repo: repo, jobs: jobs, mc: mc, bucket: bucket, logger: logger}
}

// ImportResult summarizes one spreadsheet import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ImportSpreadsheet reads the daily job sheet and upserts one job per row.
// The first row is the header; columns are matched by name so operators can
// reorder them. Rows without a job number are skipped, everything else is
// taken as-is; dates stay raw strings and feed the status derivation.
func (s *UploadService) ImportSpreadsheet(ctx context.Context, r io.Reader, year, uploadedBy string) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return &ImportResult{}, nil
	}

	cols := make(map[string]int)
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	cell := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	result := &ImportResult{}
	jobs := make([]entity.Job, 0, len(rows)-1)
	seen := make(map[string]bool)
	now := time.Now()

	for i, row := range rows[1:] {
		jobNo := cell(row, "job_no")
		if jobNo == "" {
			result.Skipped++
			continue
		}
		if seen[jobNo] {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: duplicate job_no %s", i+2, jobNo))
			continue
		}
		seen[jobNo] = true

		job := entity.Job{
			ID:              uuid.New().String(),
			JobNo:           jobNo,
			Year:            year,
			CustomHouse:     cell(row, "custom_house"),
			Importer:        cell(row, "importer"),
			ShippingLine:    cell(row, "shipping_line_airline"),
			AwbBlNo:         cell(row, "awb_bl_no"),
			TypeOfBE:        cell(row, "type_of_b_e"),
			ConsignmentType: cell(row, "consignment_type"),
			VesselBerthing:  cell(row, "vessel_berthing"),
			GatewayIGMDate:  cell(row, "gateway_igm_date"),
			DischargeDate:   cell(row, "discharge_date"),
			BENo:            cell(row, "be_no"),
			BEDate:          cell(row, "be_date"),
			Status:          entity.StatusPending,
			CreatedBy:       uploadedBy,
			UpdatedBy:       uploadedBy,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		for _, no := range splitList(cell(row, "container_nos")) {
			job.ContainerNos = append(job.ContainerNos, entity.Container{ContainerNumber: no})
		}

		job.DetailedStatus = status.Compute(&job)
		jobs = append(jobs, job)
	}

	if err := s.repo.UpsertBatch(ctx, jobs); err != nil {
		return nil, fmt.Errorf("upsert jobs: %w", err)
	}
	result.Imported = len(jobs)

	s.jobs.InvalidateYear(ctx, year)
	s.logger.Info("spreadsheet imported",
		zap.String("year", year),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// UploadDocument stores one attachment for a job in object storage and
// appends it to the job's document list with a presigned URL.
func (s *UploadService) UploadDocument(ctx context.Context, jobID, documentName, filename string, r io.Reader, size int64, contentType, uploadedBy string) (*entity.Job, error) {
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("%s/%s/%s_%s", job.Year, job.JobNo, uuid.New().String()[:8], filepath.Base(filename))

	if _, err := s.mc.PutObject(ctx, s.bucket, objectKey, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	presigned, err := s.mc.PresignedGetObject(ctx, s.bucket, objectKey, presignExpiry, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("presign document: %w", err)
	}

	job.Documents = append(job.Documents, entity.Document{
		DocumentName: documentName,
		ObjectKey:    objectKey,
		URL:          presigned.String(),
		UploadedBy:   uploadedBy,
		UploadedAt:   time.Now().Format(time.RFC3339),
	})
	job.UpdatedBy = uploadedBy
	job.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, job); err != nil {
		return nil, err
	}

	s.jobs.InvalidateYear(ctx, job.Year)
	return job, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ',' || r == '\n'
	})
	out := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
