package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

type catalogService struct {
	store  port.DocumentStore
	mirror *Mirror
	cache  port.RecommendationCache
	logger *zap.Logger
}

// NewCatalogService は catalogService の新しいインスタンスを生成します。
func NewCatalogService(store port.DocumentStore, mirror *Mirror, cache port.RecommendationCache, logger *zap.Logger) port.CatalogService {
	if cache == nil {
		cache = noopCache{}
	}
	return &catalogService{
		store:  store,
		mirror: mirror,
		cache:  cache,
		logger: logger,
	}
}

// SaveJob は求人をストアに保存した後、インデックスへのミラーを投入します。
func (s *catalogService) SaveJob(ctx context.Context, job port.JobDocument) (*port.JobDocument, error) {
	saved, err := s.store.UpsertJob(ctx, job)
	if err != nil {
		return nil, err
	}

	s.mirror.Job(ctx, *saved)
	s.cache.InvalidateJob(ctx, saved.ID)
	s.logger.Info("job saved", zap.String("job_id", saved.ID))
	return saved, nil
}

// UpdateJobAs は既存の求人を更新します。所有者か管理者以外は ErrForbidden です。
func (s *catalogService) UpdateJobAs(ctx context.Context, caller port.Caller, job port.JobDocument) (*port.JobDocument, error) {
	existing, err := s.ownedJob(ctx, caller, job.ID)
	if err != nil {
		return nil, err
	}

	job.CreatedBy = existing.CreatedBy
	job.CreatedAt = existing.CreatedAt
	return s.SaveJob(ctx, job)
}

func (s *catalogService) DeleteJob(ctx context.Context, id string) error {
	if err := s.store.DeleteJob(ctx, id); err != nil {
		return err
	}

	s.mirror.Delete(ctx, port.KindJob, id)
	s.cache.InvalidateJob(ctx, id)
	s.logger.Info("job deleted", zap.String("job_id", id))
	return nil
}

func (s *catalogService) DeleteJobAs(ctx context.Context, caller port.Caller, id string) error {
	if _, err := s.ownedJob(ctx, caller, id); err != nil {
		return err
	}
	return s.DeleteJob(ctx, id)
}

func (s *catalogService) ownedJob(ctx context.Context, caller port.Caller, id string) (*port.JobDocument, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: job id is required", port.ErrInvalidInput)
	}

	existing, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && existing.CreatedBy != caller.UserID {
		return nil, port.ErrForbidden
	}
	return existing, nil
}

// SaveApplicant は応募者プロフィールを保存します。ID が空の場合は UserID の既存プロフィールを更新します。
func (s *catalogService) SaveApplicant(ctx context.Context, applicant port.ApplicantDocument) (*port.ApplicantDocument, error) {
	if applicant.ID == "" && applicant.UserID != "" {
		existing, err := s.store.GetApplicantByUserID(ctx, applicant.UserID)
		switch {
		case err == nil:
			applicant.ID = existing.ID
			applicant.CreatedAt = existing.CreatedAt
		case !errors.Is(err, port.ErrNotFound):
			return nil, err
		}
	}

	saved, err := s.store.UpsertApplicant(ctx, applicant)
	if err != nil {
		return nil, err
	}

	s.mirror.Applicant(ctx, *saved)
	s.cache.InvalidateApplicant(ctx, saved.ID)
	s.logger.Info("applicant saved", zap.String("applicant_id", saved.ID))
	return saved, nil
}

func (s *catalogService) DeleteApplicant(ctx context.Context, id string) error {
	if err := s.store.DeleteApplicant(ctx, id); err != nil {
		return err
	}

	s.mirror.Delete(ctx, port.KindApplicant, id)
	s.cache.InvalidateApplicant(ctx, id)
	s.logger.Info("applicant deleted", zap.String("applicant_id", id))
	return nil
}

func (s *catalogService) DeleteApplicantByUserID(ctx context.Context, userID string) error {
	existing, err := s.store.GetApplicantByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return s.DeleteApplicant(ctx, existing.ID)
}

func (s *catalogService) SaveCompany(ctx context.Context, company port.CompanyDocument) (*port.CompanyDocument, error) {
	saved, err := s.store.UpsertCompany(ctx, company)
	if err != nil {
		return nil, err
	}

	s.mirror.Company(ctx, *saved)
	s.logger.Info("company saved", zap.String("company_id", saved.ID))
	return saved, nil
}

func (s *catalogService) DeleteCompany(ctx context.Context, id string) error {
	if err := s.store.DeleteCompany(ctx, id); err != nil {
		return err
	}

	s.mirror.Delete(ctx, port.KindCompany, id)
	s.logger.Info("company deleted", zap.String("company_id", id))
	return nil
}
