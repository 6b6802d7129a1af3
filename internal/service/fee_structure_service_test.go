package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/periyanachi-erp/fees-api/internal/dto"
	"github.com/periyanachi-erp/fees-api/internal/models"
	appErrors "github.com/periyanachi-erp/fees-api/pkg/errors"
)

type stubStructureRepo struct {
	byID    map[string]*models.FeeStructure
	created []*models.FeeStructure
	updated []*models.FeeStructure
}

func (s *stubStructureRepo) List(context.Context, models.FeeStructureFilter) ([]models.FeeStructureDetail, int, error) {
	return nil, 0, nil
}

func (s *stubStructureRepo) FindByID(_ context.Context, id string) (*models.FeeStructure, error) {
	if structure, ok := s.byID[id]; ok {
		return structure, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubStructureRepo) Create(_ context.Context, structure *models.FeeStructure) error {
	structure.ID = "fs-new"
	s.created = append(s.created, structure)
	return nil
}

func (s *stubStructureRepo) Update(_ context.Context, structure *models.FeeStructure) error {
	s.updated = append(s.updated, structure)
	return nil
}

func (s *stubStructureRepo) Delete(context.Context, string) error { return nil }

func createStructureRequest(amount string) dto.CreateFeeStructureRequest {
	return dto.CreateFeeStructureRequest{
		AcademicYearID: "2026-27",
		ClassName:      "10-A",
		Medium:         "English",
		FeeCategoryID:  "cat1",
		Amount:         decimal.RequireFromString(amount),
		DueDate:        time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestFeeStructureServiceCreateAcceptsZeroAmount(t *testing.T) {
	repo := &stubStructureRepo{}
	svc := NewFeeStructureService(repo, &stubCategoryReader{category: &models.FeeCategory{ID: "cat1", Name: "Tuition", ApplicableTo: "all"}}, nil, nil)

	structure, err := svc.Create(context.Background(), createStructureRequest("0.00"))
	require.NoError(t, err)
	assert.True(t, structure.Amount.IsZero())
	assert.Equal(t, 1, structure.Installments)
	require.Len(t, repo.created, 1)
}

func TestFeeStructureServiceCreateRejectsNegativeAmount(t *testing.T) {
	repo := &stubStructureRepo{}
	svc := NewFeeStructureService(repo, &stubCategoryReader{category: &models.FeeCategory{ID: "cat1", Name: "Tuition", ApplicableTo: "all"}}, nil, nil)

	_, err := svc.Create(context.Background(), createStructureRequest("-100.00"))
	appErr := asAppError(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, repo.created)
}

func TestFeeStructureServiceUpdateAcceptsZeroAmount(t *testing.T) {
	repo := &stubStructureRepo{byID: map[string]*models.FeeStructure{"fs1": tuitionStructure()}}
	svc := NewFeeStructureService(repo, &stubCategoryReader{}, nil, nil)

	structure, err := svc.Update(context.Background(), "fs1", dto.UpdateFeeStructureRequest{
		Amount:  decimal.Zero,
		DueDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, structure.Amount.IsZero())
	require.Len(t, repo.updated, 1)
}

func TestFeeStructureServiceUpdateRejectsNegativeAmount(t *testing.T) {
	repo := &stubStructureRepo{byID: map[string]*models.FeeStructure{"fs1": tuitionStructure()}}
	svc := NewFeeStructureService(repo, &stubCategoryReader{}, nil, nil)

	_, err := svc.Update(context.Background(), "fs1", dto.UpdateFeeStructureRequest{
		Amount:  decimal.RequireFromString("-1.00"),
		DueDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	appErr := asAppError(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, repo.updated)
}
