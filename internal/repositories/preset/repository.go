// Package preset persists named criteria configurations.
package preset

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/graft/pkg/database"
	"github.com/Ramsey-B/graft/pkg/models"
	"github.com/Ramsey-B/graft/pkg/tracing"
)

const table = "criteria_presets"

var columns = []string{"id", "name", "description", "criteria", "is_active", "created_at", "updated_at", "deleted_at"}

// Repository handles criteria preset persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new criteria preset repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new criteria preset
func (r *Repository) Create(ctx context.Context, req models.CreateCriteriaPresetRequest) (*models.CriteriaPreset, error) {
	ctx, span := tracing.StartSpan(ctx, "preset.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method": "Create",
		"name":   req.Name,
	})

	criteriaDoc, err := json.Marshal(req.Criteria)
	if err != nil {
		log.WithError(err).Error("Failed to encode preset criteria")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to encode preset criteria")
	}

	now := time.Now().UTC()
	preset := &models.CriteriaPreset{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Criteria:    criteriaDoc,
		IsActive:    req.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(table)
	sb.Cols("id", "name", "description", "criteria", "is_active", "created_at", "updated_at")
	sb.Values(preset.ID, preset.Name, preset.Description, preset.Criteria, preset.IsActive, preset.CreatedAt, preset.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to create criteria preset")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create criteria preset")
	}

	log.WithFields(map[string]any{"id": preset.ID}).Info("Created criteria preset")
	return preset, nil
}

// GetByID retrieves a criteria preset by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*models.CriteriaPreset, error) {
	ctx, span := tracing.StartSpan(ctx, "preset.Repository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var preset models.CriteriaPreset
	if err := r.db.GetContext(ctx, &preset, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "criteria preset %s not found", id)
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get criteria preset")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get criteria preset")
	}

	return &preset, nil
}

// List retrieves a page of criteria presets, newest first
func (r *Repository) List(ctx context.Context, activeOnly bool, page, pageSize int) ([]models.CriteriaPreset, int, error) {
	ctx, span := tracing.StartSpan(ctx, "preset.Repository.List")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(table)
	countWhere := []string{countSb.IsNull("deleted_at")}
	if activeOnly {
		countWhere = append(countWhere, countSb.Equal("is_active", true))
	}
	countSb.Where(countWhere...)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count criteria presets")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count criteria presets")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	where := []string{sb.IsNull("deleted_at")}
	if activeOnly {
		where = append(where, sb.Equal("is_active", true))
	}
	sb.Where(where...)
	sb.OrderBy("created_at DESC", "id ASC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var presets []models.CriteriaPreset
	if err := r.db.SelectContext(ctx, &presets, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list criteria presets")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list criteria presets")
	}

	return presets, totalCount, nil
}

// Update applies partial changes to a criteria preset. The read and write
// share one transaction so concurrent updates cannot interleave.
func (r *Repository) Update(ctx context.Context, id string, req models.UpdateCriteriaPresetRequest) (*models.CriteriaPreset, error) {
	ctx, span := tracing.StartSpan(ctx, "preset.Repository.Update")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method": "Update",
		"id":     id,
	})

	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		log.WithError(err).Error("Failed to start transaction")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)
	sb.SQL("FOR UPDATE")

	query, args := sb.Build()
	var existing models.CriteriaPreset
	if err := tx.GetContext(txCtx, &existing, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "criteria preset %s not found", id)
		}
		log.WithError(err).Error("Failed to get criteria preset")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get criteria preset")
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.Criteria != nil {
		criteriaDoc, err := json.Marshal(req.Criteria)
		if err != nil {
			log.WithError(err).Error("Failed to encode preset criteria")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to encode preset criteria")
		}
		existing.Criteria = criteriaDoc
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	existing.UpdatedAt = time.Now().UTC()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(table)
	ub.Set(
		ub.Assign("name", existing.Name),
		ub.Assign("description", existing.Description),
		ub.Assign("criteria", existing.Criteria),
		ub.Assign("is_active", existing.IsActive),
		ub.Assign("updated_at", existing.UpdatedAt),
	)
	ub.Where(ub.Equal("id", id))

	query, args = ub.Build()
	if _, err := tx.ExecContext(txCtx, query, args...); err != nil {
		log.WithError(err).Error("Failed to update criteria preset")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update criteria preset")
	}

	if err := tx.Commit(ctx); err != nil {
		log.WithError(err).Error("Failed to commit criteria preset update")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update criteria preset")
	}

	log.Info("Updated criteria preset")
	return &existing, nil
}

// Delete soft deletes a criteria preset
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "preset.Repository.Delete")
	defer span.End()

	now := time.Now().UTC()
	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(table)
	ub.Set(ub.Assign("deleted_at", now))
	ub.Where(
		ub.Equal("id", id),
		ub.IsNull("deleted_at"),
	)

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete criteria preset")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete criteria preset")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "criteria preset %s not found", id)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Deleted criteria preset")
	return nil
}
