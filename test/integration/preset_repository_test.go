package integration

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	preset "github.com/Ramsey-B/graft/internal/repositories/preset"
	"github.com/Ramsey-B/graft/pkg/database"
	"github.com/Ramsey-B/graft/pkg/models"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func getTestDB(t *testing.T) database.DB {
	t.Helper()

	// Use environment variables or defaults for test DB
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbUser := os.Getenv("DB_USER_NAME")
	if dbUser == "" {
		dbUser = "user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "password"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "graft"
	}

	dsn := "host=" + dbHost + " user=" + dbUser + " password=" + dbPass + " dbname=" + dbName + " sslmode=disable"
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}

	return database.NewDatabaseInstance(db, getTestLogger())
}

// assertNotFound asserts that err is an HTTP 404 error
func assertNotFound(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, httperror.IsHTTPError(err), "expected HTTP error, got: %v", err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err), "expected 404, got: %d", httperror.GetStatusCode(err))
}

func TestPresetRepository_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := preset.NewRepository(db, logger)

	ctx := context.Background()

	// Test Create
	created, err := repo.Create(ctx, models.CreateCriteriaPresetRequest{
		Name:        "Engineering match",
		Description: strPtr("Weighted skills and experience"),
		Criteria: models.Criteria{
			Weights:  map[string]float64{"skills": 0.6, "experience": 0.4},
			Ranges:   map[string]float64{"experience": 10},
			MinScore: 0.2,
		},
		IsActive: true,
	})
	require.NoError(t, err)
	_, err = uuid.Parse(created.ID)
	require.NoError(t, err, "expected a UUID preset ID, got: %s", created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.True(t, created.IsActive)

	// Test GetByID
	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Engineering match", fetched.Name)
	assert.Equal(t, "Weighted skills and experience", *fetched.Description)

	crit, err := fetched.ParseCriteria()
	require.NoError(t, err)
	assert.InDelta(t, 0.6, crit.Weights["skills"], 1e-9)
	assert.InDelta(t, 10.0, crit.Ranges["experience"], 1e-9)
	assert.InDelta(t, 0.2, crit.MinScore, 1e-9)

	// Test List
	items, total, err := repo.List(ctx, false, 1, 20)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, 1)
	assert.True(t, containsPreset(items, created.ID), "expected the new preset on the first page")

	// Test Update
	updated, err := repo.Update(ctx, created.ID, models.UpdateCriteriaPresetRequest{
		Name:     strPtr("Engineering match v2"),
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Engineering match v2", updated.Name)
	assert.False(t, updated.IsActive)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	// Inactive presets drop out of active-only listings
	activeItems, _, err := repo.List(ctx, true, 1, 100)
	require.NoError(t, err)
	assert.False(t, containsPreset(activeItems, created.ID))

	// Criteria updates replace the stored document
	updated, err = repo.Update(ctx, created.ID, models.UpdateCriteriaPresetRequest{
		Criteria: &models.Criteria{Weights: map[string]float64{"skills": 1.0}},
	})
	require.NoError(t, err)
	reparsed, err := updated.ParseCriteria()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, reparsed.Weights["skills"], 1e-9)
	assert.NotContains(t, reparsed.Weights, "experience")

	// Test Delete
	err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, created.ID)
	assertNotFound(t, err)

	err = repo.Delete(ctx, created.ID)
	assertNotFound(t, err)
}

func TestPresetRepository_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := preset.NewRepository(db, logger)

	ctx := context.Background()
	missing := uuid.New().String()

	_, err := repo.GetByID(ctx, missing)
	assertNotFound(t, err)

	_, err = repo.Update(ctx, missing, models.UpdateCriteriaPresetRequest{Name: strPtr("renamed")})
	assertNotFound(t, err)

	err = repo.Delete(ctx, missing)
	assertNotFound(t, err)
}

func containsPreset(items []models.CriteriaPreset, id string) bool {
	for i := range items {
		if items[i].ID == id {
			return true
		}
	}
	return false
}

func strPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}
