package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiresync/hiresync/internal/talent/infrastructure/persistence"
)

const seedYAML = `
jobs:
  - id: 6b4f2c1a-4a3e-4f7f-9a20-12d3a894f001
    role: Backend Engineer
    description: Go services and storage
    years_of_experience: "3-5"

candidates:
  - id: 6b4f2c1a-4a3e-4f7f-9a20-12d3a894f101
    job_id: 6b4f2c1a-4a3e-4f7f-9a20-12d3a894f001
    name: Ana Flores
    email: ana@example.com
    fit_score: 95
    experience_years: 4.5
    skills: [go, postgres]
  - job_id: 6b4f2c1a-4a3e-4f7f-9a20-12d3a894f001
    name: Ben Okoro
    email: ben@example.com
    fit_score: 70

interviewers:
  - name: Tara
    email: tara@example.com
    expertise: [engineering]
    department: Engineering
  - name: Hugo
    email: hugo@example.com
    expertise: [hr]
    department: People
`

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("parses a full seed file", func(t *testing.T) {
		file, err := Load(writeSeedFile(t, seedYAML))
		require.NoError(t, err)

		require.Len(t, file.Jobs, 1)
		assert.Equal(t, "Backend Engineer", file.Jobs[0].Role)
		require.Len(t, file.Candidates, 2)
		assert.Equal(t, 95, file.Candidates[0].FitScore)
		assert.Equal(t, []string{"go", "postgres"}, file.Candidates[0].Skills)
		require.Len(t, file.Interviewers, 2)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		_, err := Load(writeSeedFile(t, "jobs: [}"))
		assert.Error(t, err)
	})
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	newStores := func() (Stores, *persistence.InMemoryStore) {
		store := persistence.NewInMemoryStore()
		return Stores{Jobs: store, Candidates: store, Interviewers: store}, store
	}

	t.Run("writes all entries and generates missing ids", func(t *testing.T) {
		file, err := Load(writeSeedFile(t, seedYAML))
		require.NoError(t, err)
		stores, store := newStores()

		require.NoError(t, Apply(ctx, file, stores))

		jobID := file.Jobs[0].ID
		job, err := store.GetJob(ctx, uuid.MustParse(jobID))
		require.NoError(t, err)
		assert.Equal(t, "Backend Engineer", job.RoleName)

		candidates, err := store.GetCandidatesByJob(ctx, job.ID)
		require.NoError(t, err)
		require.Len(t, candidates, 2)
		for _, candidate := range candidates {
			assert.NotEqual(t, uuid.Nil, candidate.ID)
		}

		pool, err := store.GetAllInterviewers(ctx)
		require.NoError(t, err)
		assert.Len(t, pool, 2)
	})

	t.Run("applying twice does not duplicate keyed records", func(t *testing.T) {
		file, err := Load(writeSeedFile(t, seedYAML))
		require.NoError(t, err)
		stores, store := newStores()

		require.NoError(t, Apply(ctx, file, stores))
		require.NoError(t, Apply(ctx, file, stores))

		candidates, err := store.GetCandidatesByJob(ctx, uuid.MustParse(file.Jobs[0].ID))
		require.NoError(t, err)
		// Ana carries a fixed id and is upserted; Ben gets a fresh id per run.
		assert.Len(t, candidates, 3)
	})

	t.Run("invalid id is an error", func(t *testing.T) {
		file := &File{Jobs: []JobEntry{{ID: "not-a-uuid", Role: "Backend Engineer"}}}
		stores, _ := newStores()

		err := Apply(ctx, file, stores)
		assert.ErrorContains(t, err, "invalid id")
	})

	t.Run("candidate with an invalid job id is an error", func(t *testing.T) {
		file := &File{Candidates: []CandidateEntry{{Name: "Ana", JobID: "nope"}}}
		stores, _ := newStores()

		err := Apply(ctx, file, stores)
		assert.ErrorContains(t, err, "invalid job_id")
	})
}

