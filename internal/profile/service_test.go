package profile

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"redguardian/infrastructure"
	"redguardian/internal/database"
	"redguardian/internal/files"
	"redguardian/internal/reports"
	"redguardian/internal/user"
)

type fixture struct {
	profiles *Service
	users    *user.Service
	reports  *reports.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(dir, "test.db")), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	db := database.Wrap(gdb)
	require.NoError(t, db.Migrate(
		&user.User{}, &user.Favorite{},
		&reports.Report{}, &reports.Comment{}, &reports.Link{}, &reports.Collaborator{},
	))

	users := user.NewService(user.NewRepository(db))
	storage := files.NewDiskStorage(filepath.Join(dir, "blobs"), "http://localhost/files")
	rep := reports.NewService(reports.NewRepository(db), users, storage)
	return &fixture{profiles: NewService(users, rep), users: users, reports: rep}
}

func (f *fixture) verifiedUser(t *testing.T, email string) *user.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), user.CreateUserInput{
		Email: email, Name: "Vecina", Password: "pw",
	})
	require.NoError(t, err)
	require.NoError(t, f.users.MarkVerified(context.Background(), u.ID))
	return u
}

func TestGetProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ana := f.verifiedUser(t, "ana@example.com")
	beto := f.verifiedUser(t, "beto@example.com")

	report, err := f.reports.CreateReport(ctx, reports.CreateReportInput{
		SenderID: ana.ID,
		Kind:     reports.KindProblem,
		Summary:  "Bache en la avenida",
		File:     strings.NewReader("jpeg bytes"),
	})
	require.NoError(t, err)

	_, err = f.reports.CreateReport(ctx, reports.CreateReportInput{
		SenderID:           beto.ID,
		Kind:               reports.KindSolution,
		Summary:            "Relleno coordinado",
		File:               strings.NewReader("pdf bytes"),
		CollaboratorEmails: []string{"ana@example.com"},
	})
	require.NoError(t, err)

	_, err = f.reports.ToggleFavorite(ctx, ana.ID, report.ID)
	require.NoError(t, err)

	t.Run("own profile includes favorites", func(t *testing.T) {
		p, err := f.profiles.Get(ctx, ana.ID, ana.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, p.ReportCount)
		assert.Equal(t, 1, p.CollabCount)
		assert.Equal(t, 1, p.FavoriteCount)
		require.Len(t, p.Favorites, 1)
	})

	t.Run("someone else's profile hides favorites", func(t *testing.T) {
		p, err := f.profiles.Get(ctx, ana.ID, beto.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, p.ReportCount)
		assert.Equal(t, 1, p.CollabCount)
		assert.Empty(t, p.Favorites)
		assert.Zero(t, p.FavoriteCount)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.profiles.Get(ctx, "missing", ana.ID)
		assert.ErrorIs(t, err, infrastructure.ErrUserNotFound)
	})
}
