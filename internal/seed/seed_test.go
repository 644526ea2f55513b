package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"housing-allocation-backend/internal/allocation"
	"housing-allocation-backend/internal/db"
	"housing-allocation-backend/internal/model"
	"housing-allocation-backend/internal/pkg/password"
	"housing-allocation-backend/internal/store"
)

const sample = `
residences:
  - {name: "DBSA Male", block: "M-5", on_campus: true, type: male, available_rooms: 3}
  - {name: "New Male", block: "A West", on_campus: true, type: male, available_rooms: 3, restrictions: "nursing only"}
  - {name: "F5", block: "", on_campus: true, type: female, available_rooms: 3}
off_campus:
  - "Simeka Heights"
  - "Grand Royale"
students:
  - student_number: "23032739"
    password: pass1
    first_name: Amokelane
    last_name: Bele
    gender: male
    year_of_study: 1
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	f, err := Load(writeSample(t))
	require.NoError(t, err)
	assert.Len(t, f.Residences, 3)
	assert.Equal(t, "A West", f.Residences[1].Block)
	assert.Equal(t, []string{"Simeka Heights", "Grand Royale"}, f.OffCampus)
	require.Len(t, f.Students, 1)
	assert.Equal(t, "23032739", f.Students[0].StudentNumber)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApply_Idempotent(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open("file:seed_apply?mode=memory&cache=shared&_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()
	require.NoError(t, db.Migrate(gdb))

	st := store.NewGormStore(gdb)
	svc := allocation.NewService(st, nil, nil)
	f, err := Load(writeSample(t))
	require.NoError(t, err)
	ctx := context.Background()

	first, err := Apply(ctx, f, svc, st, bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, Result{Residences: 5, StudentsCreated: 1}, first)

	second, err := Apply(ctx, f, svc, st, bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, 0, second.StudentsCreated)

	var count int64
	require.NoError(t, gdb.Model(&model.Residence{}).Count(&count).Error)
	assert.Equal(t, int64(5), count)

	student, err := st.GetStudentByNumber(ctx, "23032739")
	require.NoError(t, err)
	assert.True(t, password.Verify("pass1", student.PasswordHash))

	off, err := st.FindResidence(ctx, "Grand Royale", "")
	require.NoError(t, err)
	assert.False(t, off.OnCampus)
	assert.Equal(t, 10, off.AvailableRooms)
}

func TestSeedFileInRepoParses(t *testing.T) {
	f, err := Load(filepath.Join("..", "..", "config", "seed.yaml"))
	require.NoError(t, err)
	assert.Len(t, f.Residences, 31)
	assert.Len(t, f.OffCampus, 7)
	assert.Len(t, f.Students, 11)
	for _, r := range f.Residences {
		assert.True(t, model.ResidenceType(r.Type).Valid(), r.Name)
	}
}
