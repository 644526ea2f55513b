package allocation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"housing-allocation-backend/internal/db"
	"housing-allocation-backend/internal/model"
	"housing-allocation-backend/internal/notification"
	"housing-allocation-backend/internal/pkg/password"
	"housing-allocation-backend/internal/store"
)

// recordingSink captures published events.
type recordingSink struct {
	mu     sync.Mutex
	events []notification.Event
	err    error
}

func (r *recordingSink) Publish(_ context.Context, evt notification.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, evt)
	return nil
}

func (r *recordingSink) kinds() []notification.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notification.Kind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

type fixture struct {
	db      *gorm.DB
	store   store.Store
	sink    *recordingSink
	service *Service

	studentA int64
	studentB int64

	aWest      model.Residence // on campus, block A-West
	dbsaM5     model.Residence // on campus, block M-5
	lostCity   model.Residence // on campus, block Ground Floor
	f5         model.Residence // on campus, no block
	riverside  model.Residence // off campus
	greenLodge model.Residence // off campus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))

	f := &fixture{db: gdb, store: store.NewGormStore(gdb), sink: &recordingSink{}}
	f.service = NewService(f.store, f.sink, nil)

	residences := []*model.Residence{
		{Name: "Bernard Ncube", Block: "A-West", OnCampus: true, Type: model.ResidenceMale, AvailableRooms: 40},
		{Name: "DBSA Male", Block: "M-5", OnCampus: true, Type: model.ResidenceMale, AvailableRooms: 20},
		{Name: "Lost City Boys", Block: "Ground Floor", OnCampus: true, Type: model.ResidenceMale, AvailableRooms: 30},
		{Name: "F5", OnCampus: true, Type: model.ResidenceFemale, AvailableRooms: 25},
		{Name: "Riverside Lodge", Type: model.ResidenceOffCamp, AvailableRooms: 10},
		{Name: "Green Lodge", Type: model.ResidenceOffCamp, AvailableRooms: 10},
	}
	for _, r := range residences {
		require.NoError(t, gdb.Create(r).Error)
	}
	f.aWest, f.dbsaM5, f.lostCity, f.f5, f.riverside, f.greenLodge =
		*residences[0], *residences[1], *residences[2], *residences[3], *residences[4], *residences[5]

	hash, err := password.HashWithCost("pass1", 4)
	require.NoError(t, err)
	a := &model.Student{StudentNumber: "23032739", PasswordHash: hash, FirstName: "Amokelane", LastName: "Bele", Email: "23032739@example.ac.za", Gender: "male"}
	b := &model.Student{StudentNumber: "24064940", PasswordHash: hash, FirstName: "Dakalo", LastName: "Makhavhu", Email: "24064940@example.ac.za", Gender: "male"}
	require.NoError(t, gdb.Create(a).Error)
	require.NoError(t, gdb.Create(b).Error)
	f.studentA, f.studentB = a.ID, b.ID
	return f
}

// insertApplication writes an application row directly, bypassing the lifecycle guards.
func (f *fixture) insertApplication(t *testing.T, app model.Application) model.Application {
	t.Helper()
	if app.ApplyDate.IsZero() {
		app.ApplyDate = time.Now()
	}
	require.NoError(t, f.db.Omit(clause.Associations).Create(&app).Error)
	return app
}

func (f *fixture) countApplications(t *testing.T, studentID int64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Application{}).Where("student_id = ?", studentID).Count(&n).Error)
	return n
}

func (f *fixture) status(t *testing.T, appID int64) model.ApplicationStatus {
	t.Helper()
	var app model.Application
	require.NoError(t, f.db.First(&app, appID).Error)
	return app.Status
}

func TestResolve_FreeTextMatchesStructured(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fromText, err := Resolve(ctx, f.store, []SelectionInput{FreeText("Lost City Boys - Ground Floor")})
	require.NoError(t, err)
	fromName, err := Resolve(ctx, f.store, []SelectionInput{ByName{Name: "Lost City Boys", Block: "Ground Floor"}})
	require.NoError(t, err)

	require.Len(t, fromText, 1)
	require.Len(t, fromName, 1)
	assert.Equal(t, f.lostCity.ID, fromText[0].ID)
	assert.Equal(t, fromName[0].ID, fromText[0].ID)
}

func TestResolve_BlockNormalization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, in := range []SelectionInput{
		ByName{Name: "DBSA Male", Block: "M5"},
		ByName{Name: "DBSA Male", Block: "M 5"},
		FreeText("DBSA Male - M5"),
		FreeText("DBSA Male - M-5"),
	} {
		got, err := Resolve(ctx, f.store, []SelectionInput{in})
		require.NoError(t, err, "%v", in)
		assert.Equal(t, f.dbsaM5.ID, got[0].ID, "%v", in)
	}
}

func TestResolve_NameOnlyFallbackAndByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := Resolve(ctx, f.store, []SelectionInput{FreeText("F5"), ByID{ResidenceID: f.riverside.ID}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, f.f5.ID, got[0].ID)
	assert.Equal(t, f.riverside.ID, got[1].ID)
}

func TestResolve_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := Resolve(ctx, f.store, nil)
	assert.ErrorIs(t, err, ErrResolution)
	assert.Contains(t, err.Error(), "no residences provided")

	_, err = Resolve(ctx, f.store, []SelectionInput{FreeText("F5"), FreeText("Nowhere Hall - B")})
	assert.ErrorIs(t, err, ErrResolution)
	assert.Contains(t, err.Error(), "Nowhere Hall")

	_, err = Resolve(ctx, f.store, []SelectionInput{ByID{ResidenceID: 9999}})
	assert.ErrorIs(t, err, ErrResolution)

	_, err = Resolve(ctx, f.store, []SelectionInput{ByID{ResidenceID: -1}})
	assert.ErrorIs(t, err, ErrResolution)

	_, err = Resolve(ctx, f.store, []SelectionInput{ByName{Name: "  "}})
	assert.ErrorIs(t, err, ErrResolution)

	_, err = Resolve(ctx, f.store, []SelectionInput{FreeText(" - A")})
	assert.ErrorIs(t, err, ErrResolution)
}

func TestValidator(t *testing.T) {
	testCases := []struct {
		name     string
		existing int
		tally    Tally
		wantErr  bool
	}{
		{name: "two on campus from zero", existing: 0, tally: Tally{OnCampus: 2}},
		{name: "three on campus in one batch", existing: 0, tally: Tally{OnCampus: 3}, wantErr: true},
		{name: "one existing plus one", existing: 1, tally: Tally{OnCampus: 1, OffCampus: 1}},
		{name: "two existing plus one", existing: 2, tally: Tally{OnCampus: 1}, wantErr: true},
		{name: "off campus is uncapped", existing: 2, tally: Tally{OffCampus: 12}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBatch(tc.tally)
			if err == nil {
				err = ValidateCumulative(tc.existing, tc.tally)
			}
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreate_OnePendingPerSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ids, err := f.service.ResolveAndCreateApplications(ctx, f.studentA, []SelectionInput{
		FreeText("Bernard Ncube - A-West"),
		ByName{Name: "DBSA Male", Block: "M5"},
		ByID{ResidenceID: f.riverside.ID},
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)

	apps, err := f.store.StudentApplications(ctx, f.studentA)
	require.NoError(t, err)
	require.Len(t, apps, 3)
	for _, a := range apps {
		assert.Equal(t, model.StatusPending, a.Status)
		assert.Nil(t, a.RoomNumber)
	}

	require.Equal(t, []notification.Kind{notification.KindSubmitted}, f.sink.kinds())
	evt := f.sink.events[0]
	assert.Equal(t, ids, evt.ApplicationIDs)
	assert.Equal(t, "Amokelane Bele", evt.StudentName)
	assert.Equal(t, "Bernard Ncube - A-West, DBSA Male - M-5, Riverside Lodge", evt.ResidenceName)
	assert.Equal(t, "23032739@example.ac.za", evt.RecipientEmail)
	assert.NotNil(t, evt.ApplyDate)
}

func TestCreate_OnCampusCap(t *testing.T) {
	t.Run("two existing plus one more is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.insertApplication(t, model.Application{StudentID: f.studentA, ResidenceID: f.aWest.ID, Status: model.StatusPending})
		f.insertApplication(t, model.Application{StudentID: f.studentA, ResidenceID: f.dbsaM5.ID, Status: model.StatusRejected})

		_, err := f.service.ResolveAndCreateApplications(context.Background(), f.studentA, []SelectionInput{FreeText("F5")})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, int64(2), f.countApplications(t, f.studentA))
		assert.Empty(t, f.sink.kinds())
	})

	t.Run("one existing plus one on and one off succeeds", func(t *testing.T) {
		f := newFixture(t)
		f.insertApplication(t, model.Application{StudentID: f.studentA, ResidenceID: f.aWest.ID, Status: model.StatusPending})

		ids, err := f.service.ResolveAndCreateApplications(context.Background(), f.studentA, []SelectionInput{
			FreeText("F5"), FreeText("Riverside Lodge"),
		})
		require.NoError(t, err)
		assert.Len(t, ids, 2)
		assert.Equal(t, int64(3), f.countApplications(t, f.studentA))
	})

	t.Run("three on campus in one batch is rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.ResolveAndCreateApplications(context.Background(), f.studentA, []SelectionInput{
			ByID{ResidenceID: f.aWest.ID}, ByID{ResidenceID: f.dbsaM5.ID}, ByID{ResidenceID: f.f5.ID},
		})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Zero(t, f.countApplications(t, f.studentA))
	})

	t.Run("off campus selections are uncapped", func(t *testing.T) {
		f := newFixture(t)
		f.insertApplication(t, model.Application{StudentID: f.studentA, ResidenceID: f.aWest.ID, Status: model.StatusPending})
		f.insertApplication(t, model.Application{StudentID: f.studentA, ResidenceID: f.dbsaM5.ID, Status: model.StatusPending})

		ids, err := f.service.ResolveAndCreateApplications(context.Background(), f.studentA, []SelectionInput{
			FreeText("Riverside Lodge"), FreeText("Green Lodge"),
		})
		require.NoError(t, err)
		assert.Len(t, ids, 2)
	})
}

func TestCreate_Duplicates(t *testing.T) {
	t.Run("same residence twice in one batch", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.ResolveAndCreateApplications(context.Background(), f.studentA, []SelectionInput{
			FreeText("Riverside Lodge"), ByID{ResidenceID: f.riverside.ID},
		})
		assert.ErrorIs(t, err, ErrConflict)
		assert.Zero(t, f.countApplications(t, f.studentA))
	})

	t.Run("same residence in two sequential batches", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		_, err := f.service.ResolveAndCreateApplications(ctx, f.studentA, []SelectionInput{FreeText("Riverside Lodge")})
		require.NoError(t, err)

		_, err = f.service.ResolveAndCreateApplications(ctx, f.studentA, []SelectionInput{
			FreeText("Green Lodge"), FreeText("Riverside Lodge"),
		})
		assert.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, int64(1), f.countApplications(t, f.studentA))
	})

	t.Run("other students may pick the same residence", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		_, err := f.service.ResolveAndCreateApplications(ctx, f.studentA, []SelectionInput{FreeText("Riverside Lodge")})
		require.NoError(t, err)
		_, err = f.service.ResolveAndCreateApplications(ctx, f.studentB, []SelectionInput{FreeText("Riverside Lodge")})
		require.NoError(t, err)
	})
}

func TestCreate_UnknownStudentAndUnresolved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.ResolveAndCreateApplications(ctx, 9999, []SelectionInput{FreeText("Riverside Lodge")})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.service.ResolveAndCreateApplications(ctx, f.studentA, []SelectionInput{
		FreeText("Riverside Lodge"), FreeText("Atlantis"),
	})
	assert.ErrorIs(t, err, ErrResolution)
	assert.Zero(t, f.countApplications(t, f.studentA))
}

func TestCreate_ConcurrentBatchesRespectCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	batches := [][]SelectionInput{
		{ByID{ResidenceID: f.aWest.ID}, ByID{ResidenceID: f.dbsaM5.ID}},
		{ByID{ResidenceID: f.lostCity.ID}, ByID{ResidenceID: f.f5.ID}},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(batches))
	for i, batch := range batches {
		wg.Add(1)
		go func(i int, batch []SelectionInput) {
			defer wg.Done()
			_, errs[i] = f.service.ResolveAndCreateApplications(ctx, f.studentA, batch)
		}(i, batch)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrValidation):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, int64(2), f.countApplications(t, f.studentA))
}

func TestDecideApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.insertApplication(t, model.Application{StudentID: f.studentA, ResidenceID: f.aWest.ID, Status: model.StatusPending})
	other := f.insertApplication(t, model.Application{StudentID: f.studentA, ResidenceID: f.riverside.ID, Status: model.StatusPending})

	require.NoError(t, f.service.DecideApplication(ctx, pending.ID, Approve, 1))
	assert.Equal(t, model.StatusApproved, f.status(t, pending.ID))

	err := f.service.DecideApplication(ctx, pending.ID, Reject, 1)
	assert.ErrorIs(t, err, ErrWrongState)
	assert.Equal(t, model.StatusApproved, f.status(t, pending.ID))

	require.NoError(t, f.service.DecideApplication(ctx, other.ID, Reject, 1))
	assert.Equal(t, model.StatusRejected, f.status(t, other.ID))

	assert.ErrorIs(t, f.service.DecideApplication(ctx, 9999, Approve, 1), ErrNotFound)
	assert.ErrorIs(t, f.service.DecideApplication(ctx, other.ID, Decision("maybe"), 1), ErrInvalidInput)

	assert.Equal(t, []notification.Kind{notification.KindApproved, notification.KindRejected}, f.sink.kinds())
	assert.Equal(t, "Bernard Ncube - A-West", f.sink.events[0].ResidenceName)
	assert.Equal(t, []int64{pending.ID}, f.sink.events[0].ApplicationIDs)
}

func TestRespondToOffer_ApproveAndAcceptApplicationSeven(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.service.now = func() time.Time { return time.Unix(1700000123, 0) }
	f.service.rooms = ClockRoomAllocator{Now: f.service.now}

	app := f.insertApplication(t, model.Application{ID: 7, StudentID: f.studentA, ResidenceID: f.aWest.ID, Status: model.StatusPending})
	require.Equal(t, int64(7), app.ID)

	require.NoError(t, f.service.DecideApplication(ctx, 7, Approve, 1))
	room, err := f.service.RespondToOffer(ctx, 7, AcceptOffer, f.studentA)
	require.NoError(t, err)
	assert.Equal(t, "A-West-123", room)

	stored, err := f.store.GetApplication(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, stored.Status)
	require.NotNil(t, stored.RoomNumber)
	assert.Equal(t, room, *stored.RoomNumber)

	kinds := f.sink.kinds()
	require.Equal(t, []notification.Kind{notification.KindApproved, notification.KindAccepted}, kinds)
	require.NotNil(t, f.sink.events[1].RoomNumber)
	assert.Equal(t, room, *f.sink.events[1].RoomNumber)
}

func TestRespondToOffer_OffCampusHasNoRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.insertApplication(t, model.Application{StudentID: f.studentA, ResidenceID: f.riverside.ID, Status: model.StatusApproved})

	room, err := f.service.RespondToOffer(ctx, app.ID, AcceptOffer, f.studentA)
	require.NoError(t, err)
	assert.Empty(t, room)

	stored, err := f.store.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, stored.Status)
	assert.Nil(t, stored.RoomNumber)
}

func TestRespondToOffer_RejectOffer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.insertApplication(t, model.Application{StudentID: f.studentA, ResidenceID: f.aWest.ID, Status: model.StatusApproved})

	room, err := f.service.RespondToOffer(ctx, app.ID, RejectOffer, f.studentA)
	require.NoError(t, err)
	assert.Empty(t, room)
	assert.Equal(t, model.StatusRejected, f.status(t, app.ID))
	assert.Equal(t, []notification.Kind{notification.KindOfferRejected}, f.sink.kinds())
}

func TestRespondToOffer_ForbiddenRegardlessOfStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	residences := []int64{f.aWest.ID, f.dbsaM5.ID, f.riverside.ID, f.greenLodge.ID}
	statuses := []model.ApplicationStatus{model.StatusPending, model.StatusApproved, model.StatusRejected, model.StatusAccepted}
	for i, st := range statuses {
		app := f.insertApplication(t, model.Application{StudentID: f.studentA, ResidenceID: residences[i], Status: st})

		_, err := f.service.RespondToOffer(ctx, app.ID, AcceptOffer, f.studentB)
		assert.ErrorIs(t, err, ErrForbidden, "status %s", st)
		_, err = f.service.RespondToOffer(ctx, app.ID, RejectOffer, f.studentB)
		assert.ErrorIs(t, err, ErrForbidden, "status %s", st)
		assert.Equal(t, st, f.status(t, app.ID))
	}
	assert.Empty(t, f.sink.kinds())
}

func TestRespondToOffer_WrongStateLeavesStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	residences := []int64{f.aWest.ID, f.dbsaM5.ID, f.riverside.ID}
	statuses := []model.ApplicationStatus{model.StatusPending, model.StatusRejected, model.StatusAccepted}
	for i, st := range statuses {
		app := f.insertApplication(t, model.Application{StudentID: f.studentA, ResidenceID: residences[i], Status: st})

		room, err := f.service.RespondToOffer(ctx, app.ID, AcceptOffer, f.studentA)
		assert.ErrorIs(t, err, ErrWrongState, "status %s", st)
		assert.Empty(t, room)
		assert.Equal(t, st, f.status(t, app.ID))
	}

	_, err := f.service.RespondToOffer(ctx, 9999, AcceptOffer, f.studentA)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSinkFailureDoesNotFailTransition(t *testing.T) {
	f := newFixture(t)
	f.sink.err = errors.New("broker down")
	ctx := context.Background()

	ids, err := f.service.ResolveAndCreateApplications(ctx, f.studentA, []SelectionInput{FreeText("Bernard Ncube - A-West")})
	require.NoError(t, err)
	require.NoError(t, f.service.DecideApplication(ctx, ids[0], Approve, 1))
	room, err := f.service.RespondToOffer(ctx, ids[0], AcceptOffer, f.studentA)
	require.NoError(t, err)
	assert.NotEmpty(t, room)
}

type emptyAllocator struct{}

func (emptyAllocator) Allocate(model.Residence) string { return "" }

func TestRespondToOffer_EmptyAllocatorFallsBack(t *testing.T) {
	f := newFixture(t)
	f.service.rooms = emptyAllocator{}
	app := f.insertApplication(t, model.Application{StudentID: f.studentA, ResidenceID: f.f5.ID, Status: model.StatusApproved})

	room, err := f.service.RespondToOffer(context.Background(), app.ID, AcceptOffer, f.studentA)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(room, "Block-"), room)
}

func TestClockRoomAllocator(t *testing.T) {
	a := ClockRoomAllocator{Now: func() time.Time { return time.Unix(1700000999, 0) }}
	assert.Equal(t, "A-West-999", a.Allocate(model.Residence{Block: "A-West"}))
	assert.Equal(t, "Block-999", a.Allocate(model.Residence{}))
}

func TestEnsureResidence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.service.EnsureResidence(ctx, model.Residence{Name: "Riverside Lodge", AvailableRooms: 99})
	require.NoError(t, err)
	assert.Equal(t, f.riverside.ID, id)

	res, err := f.store.GetResidence(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 10, res.AvailableRooms, "existing rows are not updated")

	newID, err := f.service.EnsureResidence(ctx, model.Residence{Name: " Hilltop ", Block: "B-2", OnCampus: true, Type: model.ResidenceFemale, AvailableRooms: 12})
	require.NoError(t, err)
	again, err := f.service.EnsureResidence(ctx, model.Residence{Name: "Hilltop", Block: "B-2", OnCampus: true, Type: model.ResidenceFemale})
	require.NoError(t, err)
	assert.Equal(t, newID, again)

	_, err = f.service.EnsureResidence(ctx, model.Residence{Name: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.service.EnsureResidence(ctx, model.Residence{Name: "X", Type: "mixed"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSyncOffCampus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.service.SyncOffCampus(ctx, []string{"Riverside Lodge", "Unity Flats", " ", "Unity Flats"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, f.riverside.ID, got[0].ID)
	assert.Equal(t, "Unity Flats", got[1].Name)
	assert.False(t, got[1].OnCampus)
	assert.Equal(t, model.ResidenceOffCamp, got[1].Type)
	assert.Equal(t, 10, got[1].AvailableRooms)
}

func TestAcceptedOffCampusStudentsAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.insertApplication(t, model.Application{StudentID: f.studentA, ResidenceID: f.riverside.ID, Status: model.StatusAccepted})
	f.insertApplication(t, model.Application{StudentID: f.studentB, ResidenceID: f.riverside.ID, Status: model.StatusPending})

	students, err := f.service.AcceptedOffCampusStudents(ctx, f.riverside.ID)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "23032739", students[0].StudentNumber)

	_, err = f.service.AcceptedOffCampusStudents(ctx, f.aWest.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.service.AcceptedOffCampusStudents(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	stats, err := f.service.ResidenceStats(ctx)
	require.NoError(t, err)
	for _, s := range stats {
		if s.ID == f.riverside.ID {
			assert.Equal(t, int64(1), s.AcceptedCount)
		} else {
			assert.Zero(t, s.AcceptedCount, s.Name)
		}
	}
}

func TestUpdatePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.service.UpdatePassword(ctx, f.studentA, "123"), ErrInvalidInput)
	assert.ErrorIs(t, f.service.UpdatePassword(ctx, 9999, "long-enough"), ErrNotFound)

	require.NoError(t, f.service.UpdatePassword(ctx, f.studentA, "long-enough"))
	st, err := f.store.GetStudent(ctx, f.studentA)
	require.NoError(t, err)
	assert.True(t, password.Verify("long-enough", st.PasswordHash))
}
