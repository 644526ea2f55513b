package allocation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"housing-allocation-backend/internal/metrics"
	"housing-allocation-backend/internal/model"
	"housing-allocation-backend/internal/notification"
	"housing-allocation-backend/internal/pkg/password"
	"housing-allocation-backend/internal/store"
)

// Decision is an administrator's verdict on a Pending application.
type Decision string

const (
	Approve Decision = "approve"
	Reject  Decision = "reject"
)

// OfferResponse is a student's answer to an Approved application.
type OfferResponse string

const (
	AcceptOffer OfferResponse = "accept"
	RejectOffer OfferResponse = "reject"
)

// Rooms given to residences created by SyncOffCampus.
const defaultOffCampusRooms = 10

// Service runs the application lifecycle against a store and reports transitions to a sink.
type Service struct {
	store store.Store
	sink  notification.Sink
	rooms RoomAllocator
	now   func() time.Time
}

// NewService builds a Service. A nil sink logs events; a nil allocator uses ClockRoomAllocator.
func NewService(st store.Store, sink notification.Sink, rooms RoomAllocator) *Service {
	if sink == nil {
		sink = notification.LogSink{}
	}
	if rooms == nil {
		rooms = ClockRoomAllocator{}
	}
	return &Service{store: st, sink: sink, rooms: rooms, now: time.Now}
}

// ResolveAndCreateApplications resolves the selections and, if the whole batch passes the
// on-campus cap and duplicate checks, inserts one Pending application per selection.
// It returns the new application ids in selection order. Nothing is written on error.
func (s *Service) ResolveAndCreateApplications(ctx context.Context, studentID int64, selections []SelectionInput) ([]int64, error) {
	ids, err := s.createApplications(ctx, studentID, selections)
	if err != nil {
		metrics.RecordBatchRejected(rejectReason(err))
		log.WithFields(log.Fields{"student_id": studentID, "selections": len(selections)}).
			WithError(err).Info("application batch rejected")
		return nil, err
	}
	return ids, nil
}

func (s *Service) createApplications(ctx context.Context, studentID int64, selections []SelectionInput) ([]int64, error) {
	residences, err := Resolve(ctx, s.store, selections)
	if err != nil {
		return nil, err
	}

	batch := make([]store.BatchItem, 0, len(residences))
	for _, r := range residences {
		batch = append(batch, store.BatchItem{ResidenceID: r.ID, OnCampus: r.OnCampus})
	}
	tally := Count(batch)
	if err := ValidateBatch(tally); err != nil {
		return nil, err
	}

	now := s.now()
	ids, err := s.store.CreateApplications(ctx, studentID, batch, now, func(existing int) error {
		return ValidateCumulative(existing, tally)
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return nil, err
		}
		return nil, translate(err, fmt.Sprintf("applications for student %d", studentID))
	}
	metrics.RecordApplicationsCreated(tally.OnCampus, tally.OffCampus)

	labels := make([]string, 0, len(residences))
	for _, r := range residences {
		labels = append(labels, r.Label())
	}
	student, err := s.store.GetStudent(ctx, studentID)
	if err != nil {
		log.WithField("student_id", studentID).WithError(err).Warn("submitted event skipped")
		return ids, nil
	}
	s.emit(ctx, notification.Event{
		Kind:           notification.KindSubmitted,
		ApplicationIDs: ids,
		StudentID:      studentID,
		StudentName:    student.FullName(),
		ResidenceName:  strings.Join(labels, ", "),
		ApplyDate:      &now,
		RecipientEmail: student.Email,
	})
	return ids, nil
}

// DecideApplication approves or rejects a Pending application.
func (s *Service) DecideApplication(ctx context.Context, appID int64, decision Decision, adminID int64) error {
	var (
		to   model.ApplicationStatus
		kind notification.Kind
	)
	switch decision {
	case Approve:
		to, kind = model.StatusApproved, notification.KindApproved
	case Reject:
		to, kind = model.StatusRejected, notification.KindRejected
	default:
		return fmt.Errorf("%w: unknown decision %q", ErrInvalidInput, decision)
	}

	app, err := s.store.GetApplication(ctx, appID)
	if err != nil {
		return translate(err, fmt.Sprintf("application %d", appID))
	}
	if app.Status != model.StatusPending {
		return fmt.Errorf("%w: application %d is %s", ErrWrongState, appID, app.Status)
	}

	if err := s.store.TransitionApplication(ctx, appID, model.StatusPending, to, nil); err != nil {
		return translate(err, fmt.Sprintf("application %d", appID))
	}
	metrics.RecordTransition(string(to))
	log.WithFields(log.Fields{"application_id": appID, "admin_id": adminID, "status": to}).Info("application decided")

	s.emit(ctx, eventFor(kind, app, nil))
	return nil
}

// RespondToOffer records a student's answer to an Approved application. Accepting an
// on-campus offer assigns and returns a room number; every other outcome returns "".
func (s *Service) RespondToOffer(ctx context.Context, appID int64, response OfferResponse, studentID int64) (string, error) {
	if response != AcceptOffer && response != RejectOffer {
		return "", fmt.Errorf("%w: unknown response %q", ErrInvalidInput, response)
	}

	app, err := s.store.GetApplication(ctx, appID)
	if err != nil {
		return "", translate(err, fmt.Sprintf("application %d", appID))
	}
	if app.StudentID != studentID {
		return "", fmt.Errorf("%w: application %d belongs to another student", ErrForbidden, appID)
	}
	if app.Status != model.StatusApproved {
		return "", fmt.Errorf("%w: application %d is %s", ErrWrongState, appID, app.Status)
	}

	to, kind := model.StatusRejected, notification.KindOfferRejected
	var room *string
	if response == AcceptOffer {
		to, kind = model.StatusAccepted, notification.KindAccepted
		if app.Residence.OnCampus {
			r := s.allocateRoom(app.Residence)
			room = &r
		}
	}

	if err := s.store.TransitionApplication(ctx, appID, model.StatusApproved, to, room); err != nil {
		return "", translate(err, fmt.Sprintf("application %d", appID))
	}
	metrics.RecordTransition(string(to))
	log.WithFields(log.Fields{"application_id": appID, "student_id": studentID, "status": to}).Info("offer answered")

	s.emit(ctx, eventFor(kind, app, room))
	if room == nil {
		return "", nil
	}
	return *room, nil
}

func (s *Service) allocateRoom(res model.Residence) string {
	if room := s.rooms.Allocate(res); room != "" {
		return room
	}
	return ClockRoomAllocator{Now: s.now}.Allocate(res)
}

// EnsureResidence returns the id of the residence named by r's name and block, creating it
// with r's attributes when absent. Existing residences are left untouched.
func (s *Service) EnsureResidence(ctx context.Context, r model.Residence) (int64, error) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return 0, fmt.Errorf("%w: residence name is required", ErrInvalidInput)
	}
	if r.Type == "" {
		r.Type = model.ResidenceOffCamp
	}
	if !r.Type.Valid() {
		return 0, fmt.Errorf("%w: unknown residence type %q", ErrInvalidInput, r.Type)
	}
	if r.AvailableRooms < 0 {
		return 0, fmt.Errorf("%w: available rooms cannot be negative", ErrInvalidInput)
	}

	id, err := s.store.UpsertResidence(ctx, r)
	if err != nil {
		return 0, translate(err, "residence "+r.Label())
	}
	return id, nil
}

// SyncOffCampus ensures an off-campus residence exists for every name and returns them all.
// Blank names are skipped.
func (s *Service) SyncOffCampus(ctx context.Context, names []string) ([]model.Residence, error) {
	out := make([]model.Residence, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		id, err := s.EnsureResidence(ctx, model.Residence{
			Name:           name,
			OnCampus:       false,
			Type:           model.ResidenceOffCamp,
			AvailableRooms: defaultOffCampusRooms,
		})
		if err != nil {
			return nil, err
		}
		res, err := s.store.GetResidence(ctx, id)
		if err != nil {
			return nil, translate(err, "residence "+name)
		}
		out = append(out, *res)
	}
	return out, nil
}

// ListResidences returns the catalog, optionally filtered.
func (s *Service) ListResidences(ctx context.Context, filter store.ResidenceFilter) ([]model.Residence, error) {
	residences, err := s.store.ListResidences(ctx, filter)
	if err != nil {
		return nil, translate(err, "residences")
	}
	return residences, nil
}

// ResidenceStats returns every residence with its number of accepted offers.
func (s *Service) ResidenceStats(ctx context.Context) ([]store.ResidenceStat, error) {
	stats, err := s.store.ResidenceStats(ctx)
	if err != nil {
		return nil, translate(err, "residence stats")
	}
	return stats, nil
}

// AcceptedOffCampusStudents lists the students holding an accepted offer for an off-campus residence.
func (s *Service) AcceptedOffCampusStudents(ctx context.Context, residenceID int64) ([]model.Student, error) {
	res, err := s.store.GetResidence(ctx, residenceID)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("residence %d", residenceID))
	}
	if res.OnCampus {
		return nil, fmt.Errorf("%w: residence %d is on campus", ErrInvalidInput, residenceID)
	}
	students, err := s.store.AcceptedOffCampusStudents(ctx, residenceID)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("accepted students of residence %d", residenceID))
	}
	return students, nil
}

// ListStudents returns every student.
func (s *Service) ListStudents(ctx context.Context) ([]model.Student, error) {
	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return nil, translate(err, "students")
	}
	return students, nil
}

// StudentApplications returns a student's applications, newest first.
func (s *Service) StudentApplications(ctx context.Context, studentID int64) ([]model.Application, error) {
	if _, err := s.store.GetStudent(ctx, studentID); err != nil {
		return nil, translate(err, fmt.Sprintf("student %d", studentID))
	}
	apps, err := s.store.StudentApplications(ctx, studentID)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("applications of student %d", studentID))
	}
	return apps, nil
}

// AllApplications returns every application with student and residence details.
func (s *Service) AllApplications(ctx context.Context) ([]model.Application, error) {
	apps, err := s.store.AllApplications(ctx)
	if err != nil {
		return nil, translate(err, "applications")
	}
	return apps, nil
}

// UpdatePassword replaces a student's password.
func (s *Service) UpdatePassword(ctx context.Context, studentID int64, newPassword string) error {
	if !password.Valid(newPassword) {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, password.MinLength)
	}
	hash, err := password.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdateStudentPassword(ctx, studentID, hash); err != nil {
		return translate(err, fmt.Sprintf("student %d", studentID))
	}
	log.WithField("student_id", studentID).Info("password updated")
	return nil
}

// emit hands evt to the sink. Delivery problems never fail the transition that produced evt.
func (s *Service) emit(ctx context.Context, evt notification.Event) {
	if err := s.sink.Publish(ctx, evt); err != nil {
		metrics.RecordNotificationFailure(string(evt.Kind))
		log.WithFields(log.Fields{"kind": evt.Kind, "student_id": evt.StudentID}).
			WithError(err).Warn("notification not published")
	}
}

func eventFor(kind notification.Kind, app *model.Application, room *string) notification.Event {
	applyDate := app.ApplyDate
	return notification.Event{
		Kind:           kind,
		ApplicationIDs: []int64{app.ID},
		StudentID:      app.StudentID,
		StudentName:    app.Student.FullName(),
		ResidenceName:  app.Residence.Label(),
		ApplyDate:      &applyDate,
		RoomNumber:     room,
		RecipientEmail: app.Student.Email,
	}
}

// translate maps store errors onto the service's error kinds.
func translate(err error, what string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%w: %s", ErrConflict, what)
	case errors.Is(err, store.ErrStaleState):
		return fmt.Errorf("%w: %s", ErrWrongState, what)
	}
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, what, err)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrResolution):
		return "resolution"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	}
	return "store"
}
