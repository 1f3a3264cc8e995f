package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/edubridge/engagement-service/internal/models"
	"github.com/edubridge/engagement-service/internal/repositories"
)

// fakeRepository is an in-memory Repository used to drive service tests
// without a database. Not safe for concurrent use; tests are sequential.
type fakeRepository struct {
	users         map[uint]*models.User
	students      map[uint]*models.Student
	messages      map[uint]*models.Message
	notifications map[uint]*models.Notification
	progress      map[uint]*models.Progress
	resources     map[uint]*models.Resource
	ratings       map[uint]*models.ResourceRating

	nextID uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:         make(map[uint]*models.User),
		students:      make(map[uint]*models.Student),
		messages:      make(map[uint]*models.Message),
		notifications: make(map[uint]*models.Notification),
		progress:      make(map[uint]*models.Progress),
		resources:     make(map[uint]*models.Resource),
		ratings:       make(map[uint]*models.ResourceRating),
	}
}

func (f *fakeRepository) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeRepository) addUser(name string, role models.UserRole) *models.User {
	u := &models.User{
		ID:     f.id(),
		Name:   name,
		Email:  strings.ToLower(name) + "@example.com",
		Role:   role,
		Status: models.UserActive,
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeRepository) addStudent(name string, parentID uint) *models.Student {
	s := &models.Student{
		ID:          f.id(),
		Name:        name,
		Grade:       "5",
		StudentCode: "ST-" + name,
		ParentID:    parentID,
	}
	f.students[s.ID] = s
	return s
}

// Repository interface

func (f *fakeRepository) User() repositories.UserRepository                 { return (*fakeUserRepo)(f) }
func (f *fakeRepository) Student() repositories.StudentRepository           { return (*fakeStudentRepo)(f) }
func (f *fakeRepository) Message() repositories.MessageRepository           { return (*fakeMessageRepo)(f) }
func (f *fakeRepository) Notification() repositories.NotificationRepository { return (*fakeNotificationRepo)(f) }
func (f *fakeRepository) Progress() repositories.ProgressRepository         { return (*fakeProgressRepo)(f) }
func (f *fakeRepository) Resource() repositories.ResourceRepository         { return (*fakeResourceRepo)(f) }

func (f *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

func (f *fakeRepository) Ping(ctx context.Context) error { return nil }
func (f *fakeRepository) Close() error                   { return nil }

// ===== USERS =====

type fakeUserRepo fakeRepository

func (r *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	f := (*fakeRepository)(r)
	user.ID = f.id()
	user.CreatedAt = time.Now()
	f.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *u
	return &copy, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copy := *user
	r.users[user.ID] = &copy
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *fakeUserRepo) Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	_, ok := r.users[id]
	return ok, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// ===== STUDENTS =====

type fakeStudentRepo fakeRepository

func (r *fakeStudentRepo) Create(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	f := (*fakeRepository)(r)
	student.ID = f.id()
	f.students[student.ID] = student
	return nil
}

func (r *fakeStudentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *s
	return &copy, nil
}

func (r *fakeStudentRepo) GetByParent(ctx context.Context, tx *gorm.DB, parentID uint) ([]*models.Student, error) {
	var out []*models.Student
	for _, s := range r.students {
		if s.ParentID == parentID {
			copy := *s
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeStudentRepo) IsChildOf(ctx context.Context, tx *gorm.DB, parentID, studentID uint) (bool, error) {
	s, ok := r.students[studentID]
	return ok && s.ParentID == parentID, nil
}

func (r *fakeStudentRepo) ExistsByCode(ctx context.Context, tx *gorm.DB, code string) (bool, error) {
	for _, s := range r.students {
		if s.StudentCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeStudentRepo) Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	_, ok := r.students[id]
	return ok, nil
}

// ===== MESSAGES =====

type fakeMessageRepo fakeRepository

func (r *fakeMessageRepo) Create(ctx context.Context, tx *gorm.DB, message *models.Message) error {
	f := (*fakeRepository)(r)
	message.ID = f.id()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	copy := *message
	f.messages[message.ID] = &copy
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Message, error) {
	m, ok := r.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *m
	return &copy, nil
}

func (r *fakeMessageRepo) Update(ctx context.Context, tx *gorm.DB, message *models.Message) error {
	if _, ok := r.messages[message.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copy := *message
	r.messages[message.ID] = &copy
	return nil
}

func sortMessages(out []*models.Message) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
}

func (r *fakeMessageRepo) GetConversation(ctx context.Context, tx *gorm.DB, userID, otherUserID uint) ([]*models.Message, error) {
	var out []*models.Message
	for _, m := range r.messages {
		between := (m.SenderID == userID && m.ReceiverID == otherUserID) ||
			(m.SenderID == otherUserID && m.ReceiverID == userID)
		if between && m.VisibleTo(userID) {
			copy := *m
			out = append(out, &copy)
		}
	}
	sortMessages(out)
	return out, nil
}

func (r *fakeMessageRepo) GetUserMessages(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Message, error) {
	var out []*models.Message
	for _, m := range r.messages {
		if (m.SenderID == userID || m.ReceiverID == userID) && m.VisibleTo(userID) {
			copy := *m
			out = append(out, &copy)
		}
	}
	sortMessages(out)
	return out, nil
}

func (r *fakeMessageRepo) MarkConversationRead(ctx context.Context, tx *gorm.DB, userID, otherUserID uint, at time.Time) (int64, error) {
	var updated int64
	for _, m := range r.messages {
		if m.ReceiverID == userID && m.SenderID == otherUserID && !m.Read {
			m.Read = true
			t := at
			m.ReadAt = &t
			updated++
		}
	}
	return updated, nil
}

func (r *fakeMessageRepo) UnreadCount(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	var count int64
	for _, m := range r.messages {
		if m.ReceiverID == userID && !m.Read && !m.DeletedByReceiver {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) DeleteRemovable(ctx context.Context, tx *gorm.DB) (int64, error) {
	var removed int64
	for id, m := range r.messages {
		if m.ShouldRemove() {
			delete(r.messages, id)
			removed++
		}
	}
	return removed, nil
}

// ===== NOTIFICATIONS =====

type fakeNotificationRepo fakeRepository

func (r *fakeNotificationRepo) Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error {
	f := (*fakeRepository)(r)
	notification.ID = f.id()
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	copy := *notification
	f.notifications[notification.ID] = &copy
	return nil
}

func (r *fakeNotificationRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, id, userID uint) (*models.Notification, error) {
	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *n
	return &copy, nil
}

func (r *fakeNotificationRepo) list(userID uint, keep func(*models.Notification) bool) []*models.Notification {
	var out []*models.Notification
	for _, n := range r.notifications {
		if n.UserID == userID && keep(n) {
			copy := *n
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *fakeNotificationRepo) List(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Notification, error) {
	return r.list(userID, func(*models.Notification) bool { return true }), nil
}

func (r *fakeNotificationRepo) ListByType(ctx context.Context, tx *gorm.DB, userID uint, notificationType models.NotificationType) ([]*models.Notification, error) {
	return r.list(userID, func(n *models.Notification) bool { return n.Type == notificationType }), nil
}

func (r *fakeNotificationRepo) ListByPriority(ctx context.Context, tx *gorm.DB, userID uint, priority models.NotificationPriority) ([]*models.Notification, error) {
	return r.list(userID, func(n *models.Notification) bool { return n.Priority == priority }), nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, tx *gorm.DB, id, userID uint, at time.Time) (int64, error) {
	n, ok := r.notifications[id]
	if !ok || n.UserID != userID || n.Read {
		return 0, nil
	}
	n.Read = true
	t := at
	n.ReadAt = &t
	return 1, nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, tx *gorm.DB, userID uint, at time.Time) (int64, error) {
	var updated int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			t := at
			n.ReadAt = &t
			updated++
		}
	}
	return updated, nil
}

func (r *fakeNotificationRepo) Delete(ctx context.Context, tx *gorm.DB, id, userID uint) (int64, error) {
	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return 0, nil
	}
	delete(r.notifications, id)
	return 1, nil
}

func (r *fakeNotificationRepo) UnreadCount(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	var purged int64
	for id, n := range r.notifications {
		if n.ExpiresAt != nil && n.ExpiresAt.Before(now) {
			delete(r.notifications, id)
			purged++
		}
	}
	return purged, nil
}

// ===== PROGRESS =====

type fakeProgressRepo fakeRepository

func (r *fakeProgressRepo) Create(ctx context.Context, tx *gorm.DB, progress *models.Progress) error {
	f := (*fakeRepository)(r)
	progress.ID = f.id()
	if progress.CreatedAt.IsZero() {
		progress.CreatedAt = time.Now()
	}
	copy := *progress
	f.progress[progress.ID] = &copy
	return nil
}

func (r *fakeProgressRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Progress, error) {
	p, ok := r.progress[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *p
	return &copy, nil
}

func (r *fakeProgressRepo) GetByStudent(ctx context.Context, tx *gorm.DB, studentID uint, filters repositories.ProgressFilters) ([]*models.Progress, error) {
	var out []*models.Progress
	for _, p := range r.progress {
		if p.StudentID != studentID {
			continue
		}
		if filters.Subject != nil && p.Subject != *filters.Subject {
			continue
		}
		if filters.Term != nil && p.Term != *filters.Term {
			continue
		}
		copy := *p
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// ===== RESOURCES =====

type fakeResourceRepo fakeRepository

func (r *fakeResourceRepo) Create(ctx context.Context, tx *gorm.DB, resource *models.Resource) error {
	f := (*fakeRepository)(r)
	resource.ID = f.id()
	if resource.CreatedAt.IsZero() {
		resource.CreatedAt = time.Now()
	}
	copy := *resource
	f.resources[resource.ID] = &copy
	return nil
}

func (r *fakeResourceRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Resource, error) {
	res, ok := r.resources[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *res
	return &copy, nil
}

func (r *fakeResourceRepo) Update(ctx context.Context, tx *gorm.DB, resource *models.Resource) error {
	if _, ok := r.resources[resource.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copy := *resource
	r.resources[resource.ID] = &copy
	return nil
}

func (r *fakeResourceRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := r.resources[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.resources, id)
	return nil
}

func (r *fakeResourceRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.ResourceFilters) ([]*models.Resource, int64, error) {
	var out []*models.Resource
	for _, res := range r.resources {
		if filters.Status != nil && res.Status != *filters.Status {
			continue
		}
		if filters.Category != nil && res.Category != *filters.Category {
			continue
		}
		if filters.Subject != nil && res.Subject != *filters.Subject {
			continue
		}
		if filters.Grade != nil && res.Grade != *filters.Grade {
			continue
		}
		if filters.Search != nil && !strings.Contains(strings.ToLower(res.Title), strings.ToLower(*filters.Search)) {
			continue
		}
		copy := *res
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	total := int64(len(out))
	if filters.Offset > 0 {
		if filters.Offset >= len(out) {
			out = nil
		} else {
			out = out[filters.Offset:]
		}
	}
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, total, nil
}

func (r *fakeResourceRepo) Popular(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Resource, error) {
	var out []*models.Resource
	for _, res := range r.resources {
		if res.Status == models.ResourceActive {
			copy := *res
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Downloads > out[j].Downloads })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeResourceRepo) IncrementDownloads(ctx context.Context, tx *gorm.DB, id uint) (int64, error) {
	res, ok := r.resources[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	res.Downloads++
	return res.Downloads, nil
}

func (r *fakeResourceRepo) UpsertRating(ctx context.Context, tx *gorm.DB, rating *models.ResourceRating) error {
	f := (*fakeRepository)(r)
	for _, existing := range f.ratings {
		if existing.ResourceID == rating.ResourceID && existing.UserID == rating.UserID {
			existing.Rating = rating.Rating
			existing.Review = rating.Review
			rating.ID = existing.ID
			return nil
		}
	}
	rating.ID = f.id()
	copy := *rating
	f.ratings[rating.ID] = &copy
	return nil
}

func (r *fakeResourceRepo) GetRatings(ctx context.Context, tx *gorm.DB, resourceID uint) ([]*models.ResourceRating, error) {
	var out []*models.ResourceRating
	for _, rt := range r.ratings {
		if rt.ResourceID == resourceID {
			copy := *rt
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeResourceRepo) UpdateRatingAggregate(ctx context.Context, tx *gorm.DB, resourceID uint, average float64, count int) error {
	res, ok := r.resources[resourceID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	res.AverageRating = average
	res.RatingCount = count
	return nil
}
