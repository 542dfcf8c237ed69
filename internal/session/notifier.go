package session

import (
	"fmt"
	"sync"
	"time"

	"go-medical-booking/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

// Notifier delivers user-visible notifications
type Notifier interface {
	Notify(n entity.Notification)
}

// MultiNotifier fans a notification out to every notifier in order
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(n entity.Notification) {
	for _, notifier := range m {
		notifier.Notify(n)
	}
}

// LogNotifier writes notifications to the application log
type LogNotifier struct {
	log *logrus.Logger
}

func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(n entity.Notification) {
	entry := l.log.WithFields(logrus.Fields{
		"kind":  n.Kind,
		"title": n.Title,
	})
	if n.Destructive() {
		entry.Warn(n.Description)
		return
	}
	entry.Info(n.Description)
}

// FeedEntry is a notification stamped with its position in the feed
type FeedEntry struct {
	Seq          uint64              `json:"seq"`
	Notification entity.Notification `json:"notification"`
	CreatedAt    time.Time           `json:"created_at"`
}

// NotificationFeed keeps the most recent notifications so HTTP readers can poll them.
// Sequence numbers start at 1 and never repeat.
type NotificationFeed struct {
	mu       sync.Mutex
	capacity int
	last     uint64
	entries  []FeedEntry
}

func NewNotificationFeed(capacity int) *NotificationFeed {
	if capacity <= 0 {
		capacity = 100
	}
	return &NotificationFeed{capacity: capacity}
}

func (f *NotificationFeed) Notify(n entity.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.last++
	f.entries = append(f.entries, FeedEntry{
		Seq:          f.last,
		Notification: n,
		CreatedAt:    time.Now(),
	})
	if len(f.entries) > f.capacity {
		f.entries = f.entries[len(f.entries)-f.capacity:]
	}
}

// Last returns the sequence number of the newest entry, 0 when empty
func (f *NotificationFeed) Last() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// Since returns the retained entries with a sequence number greater than after
func (f *NotificationFeed) Since(after uint64) []FeedEntry {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]FeedEntry, 0)
	for _, entry := range f.entries {
		if entry.Seq > after {
			result = append(result, entry)
		}
	}
	return result
}

func loginSuccess(name string) entity.Notification {
	return entity.Notification{
		Kind:        entity.NotifyLoginSuccess,
		Title:       "Login successful",
		Description: fmt.Sprintf("Welcome back, %s!", name),
		Variant:     entity.VariantDefault,
	}
}

// loginFailure surfaces the backend message verbatim
func loginFailure(err error) entity.Notification {
	return entity.Notification{
		Kind:        entity.NotifyLoginFailure,
		Title:       "Login failed",
		Description: err.Error(),
		Variant:     entity.VariantDestructive,
	}
}

func loginRoleMissing() entity.Notification {
	return entity.Notification{
		Kind:        entity.NotifyLoginRoleMissing,
		Title:       "Role missing",
		Description: "You are signed in, but your account has no role assigned. Please contact support.",
		Variant:     entity.VariantDestructive,
	}
}

func registerSuccess(role entity.Role) entity.Notification {
	if role == entity.RoleDoctor {
		return entity.Notification{
			Kind:        entity.NotifyRegisterDoctorPending,
			Title:       "Registration successful",
			Description: "Please check your email to verify your account. Your doctor account is pending approval by an administrator.",
			Variant:     entity.VariantDefault,
		}
	}
	return entity.Notification{
		Kind:        entity.NotifyRegisterPatient,
		Title:       "Registration successful",
		Description: "Please check your email to verify your account, then log in.",
		Variant:     entity.VariantDefault,
	}
}

func registerFailure(err error) entity.Notification {
	return entity.Notification{
		Kind:        entity.NotifyRegisterFailure,
		Title:       "Registration failed",
		Description: err.Error(),
		Variant:     entity.VariantDestructive,
	}
}

func logoutSuccess() entity.Notification {
	return entity.Notification{
		Kind:        entity.NotifyLogoutSuccess,
		Title:       "Logged out",
		Description: "You have been successfully logged out.",
		Variant:     entity.VariantDefault,
	}
}

func logoutFailure(err error) entity.Notification {
	return entity.Notification{
		Kind:        entity.NotifyLogoutFailure,
		Title:       "Logout error",
		Description: fmt.Sprintf("You have been logged out locally, but the server reported: %s", err.Error()),
		Variant:     entity.VariantDestructive,
	}
}

func profileNotFound() entity.Notification {
	return entity.Notification{
		Kind:        entity.NotifyProfileNotFound,
		Title:       "Profile not found",
		Description: "Your profile is not available yet. Please retry shortly.",
		Variant:     entity.VariantDestructive,
	}
}

func profileFetchError(err error) entity.Notification {
	return entity.Notification{
		Kind:        entity.NotifyProfileFetchError,
		Title:       "Failed to load profile",
		Description: err.Error(),
		Variant:     entity.VariantDestructive,
	}
}

func profileUpdateSuccess() entity.Notification {
	return entity.Notification{
		Kind:        entity.NotifyProfileUpdateSuccess,
		Title:       "Profile updated",
		Description: "Your profile has been saved.",
		Variant:     entity.VariantDefault,
	}
}

func profileUpdateFailure(err error) entity.Notification {
	return entity.Notification{
		Kind:        entity.NotifyProfileUpdateFailure,
		Title:       "Profile update failed",
		Description: err.Error(),
		Variant:     entity.VariantDestructive,
	}
}
