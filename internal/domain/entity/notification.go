package entity

// NotificationKind identifies a user-visible notification
type NotificationKind string

const (
	NotifyLoginSuccess          NotificationKind = "login-success"
	NotifyLoginFailure          NotificationKind = "login-failure"
	NotifyLoginRoleMissing      NotificationKind = "login-success-role-missing"
	NotifyRegisterPatient       NotificationKind = "register-success-patient"
	NotifyRegisterDoctorPending NotificationKind = "register-success-doctor-pending"
	NotifyRegisterFailure       NotificationKind = "register-failure"
	NotifyLogoutSuccess         NotificationKind = "logout-success"
	NotifyLogoutFailure         NotificationKind = "logout-failure"
	NotifyProfileNotFound       NotificationKind = "profile-not-found"
	NotifyProfileFetchError     NotificationKind = "profile-fetch-error"
	NotifyProfileUpdateSuccess  NotificationKind = "profile-update-success"
	NotifyProfileUpdateFailure  NotificationKind = "profile-update-failure"
)

// Notification variants
const (
	VariantDefault     = "default"
	VariantDestructive = "destructive"
)

// Notification is a human-readable message shown to the user
type Notification struct {
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Variant     string           `json:"variant"`
}

// Destructive reports whether the notification describes a failure
func (n Notification) Destructive() bool {
	return n.Variant == VariantDestructive
}
