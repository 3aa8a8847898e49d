package services

// Kind classifies a service failure so transports can map it to a status code.
type Kind int

const (
	KindInvalid Kind = iota + 1
	KindUnauthenticated
	KindUnauthorized
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a failure of a single operation. Nothing was written when one is returned.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func invalid(msg string) *Error { return newError(KindInvalid, msg) }

var (
	ErrUnauthenticated = newError(KindUnauthenticated, "Not authenticated")

	ErrInvalidCredentials = newError(KindUnauthenticated, "Invalid credentials")

	ErrNotCreator = newError(KindUnauthorized, "Only the challenge creator can do this")
	ErrNotInvitee = newError(KindUnauthorized, "This invitation was sent to another user")
	ErrNotAMember = newError(KindUnauthorized, "You are not participating in this challenge")

	ErrChallengeNotFound    = newError(KindNotFound, "Challenge not found")
	ErrInvitationNotFound   = newError(KindNotFound, "Invitation not found")
	ErrUserNotFound         = newError(KindNotFound, "User not found")
	ErrNotificationNotFound = newError(KindNotFound, "Notification not found")
	ErrExerciseNotFound     = newError(KindNotFound, "Exercise not found")
	ErrWorkoutPlanNotFound  = newError(KindNotFound, "Workout plan not found")
	ErrSessionNotFound      = newError(KindNotFound, "Workout session not found")
	ErrFoodNotFound         = newError(KindNotFound, "Food not found")

	ErrAlreadyMember       = newError(KindConflict, "Already participating in this challenge")
	ErrAlreadyInvited      = newError(KindConflict, "User already invited")
	ErrCannotRemoveCreator = newError(KindConflict, "Cannot remove the challenge creator")
	ErrNotAParticipant     = newError(KindConflict, "User is not a participant in this challenge")
	ErrInvitationClosed    = newError(KindConflict, "Invitation has already been answered")
	ErrEmailTaken          = newError(KindConflict, "Email already registered")
)
