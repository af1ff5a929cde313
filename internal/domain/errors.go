package domain

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrEmailTaken           = errors.New("email already registered")
	ErrUnderage             = errors.New("user does not meet the minimum age")
	ErrSurveyCompleted      = errors.New("survey already completed")
	ErrGameNotFound         = errors.New("game not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("user is not a participant of the conversation")
	ErrEmptyMessage         = errors.New("message is empty")
	ErrMessageTooLong       = errors.New("message exceeds the allowed length")
	ErrCannotMessageSelf    = errors.New("cannot start a conversation with yourself")
	ErrNoCandidates         = errors.New("no candidates available")
	ErrQueueEntryNotFound   = errors.New("queue entry not found")
	ErrReviewExists         = errors.New("review already submitted")
	ErrReviewNotFound       = errors.New("review not found")
	ErrImageTooLarge        = errors.New("image exceeds the allowed size")
	ErrForbidden            = errors.New("operation not allowed")
)
