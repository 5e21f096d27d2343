package presenter

import "github.com/heroiclabs/nakama-common/runtime"

var (
	ErrInternalError  = runtime.NewError("internal server error", 1) // INTERNAL
	ErrMarshal        = runtime.NewError("cannot marshal type", 2)   // INTERNAL
	ErrNoInputAllowed = runtime.NewError("no input allowed", 3)      // INVALID_ARGUMENT
	ErrNoUserIdFound  = runtime.NewError("no user ID in context", 4) // INVALID_ARGUMENT
	ErrUnmarshal      = runtime.NewError("cannot unmarshal type", 5) // INTERNAL
	ErrInvalidInput   = runtime.NewError("Invalid input", 6)
	ErrUnauth         = runtime.NewError("Unauth", 7) // PERMISSION_DENIED

	ErrNotFound = runtime.NewError("not found", 105)

	ErrBonusAlreadyClaimed  = runtime.NewError("monthly bonus already claimed", 201)
	ErrNoMonthlyBonus       = runtime.NewError("tier has no monthly bonus", 202)
	ErrNotificationNotFound = runtime.NewError("notification not found", 203)
	ErrInvalidCursor        = runtime.NewError("invalid cursor", 204)
	ErrInvalidNotification  = runtime.NewError("invalid notification", 205)
	ErrInvalidWager         = runtime.NewError("invalid wager", 206)
)
