package games

// Code identifies a kind of rejected action.
type Code string

const (
	CodeRoomNotFound       Code = "ROOM_NOT_FOUND"
	CodeRoomFull           Code = "ROOM_FULL"
	CodeAlreadyInRoom      Code = "ALREADY_IN_ROOM"
	CodeNotInRoom          Code = "NOT_IN_ROOM"
	CodeNotYourTurn        Code = "NOT_YOUR_TURN"
	CodeGameNotActive      Code = "GAME_NOT_ACTIVE"
	CodeInvalidColumn      Code = "INVALID_COLUMN"
	CodeColumnFull         Code = "COLUMN_FULL"
	CodeEmptyColumn        Code = "EMPTY_COLUMN"
	CodeNoChargesLeft      Code = "NO_CHARGES_LEFT"
	CodeUnknownPower       Code = "UNKNOWN_POWER"
	CodeUnknownAction      Code = "UNKNOWN_ACTION"
	CodeCodeSpaceExhausted Code = "CODE_SPACE_EXHAUSTED"
)

// Error is a validation failure reported to the acting player only.
// It never accompanies a state change.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches errors by code so wrapped or re-created errors compare equal.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrRoomNotFound       = &Error{Code: CodeRoomNotFound, Message: "room not found"}
	ErrRoomFull           = &Error{Code: CodeRoomFull, Message: "room is full"}
	ErrAlreadyInRoom      = &Error{Code: CodeAlreadyInRoom, Message: "already playing in another room"}
	ErrNotInRoom          = &Error{Code: CodeNotInRoom, Message: "player is not in this room"}
	ErrNotYourTurn        = &Error{Code: CodeNotYourTurn, Message: "not your turn"}
	ErrGameNotActive      = &Error{Code: CodeGameNotActive, Message: "game is not active"}
	ErrInvalidColumn      = &Error{Code: CodeInvalidColumn, Message: "invalid column"}
	ErrColumnFull         = &Error{Code: CodeColumnFull, Message: "column is full"}
	ErrEmptyColumn        = &Error{Code: CodeEmptyColumn, Message: "column is empty"}
	ErrNoChargesLeft      = &Error{Code: CodeNoChargesLeft, Message: "no charges left for this power"}
	ErrUnknownPower       = &Error{Code: CodeUnknownPower, Message: "unknown power"}
	ErrUnknownAction      = &Error{Code: CodeUnknownAction, Message: "unknown action"}
	ErrCodeSpaceExhausted = &Error{Code: CodeCodeSpaceExhausted, Message: "could not allocate a room code"}
)
