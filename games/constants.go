package games

const (
	BoardWidth  = 7
	BoardHeight = 6

	// Consecutive tokens needed to win
	WinLength = 4

	EmptyCell = ""

	// Winner value for a full board with no line
	Draw = "draw"

	StatusWaiting  GameStatus = "waiting"
	StatusActive   GameStatus = "active"
	StatusFinished GameStatus = "finished"

	ColorRed    Color = "red"
	ColorYellow Color = "yellow"

	PowerRemove  Power = "remove"
	PowerExplode Power = "explode"
	PowerGravity Power = "gravity"

	ActionPlay  ActionKind = "play"
	ActionPower ActionKind = "usePower"
)
