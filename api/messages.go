package api

import (
	"encoding/json"
	"errors"

	"powerfour/games"
)

type MessageType string

// inbound
const (
	TypeCreateGame MessageType = "createGame"
	TypeJoinGame   MessageType = "joinGame"
	TypePlay       MessageType = "play"
	TypeUsePower   MessageType = "usePower"
	TypeLeaveGame  MessageType = "leaveGame"
)

// outbound
const (
	TypeConnected   MessageType = "connected"
	TypeGameCreated MessageType = "gameCreated"
	TypeStartGame   MessageType = "startGame"
	TypeUpdateBoard MessageType = "updateBoard"
	TypeGameOver    MessageType = "gameOver"
	TypePlayerLeft  MessageType = "playerLeft"
	TypeError       MessageType = "error"
)

// Message is the envelope for every frame in both directions.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ConnectedPayload struct {
	PlayerID string `json:"playerId"`
}

type GameCreatedPayload struct {
	RoomID string `json:"roomId"`
}

type StartGamePayload struct {
	RoomID  string   `json:"roomId"`
	Players []string `json:"players"`
}

type GameOverPayload struct {
	RoomID string `json:"roomId"`
	Winner string `json:"winner"`
}

type PlayerLeftPayload struct {
	RoomID string `json:"roomId"`
}

type ErrorPayload struct {
	Message string     `json:"message"`
	Code    games.Code `json:"code,omitempty"`
}

// RoomRequest names the room an action targets.
type RoomRequest struct {
	RoomID string `json:"roomId"`
}

// UnmarshalJSON also accepts a bare room code string, which is how
// joinGame is sent by the browser client.
func (r *RoomRequest) UnmarshalJSON(data []byte) error {
	var code string
	if err := json.Unmarshal(data, &code); err == nil {
		r.RoomID = code
		return nil
	}
	type plain RoomRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = RoomRequest(p)
	return nil
}

type PlayRequest struct {
	RoomID string `json:"roomId"`
	Column *int   `json:"column"`
}

type UsePowerRequest struct {
	RoomID string      `json:"roomId"`
	Column *int        `json:"column"`
	Power  games.Power `json:"power"`
}

var errMissingColumn = errors.New("column is required")

func (p PlayRequest) action() (games.Action, error) {
	if p.Column == nil {
		return games.Action{}, errMissingColumn
	}
	return games.Play(*p.Column), nil
}

func (p UsePowerRequest) action() (games.Action, error) {
	column := 0
	if p.Column != nil {
		column = *p.Column
	} else if p.Power != games.PowerGravity {
		return games.Action{}, errMissingColumn
	}
	return games.UsePower(p.Power, column), nil
}

func encode(t MessageType, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	return json.Marshal(Message{Type: t, Payload: raw})
}
