package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"powerfour/db"
	"powerfour/games"
)

var (
	errMalformed   = errors.New("malformed message")
	errUnknownType = errors.New("unknown message type")
)

// handle turns one inbound message into directory calls and the messages
// they produce. Validation failures go back to the sender only.
func (h *Hub) handle(ctx context.Context, c *Client, msg Message) {
	var err error
	switch msg.Type {
	case TypeCreateGame:
		err = h.createGame(ctx, c)
	case TypeJoinGame:
		var req RoomRequest
		if err = decode(msg.Payload, &req); err == nil {
			err = h.joinGame(ctx, c, req.RoomID)
		}
	case TypePlay:
		var req PlayRequest
		if err = decode(msg.Payload, &req); err == nil {
			err = h.dispatch(ctx, c, req.RoomID, req.action)
		}
	case TypeUsePower:
		var req UsePowerRequest
		if err = decode(msg.Payload, &req); err == nil {
			err = h.dispatch(ctx, c, req.RoomID, req.action)
		}
	case TypeLeaveGame:
		var req RoomRequest
		if len(msg.Payload) == 0 {
			h.leaveCurrent(ctx, c)
		} else if err = decode(msg.Payload, &req); err == nil {
			h.leaveGame(ctx, c, req.RoomID)
		}
	default:
		err = errUnknownType
	}
	if err != nil {
		log.Printf("Rejected %s from %s: %v", msg.Type, c.id, err)
		c.sendError(err)
	}
}

func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return errMalformed
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return errMalformed
	}
	return nil
}

func (h *Hub) createGame(ctx context.Context, c *Client) error {
	room, err := h.rooms.Create(ctx, c.id)
	if err != nil {
		return err
	}
	c.send(TypeGameCreated, GameCreatedPayload{RoomID: room.Code})
	return nil
}

func (h *Hub) joinGame(ctx context.Context, c *Client, roomID string) error {
	room, err := h.rooms.Join(ctx, roomID, c.id)
	if err != nil {
		return err
	}
	players := room.PlayerIDs()
	h.broadcast(players, TypeStartGame, StartGamePayload{RoomID: room.Code, Players: players})
	h.broadcast(players, TypeUpdateBoard, room)
	return nil
}

func (h *Hub) dispatch(ctx context.Context, c *Client, roomID string, build func() (games.Action, error)) error {
	action, err := build()
	if err != nil {
		return err
	}
	room, err := h.rooms.Dispatch(ctx, roomID, c.id, action)
	if err != nil {
		return err
	}
	players := room.PlayerIDs()
	h.broadcast(players, TypeUpdateBoard, room)
	if room.Status == games.StatusFinished {
		h.broadcast(players, TypeGameOver, GameOverPayload{RoomID: room.Code, Winner: room.Winner})
	}
	return nil
}

// leaveGame is silent when there is nothing to leave.
func (h *Hub) leaveGame(ctx context.Context, c *Client, roomID string) {
	if dep, ok := h.rooms.Leave(ctx, roomID, c.id); ok {
		h.notifyLeft(dep)
	}
}

func (h *Hub) leaveCurrent(ctx context.Context, c *Client) {
	if dep, ok := h.rooms.RemoveByConnection(ctx, c.id); ok {
		h.notifyLeft(dep)
	}
}

func (h *Hub) notifyLeft(dep db.Departure) {
	if dep.Remaining == "" {
		return
	}
	h.sendTo(dep.Remaining, TypePlayerLeft, PlayerLeftPayload{RoomID: dep.Room.Code})
}

func (c *Client) sendError(err error) {
	payload := ErrorPayload{Message: err.Error()}
	var gerr *games.Error
	if errors.As(err, &gerr) {
		payload.Code = gerr.Code
	}
	c.send(TypeError, payload)
}
