// Package db holds the in-memory directory of open rooms. Nothing survives a
// process restart.
package db

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"powerfour/games"
)

const tracerName = "powerfour/db"

// maxCodeAttempts bounds retries when a drawn room code is already open.
const maxCodeAttempts = 32

// Seat locates a player inside the directory.
type Seat struct {
	Code string
	Slot int
}

// Departure describes a room closed by a leave or disconnect.
type Departure struct {
	Room games.Snapshot
	// Remaining is the opponent still connected, empty if the room was
	// waiting.
	Remaining string
}

// Directory owns every open session. Room lookups share a read lock; the
// sessions serialize their own actions.
type Directory struct {
	mu    sync.RWMutex
	rooms map[string]*games.Session
	seats map[string]Seat

	rand   games.Rand
	tracer trace.Tracer
}

// Option configures a Directory.
type Option func(*Directory)

// WithTracer overrides the tracer used for directory spans.
func WithTracer(t trace.Tracer) Option {
	return func(d *Directory) {
		d.tracer = t
	}
}

// NewDirectory builds an empty directory drawing room codes from r.
func NewDirectory(r games.Rand, opts ...Option) *Directory {
	d := &Directory{
		rooms:  make(map[string]*games.Session),
		seats:  make(map[string]Seat),
		rand:   r,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Create opens a room with playerID as its creator.
func (d *Directory) Create(ctx context.Context, playerID string) (games.Snapshot, error) {
	_, span := d.tracer.Start(ctx, "rooms.create", trace.WithAttributes(attribute.String("player.id", playerID)))
	defer span.End()

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, seated := d.seats[playerID]; seated {
		return games.Snapshot{}, fail(span, games.ErrAlreadyInRoom)
	}
	code, err := d.newCode()
	if err != nil {
		return games.Snapshot{}, fail(span, err)
	}
	session := games.NewSession(code, playerID)
	d.rooms[code] = session
	d.seats[playerID] = Seat{Code: code, Slot: 0}
	span.SetAttributes(attribute.String("room.code", code))

	log.Printf("Room %s created by %s", session.Code(), playerID)
	return session.Snapshot(), nil
}

// newCode must run with d.mu held; the random source is not safe for
// concurrent use on its own.
func (d *Directory) newCode() (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := games.NewCode(d.rand)
		if _, taken := d.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", games.ErrCodeSpaceExhausted
}

// Join seats playerID in the room named by code.
func (d *Directory) Join(ctx context.Context, code, playerID string) (games.Snapshot, error) {
	code = games.NormalizeCode(code)
	_, span := d.tracer.Start(ctx, "rooms.join", trace.WithAttributes(
		attribute.String("room.code", code),
		attribute.String("player.id", playerID),
	))
	defer span.End()

	d.mu.Lock()
	defer d.mu.Unlock()

	session, ok := d.rooms[code]
	if !ok {
		return games.Snapshot{}, fail(span, games.ErrRoomNotFound)
	}
	if _, seated := d.seats[playerID]; seated {
		return games.Snapshot{}, fail(span, games.ErrAlreadyInRoom)
	}
	snap, err := session.Join(playerID)
	if err != nil {
		return games.Snapshot{}, fail(span, err)
	}
	d.seats[playerID] = Seat{Code: code, Slot: 1}

	log.Printf("Player %s joined room %s", playerID, code)
	return snap, nil
}

// Dispatch routes one action to the room's session. A session that reaches
// its terminal state is removed before Dispatch returns.
func (d *Directory) Dispatch(ctx context.Context, code, playerID string, action games.Action) (games.Snapshot, error) {
	code = games.NormalizeCode(code)
	_, span := d.tracer.Start(ctx, "rooms.dispatch", trace.WithAttributes(
		attribute.String("room.code", code),
		attribute.String("player.id", playerID),
		attribute.String("action.kind", string(action.Kind)),
		attribute.Int("action.column", action.Column),
	))
	defer span.End()
	if action.Power != "" {
		span.SetAttributes(attribute.String("action.power", string(action.Power)))
	}

	session, ok := d.lookup(code)
	if !ok {
		return games.Snapshot{}, fail(span, games.ErrRoomNotFound)
	}
	snap, err := session.Apply(playerID, action)
	if err != nil {
		return games.Snapshot{}, fail(span, err)
	}
	if snap.Status == games.StatusFinished {
		span.SetAttributes(attribute.String("room.winner", snap.Winner))
		d.remove(code, session)
		log.Printf("Room %s finished, winner: %s", code, snap.Winner)
	}
	return snap, nil
}

// Leave closes the room on behalf of playerID. It returns false when there
// is nothing to close: the room is gone, already finished, or playerID is not
// seated there. Disconnects race with normal endings, so that is not an error.
func (d *Directory) Leave(ctx context.Context, code, playerID string) (Departure, bool) {
	code = games.NormalizeCode(code)
	_, span := d.tracer.Start(ctx, "rooms.leave", trace.WithAttributes(
		attribute.String("room.code", code),
		attribute.String("player.id", playerID),
	))
	defer span.End()

	session, ok := d.lookup(code)
	if !ok {
		span.SetAttributes(attribute.Bool("room.closed", false))
		return Departure{}, false
	}
	snap, left := session.Leave(playerID)
	span.SetAttributes(attribute.Bool("room.closed", left))
	if !left {
		return Departure{}, false
	}
	d.remove(code, session)

	log.Printf("Player %s left room %s", playerID, code)
	return Departure{Room: snap, Remaining: snap.Opponent(playerID)}, true
}

// RemoveByConnection handles an abrupt disconnect exactly like Leave.
func (d *Directory) RemoveByConnection(ctx context.Context, playerID string) (Departure, bool) {
	seat, ok := d.SeatOf(playerID)
	if !ok {
		return Departure{}, false
	}
	return d.Leave(ctx, seat.Code, playerID)
}

// SeatOf returns where playerID is seated.
func (d *Directory) SeatOf(playerID string) (Seat, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	seat, ok := d.seats[playerID]
	return seat, ok
}

// Get returns a snapshot of one open room.
func (d *Directory) Get(code string) (games.Snapshot, error) {
	session, ok := d.lookup(games.NormalizeCode(code))
	if !ok {
		return games.Snapshot{}, games.ErrRoomNotFound
	}
	return session.Snapshot(), nil
}

// List returns snapshots of every open room ordered by code.
func (d *Directory) List() []games.Snapshot {
	d.mu.RLock()
	sessions := make([]*games.Session, 0, len(d.rooms))
	for _, s := range d.rooms {
		sessions = append(sessions, s)
	}
	d.mu.RUnlock()

	result := make([]games.Snapshot, 0, len(sessions))
	for _, s := range sessions {
		result = append(result, s.Snapshot())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Code < result[j].Code
	})
	return result
}

// Len returns the number of open rooms.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

func (d *Directory) lookup(code string) (*games.Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.rooms[code]
	return s, ok
}

// remove drops the room and frees its players' seats. It only deletes the
// entry if it still points at session.
func (d *Directory) remove(code string, session *games.Session) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.rooms[code] != session {
		return
	}
	delete(d.rooms, code)
	for _, id := range session.Snapshot().PlayerIDs() {
		if seat, ok := d.seats[id]; ok && seat.Code == code {
			delete(d.seats, id)
		}
	}
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	var gerr *games.Error
	if errors.As(err, &gerr) {
		span.SetAttributes(attribute.String("error.code", string(gerr.Code)))
	}
	span.SetStatus(codes.Error, err.Error())
	return err
}
