package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists each room as a JSONB document keyed by room id.
// The document shape is identical to the wire shape, so the REST layer and
// the gateway can serve stored rooms without translation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS rooms (
			room_id    text PRIMARY KEY,
			data       jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return nil, fmt.Errorf("create rooms table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) FindByRoomID(ctx context.Context, roomID string) (*Room, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM rooms WHERE room_id = $1`, roomID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find room %s: %w", roomID, err)
	}
	return decodeRoom(data)
}

func (s *PostgresStore) UpsertOnCreate(ctx context.Context, room *Room) (*Room, bool, error) {
	data, err := json.Marshal(room)
	if err != nil {
		return nil, false, fmt.Errorf("encode room %s: %w", room.RoomID, err)
	}

	// ON CONFLICT DO NOTHING affects zero rows when the insert lost, in
	// which case the existing document is the winner.
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO rooms (room_id, data) VALUES ($1, $2)
		ON CONFLICT (room_id) DO NOTHING`, room.RoomID, data)
	if err != nil {
		return nil, false, fmt.Errorf("create room %s: %w", room.RoomID, err)
	}
	if tag.RowsAffected() == 1 {
		return room.Clone(), true, nil
	}
	existing, err := s.FindByRoomID(ctx, room.RoomID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *PostgresStore) Save(ctx context.Context, room *Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", room.RoomID, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO rooms (room_id, data, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (room_id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		room.RoomID, data)
	if err != nil {
		return fmt.Errorf("save room %s: %w", room.RoomID, err)
	}
	return nil
}

func (s *PostgresStore) FindBySocketID(ctx context.Context, socketID string) ([]*Room, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT data FROM rooms
		WHERE EXISTS (
			SELECT 1 FROM jsonb_array_elements(data->'players') AS p
			WHERE p->>'socketId' = $1
		)`, socketID)
	if err != nil {
		return nil, fmt.Errorf("find rooms by socket %s: %w", socketID, err)
	}
	defer rows.Close()

	var result []*Room
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		room, err := decodeRoom(data)
		if err != nil {
			return nil, err
		}
		result = append(result, room)
	}
	return result, rows.Err()
}

func decodeRoom(data []byte) (*Room, error) {
	var room Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("decode room document: %w", err)
	}
	return &room, nil
}
