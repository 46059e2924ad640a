package deps

import (
	"context"
	"encoding/binary"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/kbukum/depkit/di"
)

// UUIDGenerator returns a new UUID on each call.
type UUIDGenerator func() uuid.UUID

type uuidKey struct{}

func (uuidKey) LiveValue(context.Context) UUIDGenerator { return uuid.New }

func (uuidKey) TestValue(ctx context.Context) UUIDGenerator {
	return func() uuid.UUID {
		return di.Unimplemented(ctx, "deps.UUID", uuid.Nil)
	}
}

// UUID generates identifiers. Random version 4 UUIDs when live.
var UUID = di.Property("deps.UUID", uuidKey{})

// IncrementingUUID returns a generator producing
// 00000000-0000-0000-0000-000000000000, then ...0001 and so on. It is safe
// for concurrent use.
func IncrementingUUID() UUIDGenerator {
	var next atomic.Uint64
	return func() uuid.UUID {
		var id uuid.UUID
		binary.BigEndian.PutUint64(id[8:], next.Add(1)-1)
		return id
	}
}

// ConstantUUID returns a generator that always yields id.
func ConstantUUID(id uuid.UUID) UUIDGenerator {
	return func() uuid.UUID { return id }
}
