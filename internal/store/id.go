package store

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces candidate task identifiers. The store rejects
// candidates it has already issued, so a generator only needs to be
// distinct with high probability.
type IDGenerator func() ID

const (
	PolicyUUID     = "uuid"
	PolicySequence = "sequence"
)

// UUIDGenerator returns random v4 UUIDs.
func UUIDGenerator() IDGenerator {
	return func() ID { return ID(uuid.NewString()) }
}

// SequenceGenerator returns task-1, task-2, ...
func SequenceGenerator() IDGenerator {
	var n atomic.Uint64
	return func() ID {
		return ID(fmt.Sprintf("task-%d", n.Add(1)))
	}
}

// GeneratorFor maps a configured policy name to a generator.
func GeneratorFor(policy string) (IDGenerator, bool) {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case "", PolicyUUID:
		return UUIDGenerator(), true
	case PolicySequence:
		return SequenceGenerator(), true
	default:
		return nil, false
	}
}
