package pyroengine

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// ManifestID, FireworkID and CarrierID are process-stable uuids, grounded on the
// teacher's AssetId(uuid.NewString()) pattern — they identify long-lived instances
// that may be referenced across goroutines and logged for debugging.
type ManifestID string
type FireworkID string
type CarrierID string

func newManifestID() ManifestID { return ManifestID(uuid.NewString()) }
func newFireworkID() FireworkID { return FireworkID(uuid.NewString()) }
func newCarrierID() CarrierID   { return CarrierID(uuid.NewString()) }

// ParticleID is a monotonically increasing per-stream counter assigned in spawn
// order. Spec §6's determinism requirement ("particle IDs are assigned in spawn
// order") rules out uuids here: a counter is the only representation that makes
// that bit-exact guarantee checkable.
type ParticleID uint64

// particleIDCounter hands out ParticleIDs to a single stream's pool in spawn order.
// Each ParticleStream owns its own counter; it is not shared across streams.
type particleIDCounter struct {
	next uint64
}

func (c *particleIDCounter) nextID() ParticleID {
	return ParticleID(atomic.AddUint64(&c.next, 1) - 1)
}
