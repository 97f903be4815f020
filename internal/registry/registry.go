// Package registry is the authoritative mapping from the cloud's three
// identifier spaces — deviceID, switchID, meshID — to Bulb records.
package registry

import (
	"sync"

	"github.com/cyncbridge/core/internal/bulb"
)

// BulbRecord is one device as reported by HostAdapter.ImportInventory.
type BulbRecord struct {
	DeviceID    uint32
	SwitchID    uint32
	DeviceType  uint8
	DisplayName string
}

// DeviceRegistry maintains three lookup maps over the same set of
// Bulbs. All mutation happens on the core's single event loop; the
// sync.Map usage here is defense-in-depth rather than a guard against
// real concurrent writers.
type DeviceRegistry struct {
	byDevice sync.Map // uint32 -> *bulb.Bulb
	bySwitch sync.Map // uint32 -> *bulb.Bulb
	byMesh   sync.Map // uint16 -> *bulb.Bulb

	nextSeq func() uint16
}

// New constructs an empty DeviceRegistry. nextSeq is threaded into
// every Bulb it creates, so outbound SET_STATE requests share the
// session's sequence counter.
func New(nextSeq func() uint16) *DeviceRegistry {
	return &DeviceRegistry{nextSeq: nextSeq}
}

// ImportInventory upserts Bulbs for one home's inventory records (a
// Bulb is created exactly once per switchID; later passes update its
// attributes) and returns the full set of deviceIDs now known, so the
// HostAdapter can drop accessories no longer present.
func (r *DeviceRegistry) ImportInventory(homeID uint32, records []BulbRecord) ([]uint32, error) {
	known := make([]uint32, 0, len(records))
	for _, rec := range records {
		meshID, err := bulb.MeshID(rec.DeviceID, homeID)
		if err != nil {
			return nil, err
		}

		if existing, ok := r.bySwitch.Load(rec.SwitchID); ok {
			b := existing.(*bulb.Bulb)
			b.DeviceType = rec.DeviceType
			b.Capabilities = bulb.CapabilitiesFor(rec.DeviceType)
			b.DisplayName = rec.DisplayName
			b.MeshID = meshID
			known = append(known, b.DeviceID)
			continue
		}

		b := bulb.New(rec.DeviceID, rec.SwitchID, meshID, rec.DeviceType, rec.DisplayName, homeID, r.nextSeq)
		r.byDevice.Store(rec.DeviceID, b)
		r.bySwitch.Store(rec.SwitchID, b)
		// meshID collisions across homes: first writer wins.
		r.byMesh.LoadOrStore(meshID, b)
		known = append(known, rec.DeviceID)
	}
	return known, nil
}

// FindBySwitch looks up a Bulb by its cloud switchID.
func (r *DeviceRegistry) FindBySwitch(switchID uint32) (*bulb.Bulb, bool) {
	v, ok := r.bySwitch.Load(switchID)
	if !ok {
		return nil, false
	}
	return v.(*bulb.Bulb), true
}

// FindByMesh looks up a Bulb by its intra-home meshID. Collisions
// across homes resolve to whichever Bulb first claimed that meshID;
// callers that need to disambiguate should use the switchID on the
// inbound packet instead.
func (r *DeviceRegistry) FindByMesh(meshID uint16) (*bulb.Bulb, bool) {
	v, ok := r.byMesh.Load(meshID)
	if !ok {
		return nil, false
	}
	return v.(*bulb.Bulb), true
}

// FindByMeshForSwitch looks up a Bulb by meshID, using the switchID on
// the inbound packet to disambiguate cross-home meshID collisions: when
// the first-writer meshID match belongs to a different home than the
// packet's switch, the bulb carrying that meshID in the switch's own
// home wins. switchID == 0 skips disambiguation.
func (r *DeviceRegistry) FindByMeshForSwitch(meshID uint16, switchID uint32) (*bulb.Bulb, bool) {
	b, ok := r.FindByMesh(meshID)
	if switchID == 0 {
		return b, ok
	}
	sw, swOK := r.FindBySwitch(switchID)
	if !swOK || (ok && b.HomeID == sw.HomeID) {
		return b, ok
	}
	var match *bulb.Bulb
	r.bySwitch.Range(func(_, v any) bool {
		cand := v.(*bulb.Bulb)
		if cand.MeshID == meshID && cand.HomeID == sw.HomeID {
			match = cand
			return false
		}
		return true
	})
	if match != nil {
		return match, true
	}
	return b, ok
}

// FindByDevice looks up a Bulb by its cloud-global deviceID.
func (r *DeviceRegistry) FindByDevice(deviceID uint32) (*bulb.Bulb, bool) {
	v, ok := r.byDevice.Load(deviceID)
	if !ok {
		return nil, false
	}
	return v.(*bulb.Bulb), true
}

// All returns every Bulb currently registered, for reconciliation
// probes and diagnostics.
func (r *DeviceRegistry) All() []*bulb.Bulb {
	var all []*bulb.Bulb
	r.bySwitch.Range(func(_, v any) bool {
		all = append(all, v.(*bulb.Bulb))
		return true
	})
	return all
}
