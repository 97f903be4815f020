package protocol

import "encoding/binary"

// DeviceStatusDelta is a single device's state as reported by an inbound
// SYNC, STATUS_SYNC, or STATUS (GET_STATUS / GET_STATUS_PAGINATED) record.
// Fields the source record didn't carry are zero-valued; HasCyncTemp and
// HasRGB distinguish "reported zero" from "not present in this record".
type DeviceStatusDelta struct {
	MeshID      uint16
	On          bool
	Brightness  uint8
	CyncTemp    uint8
	HasCyncTemp bool
	RGB         [3]uint8
	HasRGB      bool
	RGBActive   bool
}

// statusSubtypeOffset is where the STATUS envelope's subtype byte lives,
// and the minimum payload length for it to be present.
const statusSubtypeOffset = 13
const statusMinLenForSubtype = 25

// StatusSubtype returns the subtype byte of a STATUS payload, and false
// if the payload is too short to carry one.
func StatusSubtype(payload []byte) (Subtype, bool) {
	if len(payload) < statusMinLenForSubtype {
		return 0, false
	}
	return Subtype(payload[statusSubtypeOffset]), true
}

// ParseGetStatus decodes the 0xDB GET_STATUS single-device fragment:
// meshID@21, state@27>0, brightness = state ? byte@28 : 0.
func ParseGetStatus(payload []byte) (DeviceStatusDelta, error) {
	if len(payload) < 29 {
		return DeviceStatusDelta{}, ErrMalformedFrame
	}
	on := payload[27] > 0
	var brightness uint8
	if on {
		brightness = payload[28]
	}
	return DeviceStatusDelta{
		MeshID:     binary.BigEndian.Uint16(payload[21:23]),
		On:         on,
		Brightness: brightness,
	}, nil
}

// paginatedRecordStart is where the first GET_STATUS_PAGINATED record
// begins; paginatedRecordLen is each record's size.
const paginatedRecordStart = 22
const paginatedRecordLen = 24

// ParseGetStatusPaginated decodes the 0x52 GET_STATUS_PAGINATED body:
// consecutive 24-byte records starting at offset 22. A trailing
// fragment that does not fill a whole record is dropped and parsing
// stops.
func ParseGetStatusPaginated(payload []byte) []DeviceStatusDelta {
	var deltas []DeviceStatusDelta
	for offset := paginatedRecordStart; len(payload)-offset >= paginatedRecordLen; offset += paginatedRecordLen {
		rec := payload[offset : offset+paginatedRecordLen]
		on := rec[8] > 0
		var brightness uint8
		if on {
			brightness = rec[12]
		}
		deltas = append(deltas, DeviceStatusDelta{
			MeshID:      binary.BigEndian.Uint16(rec[0:2]),
			On:          on,
			Brightness:  brightness,
			CyncTemp:    rec[16],
			HasCyncTemp: true,
			RGB:         [3]uint8{rec[20], rec[21], rec[22]},
			HasRGB:      true,
			RGBActive:   rec[16] == 254,
		})
	}
	return deltas
}

// syncRecordLen is the size of each record in an inbound SYNC (type 4) body.
const syncRecordLen = 19

// ParseSync decodes the type-4 SYNC broadcast: after the 7-byte header,
// consecutive 19-byte records carry meshID@3, on@4>0, brightness@5 if
// on, cyncTemp@6. meshID is a single wire byte in this record shape,
// unlike the two-byte meshID fields elsewhere in the protocol.
func ParseSync(payload []byte) []DeviceStatusDelta {
	const headerLen = 7
	var deltas []DeviceStatusDelta
	for offset := headerLen; len(payload)-offset >= syncRecordLen; offset += syncRecordLen {
		rec := payload[offset : offset+syncRecordLen]
		on := rec[4] > 0
		var brightness uint8
		if on {
			brightness = rec[5]
		}
		deltas = append(deltas, DeviceStatusDelta{
			MeshID:      uint16(rec[3]),
			On:          on,
			Brightness:  brightness,
			CyncTemp:    rec[6],
			HasCyncTemp: true,
		})
	}
	return deltas
}

// ParseStatusSync decodes the type-8 STATUS_SYNC single-device delta:
// if length >= 33, meshID@21, on@27>0, brightness@28 if on.
func ParseStatusSync(payload []byte) (DeviceStatusDelta, error) {
	if len(payload) < 33 {
		return DeviceStatusDelta{}, ErrMalformedFrame
	}
	on := payload[27] > 0
	var brightness uint8
	if on {
		brightness = payload[28]
	}
	return DeviceStatusDelta{
		MeshID:     binary.BigEndian.Uint16(payload[21:23]),
		On:         on,
		Brightness: brightness,
	}, nil
}

// ParseConnected extracts the switchID from an inbound CONNECTED (type
// 10) reachability report. Any such packet is a positive report.
func ParseConnected(payload []byte) (switchID uint32, err error) {
	if len(payload) < 4 {
		return 0, ErrMalformedFrame
	}
	return binary.BigEndian.Uint32(payload[0:4]), nil
}
