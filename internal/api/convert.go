package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/mwhittaker/remotegate/internal/model"
)

// MillisToMicro converts a millisecond epoch timestamp to microseconds.
// Returns 0 for zero input.
func MillisToMicro(ms int64) int64 {
	return ms * 1000
}

// NowMicro returns the current time in microseconds since epoch.
func NowMicro() int64 {
	return time.Now().UnixMicro()
}

// ToModel converts an API history entry to an archive record. A fresh row
// id is generated on every call.
func (h *HistoryEntry) ToModel() model.HistoryRecord {
	return model.HistoryRecord{
		ID:                   uuid.New(),
		ConnectionIdentifier: h.ConnectionIdentifier,
		ConnectionName:       h.ConnectionName,
		Username:             h.Username,
		RemoteHost:           h.RemoteHost,
		StartTS:              MillisToMicro(h.StartDate),
		EndTS:                MillisToMicro(h.EndDate),
		Active:               h.Active,
		ArchivedAt:           NowMicro(),
	}
}
