package archive

import (
	"errors"
	"time"

	"github.com/danielpatrickdp/srl-toolkit/internal/distribution"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// #region snapshot
// Snapshot is an archived distribution with its bookkeeping columns.
// Distribution is nil in listings.
type Snapshot struct {
	ID            string
	Label         string
	FormatVersion int
	Variables     int
	CreatedAt     time.Time
	Distribution  *distribution.Distribution
}

// #endregion snapshot

// #region event
// Event is a row in the archive_log table.
type Event struct {
	SnapshotID string
	Action     string // "put" | "delete"
	Detail     string
	CreatedAt  time.Time
}

// #endregion event
