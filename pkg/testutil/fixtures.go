package testutil

import (
	"time"

	"github.com/google/uuid"
)

// Fixed values for deterministic tests.
var (
	TestEventID   = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestModelID   = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	TestTrainedAt = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
)
