package esb

import searchuc "github.com/kailas-cloud/esb/internal/usecase/search"

// Cursor walks a scroll. Next returns pages until io.EOF; Close is idempotent.
type Cursor = searchuc.Cursor
