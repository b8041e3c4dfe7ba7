package store

import (
	"context"
	"errors"
	"time"
)

// ErrUserExists is returned by UserRepo.Create for a taken username.
var ErrUserExists = errors.New("user already exists")

// User is a stored credential record.
type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepo stores credentials for the session boundary.
type UserRepo interface {
	// Create inserts a new user, or returns ErrUserExists.
	Create(ctx context.Context, u User) error

	// Get returns the user, or ErrNotFound.
	Get(ctx context.Context, username string) (*User, error)
}

// Backup is a point-in-time copy of one of a user's blobs.
type Backup struct {
	ID        int64
	User      string
	Name      string
	Sequence  int64
	CreatedAt time.Time
	Data      []byte
}

// BackupRepo keeps copies of user blobs taken before destructive
// operations.
type BackupRepo interface {
	// Save stores a new backup of data under name for user.
	Save(ctx context.Context, user, name string, data []byte) (*Backup, error)

	// Latest returns the most recent backup of name for user, or
	// ErrNotFound.
	Latest(ctx context.Context, user, name string) (*Backup, error)

	// Prune deletes all but the keep most recent backups of name for user.
	Prune(ctx context.Context, user, name string, keep int) error
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match when set
}

// LLMRequestEventData captures the data for a single generator request.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored generator request.
type LLMRequestEvent struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// EventRepo is the append-only log of generator requests.
type EventRepo interface {
	// AppendLLMRequest records a generator call.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMRequests returns events newest first.
	QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMRequest returns a single event by id, or ErrNotFound.
	GetLLMRequest(ctx context.Context, id int64) (*LLMRequestEvent, error)
}
