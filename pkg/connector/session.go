package connector

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/logger"
)

// Session is an open handle capable of executing operations against a backend.
type Session interface {
	ID() string
	Type() dbcapabilities.DatabaseID
	// Raw returns the backend handle, e.g. *sql.DB or aws.Config.
	Raw() any
	Close() error
}

// SessionOptions are passed to OpenSession. They are ignored when a session already exists.
type SessionOptions struct {
	Address             *Address
	Params              map[string]any
	DescriptionEncoding bool
}

// Row is one fetched result row.
type Row []any

// ExistsAction selects what BulkLoadTable does when the destination table exists.
type ExistsAction string

const (
	ExistsAppend  ExistsAction = "append"
	ExistsReplace ExistsAction = "replace"
	ExistsFail    ExistsAction = "fail"
)

// ParseExistsAction validates a free-form exists action. Empty means fail.
func ParseExistsAction(s string) (ExistsAction, error) {
	switch a := ExistsAction(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return ExistsFail, nil
	case ExistsAppend, ExistsReplace, ExistsFail:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q (expected append, replace or fail)", ErrInvalidExistsAction, s)
	}
}

// BasicSession adapts any backend handle to the Session interface.
type BasicSession struct {
	id      string
	dbType  dbcapabilities.DatabaseID
	raw     any
	closeFn func() error
}

// NewSession wraps raw as a Session. closeFn may be nil.
func NewSession(dbType dbcapabilities.DatabaseID, raw any, closeFn func() error) *BasicSession {
	return &BasicSession{
		id:      uuid.NewString(),
		dbType:  dbType,
		raw:     raw,
		closeFn: closeFn,
	}
}

func (s *BasicSession) ID() string                      { return s.id }
func (s *BasicSession) Type() dbcapabilities.DatabaseID { return s.dbType }
func (s *BasicSession) Raw() any                        { return s.raw }

// Close releases the backend handle once.
func (s *BasicSession) Close() error {
	fn := s.closeFn
	s.closeFn = nil
	if fn == nil {
		return nil
	}
	return fn()
}

// SessionState is a connector's position in its session lifecycle.
type SessionState int

const (
	StateUnopened SessionState = iota
	StateOpen
	StateClosed
	StateFailed
)

func (s SessionState) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// Lifecycle holds the single session a connector owns, its address and its
// cached validation. It is not safe for concurrent first use.
type Lifecycle struct {
	dbType dbcapabilities.DatabaseID
	log    *logger.Logger

	state   SessionState
	session Session
	address *Address

	validated  bool
	validation ValidationResult
}

// NewLifecycle creates an unopened lifecycle.
func NewLifecycle(dbType dbcapabilities.DatabaseID, log *logger.Logger) *Lifecycle {
	if log == nil {
		log = logger.Nop()
	}
	return &Lifecycle{dbType: dbType, log: log}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() SessionState {
	return l.state
}

// Session returns the open session or nil.
func (l *Lifecycle) Session() Session {
	if l.state != StateOpen {
		return nil
	}
	return l.session
}

// Address returns the last built address or nil.
func (l *Lifecycle) Address() *Address {
	return l.address
}

// SetAddress records the built address.
func (l *Lifecycle) SetAddress(addr *Address) {
	l.address = addr
}

// Validate runs check unless a previous run succeeded, in which case the
// cached result is returned unchanged.
func (l *Lifecycle) Validate(check func() ValidationResult) ValidationResult {
	if l.validated {
		return l.validation
	}
	res := check()
	if res.Valid {
		l.validated = true
		l.validation = res
	}
	return res
}

// Open returns the existing session or builds one with open.
// A failed open moves the lifecycle to StateFailed, from which a later Open may retry.
func (l *Lifecycle) Open(open func() (Session, error)) (Result[Session], error) {
	if l.state == StateOpen && l.session != nil {
		return Valid(l.session, l.validation.Message), nil
	}

	session, err := open()
	if err != nil {
		l.state = StateFailed
		l.session = nil
		return Result[Session]{Message: err.Error()}, err
	}

	l.session = session
	l.state = StateOpen
	l.log.Debug("opened %s session %s", l.dbType, session.ID())
	return Valid(session, l.validation.Message), nil
}

// Teardown closes the session if there is one and clears the address and session.
// Close errors are logged and discarded. Calling it again is a no-op.
func (l *Lifecycle) Teardown() {
	if l.session != nil {
		id := l.session.ID()
		if err := l.session.Close(); err != nil {
			l.log.Warn("failed to close %s session %s: %v", l.dbType, id, err)
		} else {
			l.log.Debug("closed %s session %s", l.dbType, id)
		}
	}
	if l.state == StateOpen {
		l.state = StateClosed
	}
	l.session = nil
	l.address = nil
}
