package imap

import (
	"github.com/emersion/go-imap"
)

// Client is the mailbox surface the intake pipeline consumes. It is
// implemented by StandardClient and by fakes in tests. Implementations are
// not required to be goroutine safe; callers issue one command at a time.
// Messages are addressed by UID throughout.
type Client interface {
	Connect(addr string) error
	Login(user, password string) error
	SelectMailbox(name string) error
	SearchUnseenFrom(sender string) ([]uint32, error)
	MarkSeen(uids []uint32) error
	FetchMessage(uid uint32) (*imap.Message, error)
	Close() error
}
