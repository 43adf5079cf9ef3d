package core

import "github.com/loopwell/engage/internal/domain"

// memberSession implements MemberSession by pairing meta + transport.
type memberSession struct {
	meta *domain.Participant
	conn EventConn
}

func NewMemberSession(meta *domain.Participant, conn EventConn) MemberSession {
	return &memberSession{meta: meta, conn: conn}
}

func (m *memberSession) Meta() *domain.Participant { return m.meta }
func (m *memberSession) Conn() EventConn           { return m.conn }
