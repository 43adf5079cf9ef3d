package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loopwell/engage/internal/core"
	"github.com/loopwell/engage/internal/domain"
)

func TestDirectory_UnknownSession(t *testing.T) {
	req := require.New(t)
	d := NewDirectory()

	_, err := d.State("calm-waters")
	req.ErrorIs(err, core.ErrSessionNotFound)
}

func TestDirectory_SetStateOverwrites(t *testing.T) {
	req := require.New(t)
	d := NewDirectory()

	d.SetState("calm-waters", domain.SessionState{Status: domain.SessionScheduled, Title: "Calm Waters"})
	st, err := d.State("calm-waters")
	req.NoError(err)
	req.Equal(domain.SessionScheduled, st.Status)

	d.SetState("calm-waters", domain.SessionState{Status: domain.SessionActive, Title: "Calm Waters"})
	st, err = d.State("calm-waters")
	req.NoError(err)
	req.Equal(domain.SessionActive, st.Status)
	req.Equal("Calm Waters", st.Title)
}
