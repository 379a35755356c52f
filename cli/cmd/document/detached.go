package document

import (
	"github.com/compozy/wrfconf/engine/schema"
	"github.com/compozy/wrfconf/engine/session"
)

// newDetachedSession validates files without touching the store.
func newDetachedSession(reg *schema.Registry) *session.Session {
	return session.New(session.Deps{Registry: reg})
}
