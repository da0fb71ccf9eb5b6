package finder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindByPID_Self(t *testing.T) {
	assert.Equal(t, os.Getpid(), FindByPID(os.Getpid()))
}

func TestFindByPID_NonexistentPID(t *testing.T) {
	assert.Equal(t, 0, FindByPID(1<<30))
}

func TestFindByPID_RejectsPIDOne(t *testing.T) {
	assert.Equal(t, 0, FindByPID(1))
}

func TestFindByName_EmptyName(t *testing.T) {
	assert.Equal(t, 0, FindByName(""))
}

func TestKey_AbsolutePathMatchesItself(t *testing.T) {
	assert.Equal(t, "/usr/bin/foo", key("/usr/bin/foo"))
}

func TestKey_BareNameMatchesBasename(t *testing.T) {
	assert.Equal(t, "foo", key("foo"))
	assert.Equal(t, "foo", key("/usr/bin/foo"[len("/usr/bin/"):]))
}

func TestKey_RoundTrip(t *testing.T) {
	full := "/usr/bin/foo"
	base := filepath.Base(full)
	// A bare NAME (no leading slash) matches by basename, so key() on the
	// basename of a full path is idempotent...
	assert.Equal(t, base, key(base))
	// ...while an absolute NAME matches only the identical full path.
	assert.Equal(t, full, key(full))
}
