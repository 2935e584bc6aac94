package dtn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dtngo/dtnd/model/dtn"
)

func TestEIDNode(t *testing.T) {
	assert.Equal(t, dtn.EID("dtn://node-one"), dtn.EID("dtn://node-one/inbox").Node())
	assert.Equal(t, dtn.EID("dtn://node-one"), dtn.EID("dtn://node-one").Node())
	assert.Equal(t, dtn.EID("dtn://node-one"), dtn.EID("dtn://node-one/a/b").Node())
}

func TestEIDSameHost(t *testing.T) {
	assert.True(t, dtn.EID("dtn://node-one/inbox").SameHost("dtn://node-one"))
	assert.True(t, dtn.EID("dtn://node-one/inbox").SameHost("dtn://node-one/outbox"))
	assert.False(t, dtn.EID("dtn://node-one/inbox").SameHost("dtn://node-two/inbox"))
	assert.False(t, dtn.EID("dtn://node-one").SameHost(dtn.NullEID))
}

func TestEIDValid(t *testing.T) {
	assert.True(t, dtn.EID("dtn://node-one").Valid())
	assert.True(t, dtn.EID("dtn://node-one/inbox").Valid())
	assert.False(t, dtn.NullEID.Valid())
	assert.False(t, dtn.EID("dtn://").Valid())
	assert.False(t, dtn.EID("node-one").Valid())
}

func TestBundleIDBytes(t *testing.T) {
	a := dtn.BundleID{Source: "dtn://a/app", Timestamp: 1, Sequence: 2}
	b := dtn.BundleID{Source: "dtn://a/app", Timestamp: 1, Sequence: 3}
	assert.NotEqual(t, a.Bytes(), b.Bytes())
	assert.Equal(t, a.Bytes(), a.Bytes())
}
