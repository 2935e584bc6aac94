package bundlefilter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dtngo/dtnd/model/dtn"
	"github.com/dtngo/dtnd/module/bundlefilter"
	"github.com/dtngo/dtnd/utils/unittest"
)

func testContext() bundlefilter.Context {
	peer := unittest.EIDFixture()
	return bundlefilter.Context{
		Bundle:   unittest.MetaBundleFixture(peer),
		Peer:     peer,
		Protocol: dtn.ProtocolTCP,
	}
}

func TestAcceptRejectAll(t *testing.T) {
	ctx := testContext()
	assert.Equal(t, bundlefilter.Accept, bundlefilter.AcceptAll()(ctx))
	assert.Equal(t, bundlefilter.Reject, bundlefilter.RejectAll()(ctx))
}

func TestAll(t *testing.T) {
	ctx := testContext()
	assert.Equal(t, bundlefilter.Accept, bundlefilter.All()(ctx))
	assert.Equal(t, bundlefilter.Accept, bundlefilter.All(bundlefilter.AcceptAll(), bundlefilter.AcceptAll())(ctx))
	assert.Equal(t, bundlefilter.Reject, bundlefilter.All(bundlefilter.AcceptAll(), bundlefilter.RejectAll())(ctx))
}

func TestAny(t *testing.T) {
	ctx := testContext()
	assert.Equal(t, bundlefilter.Reject, bundlefilter.Any()(ctx))
	assert.Equal(t, bundlefilter.Accept, bundlefilter.Any(bundlefilter.RejectAll(), bundlefilter.AcceptAll())(ctx))
	assert.Equal(t, bundlefilter.Reject, bundlefilter.Any(bundlefilter.RejectAll(), bundlefilter.RejectAll())(ctx))
}

func TestAllowProtocols(t *testing.T) {
	ctx := testContext()
	filter := bundlefilter.AllowProtocols(dtn.ProtocolTCP, dtn.ProtocolBluetooth)

	ctx.Protocol = dtn.ProtocolTCP
	assert.Equal(t, bundlefilter.Accept, filter(ctx))

	ctx.Protocol = dtn.ProtocolBluetooth
	assert.Equal(t, bundlefilter.Accept, filter(ctx))

	ctx.Protocol = dtn.ProtocolUDP
	assert.Equal(t, bundlefilter.Reject, filter(ctx))
}

func TestMinHopcount(t *testing.T) {
	ctx := testContext()
	filter := bundlefilter.MinHopcount(3)

	ctx.Bundle.Hopcount = 3
	assert.Equal(t, bundlefilter.Accept, filter(ctx))

	ctx.Bundle.Hopcount = 16
	assert.Equal(t, bundlefilter.Accept, filter(ctx))

	ctx.Bundle.Hopcount = 2
	assert.Equal(t, bundlefilter.Reject, filter(ctx))
}

func TestExcludePeers(t *testing.T) {
	ctx := testContext()
	other := unittest.EIDFixture()

	assert.Equal(t, bundlefilter.Reject, bundlefilter.ExcludePeers(ctx.Peer)(ctx))
	// matching is by node identity, not the full endpoint
	assert.Equal(t, bundlefilter.Reject, bundlefilter.ExcludePeers(ctx.Peer+"/inbox")(ctx))
	assert.Equal(t, bundlefilter.Accept, bundlefilter.ExcludePeers(other)(ctx))
}
