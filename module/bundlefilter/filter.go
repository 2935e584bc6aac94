// Package bundlefilter provides the policy hook consulted by the routing
// engine before forwarding a bundle: per (bundle, peer, protocol) context the
// filter yields an accept or reject verdict.
package bundlefilter

import (
	"github.com/dtngo/dtnd/model/dtn"
)

// Action is the verdict of a filter evaluation.
type Action int

const (
	Reject Action = iota
	Accept
)

func (a Action) String() string {
	if a == Accept {
		return "accept"
	}
	return "reject"
}

// Context carries the parameters of one forwarding decision.
type Context struct {
	Bundle   dtn.MetaBundle
	Peer     dtn.EID
	Protocol dtn.Protocol
}

// Filter evaluates a forwarding context. Filters are pure functions and must
// be safe for concurrent use.
type Filter func(Context) Action

// AcceptAll accepts every context.
func AcceptAll() Filter {
	return func(Context) Action {
		return Accept
	}
}

// RejectAll rejects every context.
func RejectAll() Filter {
	return func(Context) Action {
		return Reject
	}
}

// All combines multiple filters into one that accepts a context only if all
// the filters accept it.
func All(filters ...Filter) Filter {
	return func(ctx Context) Action {
		for _, f := range filters {
			if f(ctx) != Accept {
				return Reject
			}
		}
		return Accept
	}
}

// Any combines multiple filters into one that accepts a context if at least
// one of the filters accepts it.
func Any(filters ...Filter) Filter {
	return func(ctx Context) Action {
		for _, f := range filters {
			if f(ctx) == Accept {
				return Accept
			}
		}
		return Reject
	}
}

// AllowProtocols accepts only contexts using one of the given protocols.
func AllowProtocols(protocols ...dtn.Protocol) Filter {
	lookup := make(map[dtn.Protocol]struct{}, len(protocols))
	for _, p := range protocols {
		lookup[p] = struct{}{}
	}
	return func(ctx Context) Action {
		if _, ok := lookup[ctx.Protocol]; ok {
			return Accept
		}
		return Reject
	}
}

// MinHopcount accepts only bundles whose remaining hop budget is at least
// min. Useful on constrained links, where a bundle about to exhaust its
// budget is not worth the transfer.
func MinHopcount(min uint) Filter {
	return func(ctx Context) Action {
		if ctx.Bundle.Hopcount < min {
			return Reject
		}
		return Accept
	}
}

// ExcludePeers rejects contexts targeting one of the given peers.
func ExcludePeers(peers ...dtn.EID) Filter {
	lookup := make(map[dtn.EID]struct{}, len(peers))
	for _, p := range peers {
		lookup[p.Node()] = struct{}{}
	}
	return func(ctx Context) Action {
		if _, ok := lookup[ctx.Peer.Node()]; ok {
			return Reject
		}
		return Accept
	}
}
