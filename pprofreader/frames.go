// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package pprofreader // import "github.com/callpath/ensemble/pprofreader"

import (
	"encoding/binary"

	"github.com/elastic/go-freelru"
	"github.com/google/pprof/profile"
	"github.com/zeebo/xxh3"

	"github.com/callpath/ensemble/callgraph"
)

const frameCacheSize = 8192

type frameKey struct {
	fn uint64
	ty callgraph.FrameType
}

func hashFrameKey(k frameKey) uint32 {
	var buf [9]byte
	binary.LittleEndian.PutUint64(buf[:8], k.fn)
	buf[8] = byte(k.ty)
	return uint32(xxh3.Hash(buf[:]))
}

// frameCache memoizes the function-to-Frame conversion for one decoded
// profile. Function ids are only unique within a single profile, so a cache
// never outlives one Read call.
type frameCache struct {
	lru *freelru.LRU[frameKey, callgraph.Frame]
}

func newFrameCache() (*frameCache, error) {
	lru, err := freelru.New[frameKey, callgraph.Frame](frameCacheSize, hashFrameKey)
	if err != nil {
		return nil, err
	}
	return &frameCache{lru: lru}, nil
}

func (c *frameCache) frameFor(fn *profile.Function, ty callgraph.FrameType) callgraph.Frame {
	key := frameKey{fn: fn.ID, ty: ty}
	if f, ok := c.lru.Get(key); ok {
		return f
	}
	name := fn.Name
	if name == "" {
		name = fn.SystemName
	}
	if name == "" {
		name = "??"
	}
	f := callgraph.NewFrame(name, ty)
	c.lru.Add(key, f)
	return f
}
