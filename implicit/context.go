// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package implicit

import (
	"math"
	"sync"
)

// NodeID is the canonical identity of a tree within a [Context].
// Two trees imported into the same context have the same id
// if and only if they are structurally identical.
type NodeID uint32

type nodeKey struct {
	op    Op
	value uint32
	a, b  NodeID
}

// Context hash-conses trees so that structural equality can be
// tested by comparing ids. Importing memoizes on node pointers, so
// importing a tree whose subtrees were already seen only visits the
// new nodes. It is safe for concurrent use.
type Context struct {
	mu    sync.Mutex
	ids   map[nodeKey]NodeID
	seen  map[*Node]NodeID
	nodes []nodeKey
}

// NewContext returns a new empty [Context].
func NewContext() *Context {
	return &Context{ids: map[nodeKey]NodeID{}, seen: map[*Node]NodeID{}}
}

// Import returns the canonical id of the given tree.
func (c *Context) Import(t *Node) NodeID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.intern(t)
}

func (c *Context) intern(t *Node) NodeID {
	if id, ok := c.seen[t]; ok {
		return id
	}
	k := nodeKey{op: t.op}
	switch {
	case t.op == OpConst:
		v := t.value
		if v != v {
			// all NaNs are equal here
			v = float32(math.NaN())
		}
		k.value = math.Float32bits(v)
	case t.op.IsUnary():
		k.a = c.intern(t.a)
	case t.op.IsBinary():
		k.a = c.intern(t.a)
		k.b = c.intern(t.b)
	}
	id, ok := c.ids[k]
	if !ok {
		id = NodeID(len(c.nodes))
		c.nodes = append(c.nodes, k)
		c.ids[k] = id
	}
	c.seen[t] = id
	return id
}

// Len returns the number of distinct nodes in the context.
func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}

// Equal returns whether the two trees are structurally identical.
func (c *Context) Equal(a, b *Node) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.intern(a) == c.intern(b)
}
