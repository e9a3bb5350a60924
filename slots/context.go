// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slots

import (
	"github.com/covermesh/mutual/mutual"
	"github.com/covermesh/mutual/state"
)

// Context binds typed storage cells to a namespace within the state.
type Context struct {
	namespace mutual.Bytes32
	state     *state.State
}

func NewContext(namespace string, state *state.State) *Context {
	return &Context{
		namespace: mutual.BytesToBytes32([]byte(namespace)),
		state:     state,
	}
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) position(base mutual.Bytes32, key []byte) mutual.Bytes32 {
	return mutual.Blake2b(c.namespace.Bytes(), base.Bytes(), key)
}
