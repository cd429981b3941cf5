package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindStringCoversEveryKind(t *testing.T) {
	for k := KBadNode; k <= KContinueStmt; k++ {
		require.NotEqual(t, "Unknown", k.String(), "kind %d is missing from kindNames", k)
	}
}

func TestArenaAddAndGet(t *testing.T) {
	a := New()
	require.Equal(t, Idx(0), Idx(0))
	require.Equal(t, KModule, a.Get(0).Kind)

	idx := a.Add(Node{Kind: KLiteralInt, Int: 42})
	require.Equal(t, Idx(1), idx)
	require.EqualValues(t, 42, a.Get(idx).Int)
}

func TestSetModuleReplacesRoot(t *testing.T) {
	a := New()
	stmt := a.Add(Node{Kind: KExprStmt})
	a.SetModule([]Idx{stmt})
	require.Equal(t, []Idx{stmt}, a.Get(0).List)
}
