package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicParserGo(t *testing.T) {
	src := []byte(`package demo

import (
	"fmt"
	"os"
)

// Hello greets the world.
func Hello() int {
	fmt.Println("hi")
	return 1
}

type Widget struct {
	Name string
}
`)
	r := NewParserRegistry()
	p, ok := r.For("/w/src/a.go")
	require.True(t, ok)

	out, err := p.Parse("/w/src/a.go", src)
	require.NoError(t, err)

	require.Len(t, out.Symbols, 2)
	assert.Equal(t, "Hello", out.Symbols[0].Name)
	assert.Equal(t, "function", out.Symbols[0].Kind)
	assert.True(t, out.Symbols[0].IsExported)
	assert.Equal(t, "Hello greets the world.", out.Symbols[0].DocComment)

	assert.Equal(t, "Widget", out.Symbols[1].Name)
	assert.Equal(t, "class", out.Symbols[1].Kind)

	require.Len(t, out.Imports, 2)
	assert.Equal(t, "fmt", out.Imports[0].Source)
	assert.Equal(t, "os", out.Imports[1].Source)
}

func TestHeuristicParserTypeScript(t *testing.T) {
	src := []byte(`import { foo } from "./foo";

export function hello() {
  return 1;
}

export class Widget {
}
`)
	r := NewParserRegistry()
	p, ok := r.For("/w/src/a.ts")
	require.True(t, ok)

	out, err := p.Parse("/w/src/a.ts", src)
	require.NoError(t, err)

	require.Len(t, out.Imports, 1)
	assert.Equal(t, "./foo", out.Imports[0].Source)

	var names []string
	for _, s := range out.Symbols {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "hello")
	assert.Contains(t, names, "Widget")
}

func TestUnknownExtensionHasNoParser(t *testing.T) {
	r := NewParserRegistry()
	_, ok := r.For("/w/README.unknownext")
	assert.False(t, ok)
}

func TestContentHashStableAndSensitiveToChange(t *testing.T) {
	a := contentHash([]byte("hello"))
	b := contentHash([]byte("hello"))
	c := contentHash([]byte("hello!"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
