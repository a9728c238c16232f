package fieldshortcuts

import (
	"testing"

	"github.com/dragonation/rogiso-go/base"
	"github.com/stretchr/testify/require"
)

func TestFieldTemplateSymbol(t *testing.T) {
	template := NewFieldTemplate(1)
	require.Equal(t, uint32(1), template.ID())

	_, ok := template.GetSymbolIndex(base.NewSymbol(0))
	require.False(t, ok)

	index, err := template.AddSymbol(base.NewSymbol(0))
	require.NoError(t, err)
	require.True(t, template.HasSymbol(base.NewSymbol(0)))

	_, err = template.AddSymbol(base.NewSymbol(0))
	require.Error(t, err)

	require.Equal(t, uint8(1), template.SymbolCount())

	index2, err := template.AddSymbol(base.NewSymbol(1))
	require.NoError(t, err)
	require.Equal(t, uint8(2), template.SymbolCount())

	got, ok := template.GetSymbolIndex(base.NewSymbol(0))
	require.True(t, ok)
	require.Equal(t, index, got)

	got2, ok := template.GetSymbolIndex(base.NewSymbol(1))
	require.True(t, ok)
	require.Equal(t, index2, got2)

	require.NoError(t, template.RemoveSymbol(base.NewSymbol(0)))
	require.Equal(t, uint8(1), template.SymbolCount())
	require.False(t, template.HasSymbol(base.NewSymbol(0)))
}

func TestFieldTemplateVersion(t *testing.T) {
	template := NewFieldTemplate(1)
	version := template.Version()

	require.False(t, template.HasSymbol(base.NewSymbol(1)))

	_, err := template.AddSymbol(base.NewSymbol(1))
	require.NoError(t, err)
	require.Equal(t, version, template.Version())
	require.True(t, template.HasSymbol(base.NewSymbol(1)))

	_, err = template.AddSymbol(base.NewSymbol(2))
	require.NoError(t, err)
	require.Equal(t, version, template.Version())

	require.NoError(t, template.RemoveSymbol(base.NewSymbol(1)))
	require.NotEqual(t, version, template.Version())
	require.False(t, template.HasSymbol(base.NewSymbol(1)))
}

func TestFieldShortcuts(t *testing.T) {
	template := NewFieldTemplate(1)
	template2 := NewFieldTemplate(2)

	index, err := template.AddSymbol(base.NewSymbol(1))
	require.NoError(t, err)

	fields := NewFieldShortcuts(template)

	require.Equal(t, template.ID(), fields.FieldTemplateID())
	require.Same(t, template, fields.FieldTemplate())

	got, ok := fields.GetFieldIndex(base.NewSymbol(1))
	require.True(t, ok)
	require.Equal(t, index, got)

	fields.setField(template.ID(), template.Version(), index, base.MakeFloat(32.0))
	fields.ClearField(base.NewSymbol(1))
	_, found, _ := fields.getField(template.ID(), template.Version(), index)
	require.False(t, found)

	fields.setField(template.ID(), template.Version(), index, base.MakeFloat(32.0))
	value, found, _ := fields.getField(template.ID(), template.Version(), index)
	require.True(t, found)
	require.Equal(t, base.MakeFloat(32.0), value)

	_, found, _ = fields.getField(template.ID(), template.Version(), 32)
	require.False(t, found)

	fields.UpdateFieldTemplate(template2)
	require.Same(t, template2, fields.FieldTemplate())
	_, found, _ = fields.getField(template2.ID(), template2.Version(), index)
	require.False(t, found)
	require.Equal(t, template2.ID(), fields.FieldTemplateID())
}

func TestFieldToken(t *testing.T) {
	template := NewFieldTemplate(1)
	shortcuts := NewFieldShortcuts(template)

	_, ok := template.GetFieldToken(base.NewSymbol(1))
	require.False(t, ok)

	_, err := template.AddSymbol(base.NewSymbol(1))
	require.NoError(t, err)

	token, ok := template.GetFieldToken(base.NewSymbol(1))
	require.True(t, ok)
	token2, ok := shortcuts.GetFieldToken(base.NewSymbol(1))
	require.True(t, ok)

	require.Equal(t, token.Template(), token2.Template())
	require.Equal(t, token.Version(), token2.Version())
	require.Equal(t, token.Index(), token2.Index())

	_, found := token.GetField(shortcuts)
	require.False(t, found)

	token.SetField(shortcuts, base.MakeFloat(23.4))

	value, found := token.GetField(shortcuts)
	require.True(t, found)
	require.Equal(t, base.MakeFloat(23.4), value)

	value2, found := token2.GetField(shortcuts)
	require.True(t, found)
	require.Equal(t, base.MakeFloat(23.4), value2)

	_, err = template.AddSymbol(base.NewSymbol(2))
	require.NoError(t, err)

	value, found = token.GetField(shortcuts)
	require.True(t, found)
	require.Equal(t, base.MakeFloat(23.4), value)

	require.NoError(t, template.RemoveSymbol(base.NewSymbol(2)))

	_, found = token.GetField(shortcuts)
	require.False(t, found)
}
