package fieldshortcuts

import (
	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/util"
)

// FieldShortcuts is one slot's instance-level shortcut cache: up to
// MaxShortcutsSize values, indexed the way its FieldTemplate assigns, plus a
// presence bitmap and a version stamp that lets a stale read (the template
// moved on without this instance noticing) be detected cheaply.
type FieldShortcuts struct {
	lock     *util.RwLock
	version  uint16
	template *FieldTemplate
	bitmap   uint64
	fields   [MaxShortcutsSize]base.Value
}

func NewFieldShortcuts(template *FieldTemplate) *FieldShortcuts {
	return &FieldShortcuts{
		lock:     util.NewRwLock(),
		version:  template.Version(),
		template: template,
	}
}

func (s *FieldShortcuts) Reset() {
	g := s.lock.LockWrite()
	defer g.Unlock()
	s.bitmap = 0
}

func (s *FieldShortcuts) GetFieldToken(symbol base.Symbol) (*FieldToken, bool) {
	g := s.lock.LockRead()
	defer g.Unlock()
	return s.template.GetFieldToken(symbol)
}

func (s *FieldShortcuts) RefreshFieldToken(token *FieldToken) {
	g := s.lock.LockRead()
	defer g.Unlock()
	s.template.RefreshFieldToken(token)
}

func (s *FieldShortcuts) FieldTemplate() *FieldTemplate {
	g := s.lock.LockRead()
	defer g.Unlock()
	return s.template
}

func (s *FieldShortcuts) FieldTemplateID() uint32 {
	g := s.lock.LockRead()
	defer g.Unlock()
	return s.template.ID()
}

// UpdateFieldTemplate rebinds the instance onto a new template (a prototype
// change), clearing every cached field.
func (s *FieldShortcuts) UpdateFieldTemplate(template *FieldTemplate) {
	g := s.lock.LockWrite()
	defer g.Unlock()
	s.version = template.Version()
	s.template = template
	s.bitmap = 0
}

func (s *FieldShortcuts) GetFieldIndex(symbol base.Symbol) (uint8, bool) {
	g := s.lock.LockRead()
	defer g.Unlock()
	return s.template.GetSymbolIndex(symbol)
}

// getField returns (value, found, needUpdate). needUpdate is true when the
// caller's template generation has moved on and its cached FieldToken
// should be refreshed before retrying.
func (s *FieldShortcuts) getField(template uint32, version uint16, index uint8) (base.Value, bool, bool) {
	g := s.lock.LockRead()
	defer g.Unlock()

	if s.template.ID() != template {
		return base.Value{}, false, false
	}

	templateVersion := s.template.Version()
	if s.version != templateVersion {
		s.bitmap = 0
		s.version = templateVersion
		return base.Value{}, false, true
	}

	if templateVersion == version && (s.bitmap>>index)&1 == 1 {
		return s.fields[index], true, false
	}
	return base.Value{}, false, false
}

// SetSymbolField writes value at symbol's current shortcut index, a no-op
// if the template does not promote symbol.
func (s *FieldShortcuts) SetSymbolField(symbol base.Symbol, value base.Value) {
	g := s.lock.LockWrite()
	defer g.Unlock()

	templateVersion := s.template.Version()
	if s.version != templateVersion {
		s.bitmap = 0
		s.version = templateVersion
	}

	if index, ok := s.template.GetSymbolIndex(symbol); ok {
		s.bitmap |= 1 << index
		s.fields[index] = value
	}
}

// setField reports whether the caller's FieldToken should be refreshed.
func (s *FieldShortcuts) setField(template uint32, version uint16, index uint8, value base.Value) bool {
	g := s.lock.LockWrite()
	defer g.Unlock()

	if s.template.ID() != template {
		return false
	}

	needUpdate := false
	templateVersion := s.template.Version()
	if s.version != templateVersion {
		needUpdate = true
		s.bitmap = 0
		s.version = templateVersion
	}

	if version == templateVersion {
		s.bitmap |= 1 << index
		s.fields[index] = value
	}

	return needUpdate
}

func (s *FieldShortcuts) ClearField(symbol base.Symbol) {
	g := s.lock.LockWrite()
	defer g.Unlock()

	index, ok := s.template.GetSymbolIndex(symbol)
	if !ok {
		return
	}

	templateVersion := s.template.Version()
	if s.version != templateVersion {
		s.bitmap = 0
		s.version = templateVersion
		return
	}
	s.bitmap &^= 1 << index
}
