package culture

import (
	"context"
	"sync/atomic"
)

// Defaults holds the process wide cultures new execution contexts start with.
//
// A default left unset falls back to the system culture the Defaults were created with.
// Writes are visible to every context spawned afterwards; contexts that already
// exist keep the cultures they were created with.
type Defaults struct {
	system   *Culture
	systemUI *Culture

	culture   atomic.Pointer[Culture]
	uiCulture atomic.Pointer[Culture]
}

// NewDefaults creates defaults over the given system cultures, nil meaning invariant.
func NewDefaults(system, systemUI *Culture) *Defaults {
	if system == nil {
		system = Invariant()
	}
	if systemUI == nil {
		systemUI = Invariant()
	}
	return &Defaults{system: system, systemUI: systemUI}
}

// System returns the culture used when no default culture is set.
func (d *Defaults) System() *Culture {
	return d.system
}

// SystemUI returns the UI culture used when no default UI culture is set.
func (d *Defaults) SystemUI() *Culture {
	return d.systemUI
}

// Culture returns the default current culture, nil when unset.
func (d *Defaults) Culture() *Culture {
	return d.culture.Load()
}

// SetCulture changes the culture newly spawned contexts start with. Nil unsets it.
func (d *Defaults) SetCulture(c *Culture) {
	d.culture.Store(c)
}

// UICulture returns the default current UI culture, nil when unset.
func (d *Defaults) UICulture() *Culture {
	return d.uiCulture.Load()
}

// SetUICulture changes the UI culture newly spawned contexts start with. Nil unsets it.
func (d *Defaults) SetUICulture(c *Culture) {
	d.uiCulture.Store(c)
}

// Reset unsets both defaults.
func (d *Defaults) Reset() {
	d.culture.Store(nil)
	d.uiCulture.Store(nil)
}

func (d *Defaults) effectiveCulture() *Culture {
	if c := d.culture.Load(); c != nil {
		return c
	}
	return d.system
}

func (d *Defaults) effectiveUICulture() *Culture {
	if c := d.uiCulture.Load(); c != nil {
		return c
	}
	return d.systemUI
}

// NewState snapshots the defaults into a fresh execution state.
func (d *Defaults) NewState() *State {
	return NewState(d.effectiveCulture(), d.effectiveUICulture())
}

// Spawn returns a child of ctx carrying a new state snapshotted from the defaults.
// Whatever state ctx already carries is shadowed, never shared.
func (d *Defaults) Spawn(ctx context.Context) context.Context {
	return ToContext(ctx, d.NewState())
}
