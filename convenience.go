// FILE: lixenwraith/nvconfig/convenience.go
package nvconfig

// defaultStore backs the package-level functions. It discards diagnostics and
// ignores record versions, matching the node firmware.
var defaultStore = New()

// Load fills rec from the store using the default ConfigStore.
func Load(rec *Record, read ReadByteFunc, write WriteByteFunc) {
	defaultStore.Load(rec, read, write)
}

// Reset overwrites rec with Defaults() and persists it using the default ConfigStore.
func Reset(rec *Record, write WriteByteFunc) {
	defaultStore.Reset(rec, write)
}

// Store persists rec using the default ConfigStore.
func Store(rec *Record, write WriteByteFunc) {
	defaultStore.Store(rec, write)
}

// Dump is a no-op on the default ConfigStore, whose logger discards output.
// Use a store built with WithLogger to see the listing.
func Dump(rec *Record) {
	defaultStore.Dump(rec)
}

// LoadDevice is Load with the accessors of d.
func LoadDevice(rec *Record, d Device) {
	read, write := Accessors(d)
	defaultStore.Load(rec, read, write)
}
