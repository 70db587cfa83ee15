// FILE: lixenwraith/nvconfig/doc.go

// Package nvconfig persists the configuration record of a battery-powered sensor
// node in a small byte-addressable non-volatile store (EEPROM).
//
// The record is written at offset 0 as a fixed 67-byte little-endian image that
// starts with the 'PWI' null-terminated mark. The mark is the only validity check:
// an image without it is replaced by defaults and persisted; an image with it is
// kept byte for byte.
//
// Storage access is injected as a pair of byte accessors, so the same code runs
// against real hardware, a file image, a serial bench link or a test fake:
//
//	dev := nvconfig.NewMemoryDevice()
//	read, write := nvconfig.Accessors(dev)
//
//	var rec nvconfig.Record
//	nvconfig.Load(&rec, read, write) // erased store: defaults are written
//
//	rec.Door.Armed = nvconfig.FlagOff
//	nvconfig.Store(&rec, write)
//
// Stores with diagnostics or a version policy are built with the Builder:
//
//	store, err := nvconfig.NewBuilder().
//	    WithLogger(slog.Default()).
//	    WithVersionPolicy(nvconfig.VersionMigrate).
//	    WithMigration(nvconfig.Migration{From: 0, Size: 63, Apply: upgradeV0}).
//	    Build()
//
// Records can be exported to and imported from TOML, YAML or JSON profiles with
// ExportProfile and ImportProfile. Imported profiles are validated; loaded images
// never are.
//
// Thread Safety:
// A ConfigStore holds no record state and may be shared. Operations on the same
// record and store must be serialized by the caller.
package nvconfig
