// FILE: lixenwraith/nvconfig/example/main.go
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lixenwraith/nvconfig"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	store := nvconfig.NewBuilder().
		WithLogger(logger).
		MustBuild()

	// =========================================================================
	// PART 1: FIRST BOOT
	// A factory-fresh EEPROM is erased to 0xFF, so the mark is missing and the
	// defaults are written.
	// =========================================================================
	log.Println("---")
	log.Println("PART 1: first boot on an erased store")

	dev := nvconfig.NewMemoryDevice()
	read, write := nvconfig.Accessors(dev)

	var rec nvconfig.Record
	store.Load(&rec, read, write)
	log.Printf("bytes written: %d", dev.Writes())

	// =========================================================================
	// PART 2: CHANGE AND PERSIST
	// The application edits the record in place and stores it.
	// =========================================================================
	log.Println("---")
	log.Println("PART 2: disarm the door alarm and slow down the rain gauge")

	rec.Door.Armed = nvconfig.FlagOff
	rec.Rain.MaxPeriod = 2 * nvconfig.DefaultMaxPeriod
	store.Store(&rec, write)

	// =========================================================================
	// PART 3: REBOOT
	// A marked record is loaded verbatim and nothing is written.
	// =========================================================================
	log.Println("---")
	log.Println("PART 3: reboot")

	before := dev.Writes()
	var reloaded nvconfig.Record
	store.Load(&reloaded, read, write)
	log.Printf("record unchanged: %t, bytes written: %d", reloaded == rec, dev.Writes()-before)
	store.Dump(&reloaded)

	// =========================================================================
	// PART 4: PROFILE
	// Export the record for editing on a workstation.
	// =========================================================================
	log.Println("---")
	log.Println("PART 4: export a profile")

	dir, err := os.MkdirTemp("", "nvconfig-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	profile := filepath.Join(dir, "node.toml")
	if err := nvconfig.ExportProfile(reloaded, profile); err != nil {
		log.Fatal(err)
	}
	data, err := os.ReadFile(profile)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(string(data))
}
