// FILE: lixenwraith/nvconfig/cmd/nvconfig/main.go
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lixenwraith/nvconfig"
	"github.com/lixenwraith/nvconfig/internal/logging"
	"github.com/lixenwraith/nvconfig/internal/serialdev"
)

const usage = `usage: nvconfig [flags] <command> [file]

commands:
  load              load the record (resetting an unmarked store) and list it
  dump              load the record and log every field
  reset             write the default record
  export <profile>  write the record to a TOML, YAML or JSON profile
  import <profile>  validate a profile and write it to the store
  hexdump           print the raw store contents

flags:
`

// target is the store a command operates on
type target interface {
	nvconfig.Device
	// linkErr reports a transport failure that made the device read as erased
	linkErr() error
	// commit makes written bytes durable and reports transport failures
	commit() error
	Close() error
}

type imageTarget struct{ *nvconfig.FileDevice }

func (t imageTarget) linkErr() error { return nil }

func (t imageTarget) commit() error { return t.Flush() }

type serialTarget struct{ *serialdev.Device }

func (t serialTarget) linkErr() error { return t.Err() }

func (t serialTarget) commit() error { return t.Err() }

// openSerial is replaced in tests
var openSerial = serialdev.Open

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("nvconfig", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	image := fs.String("image", "nvconfig.eeprom", "EEPROM image file")
	port := fs.String("serial", "", "use a serial bench link instead of an image")
	baud := fs.Int("baud", 115200, "serial baud rate")
	policy := fs.String("policy", "ignore", "version policy: ignore|migrate|strict")
	logLevel := fs.String("log-level", "warn", "debug|info|warn|error")
	logFile := fs.String("log-file", "", "rotate logs into this file as well")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	logs := logging.NewManager()
	defer logs.Close()
	if err := logs.Configure(logging.Config{Level: *logLevel, File: *logFile}); err != nil {
		fmt.Fprintf(stderr, "nvconfig: %v\n", err)
		return 2
	}
	log := logs.Logger("cli")

	p, err := nvconfig.ParseVersionPolicy(*policy)
	if err != nil {
		fmt.Fprintf(stderr, "nvconfig: %v\n", err)
		return 2
	}

	store, err := nvconfig.NewBuilder().
		WithLogger(logs.Logger("store")).
		WithVersionPolicy(p).
		Build()
	if err != nil {
		fmt.Fprintf(stderr, "nvconfig: %v\n", err)
		return 1
	}

	tgt, err := openTarget(*image, *port, *baud)
	if err != nil {
		fmt.Fprintf(stderr, "nvconfig: %v\n", err)
		return 1
	}
	defer tgt.Close()

	cmd := command{store: store, dev: tgt, stdout: stdout, log: log}
	if err := cmd.exec(fs.Arg(0), fs.Args()[1:]); err != nil {
		log.Error("command failed", "command", fs.Arg(0), "error", err)
		fmt.Fprintf(stderr, "nvconfig: %v\n", err)
		return 1
	}
	if err := tgt.commit(); err != nil {
		log.Error("store not committed", "error", err)
		fmt.Fprintf(stderr, "nvconfig: %v\n", err)
		return 1
	}
	return 0
}

func openTarget(image, port string, baud int) (target, error) {
	if port != "" {
		d, err := openSerial(port, baud)
		if err != nil {
			return nil, err
		}
		return serialTarget{d}, nil
	}

	d, err := nvconfig.OpenFileDevice(image)
	if err != nil {
		return nil, err
	}
	return imageTarget{d}, nil
}

type command struct {
	store  *nvconfig.ConfigStore
	dev    target
	stdout io.Writer
	log    *slog.Logger
}

func (c command) exec(name string, args []string) error {
	read, write := nvconfig.Accessors(c.dev)
	var rec nvconfig.Record

	switch name {
	case "load":
		c.store.Load(&rec, read, write)
		if err := c.dev.linkErr(); err != nil {
			return err
		}
		_, err := rec.WriteTo(c.stdout)
		return err

	case "dump":
		c.store.Load(&rec, read, write)
		if err := c.dev.linkErr(); err != nil {
			return err
		}
		// The dump goes to stdout whatever the configured log level
		dumper := nvconfig.NewBuilder().
			WithLogger(slog.New(slog.NewTextHandler(c.stdout, nil))).
			MustBuild()
		dumper.Dump(&rec)
		return nil

	case "reset":
		c.store.Reset(&rec, write)
		if err := c.dev.linkErr(); err != nil {
			return err
		}
		_, err := rec.WriteTo(c.stdout)
		return err

	case "export":
		path, err := profileArg(name, args)
		if err != nil {
			return err
		}
		c.store.Load(&rec, read, write)
		if err := c.dev.linkErr(); err != nil {
			return err
		}
		if err := nvconfig.ExportProfile(rec, path); err != nil {
			return err
		}
		c.log.Info("profile exported", "path", path)
		return nil

	case "import":
		path, err := profileArg(name, args)
		if err != nil {
			return err
		}
		rec, err = nvconfig.ImportProfile(path)
		if err != nil {
			return err
		}
		c.store.Store(&rec, write)
		if err := c.dev.linkErr(); err != nil {
			return err
		}
		c.log.Info("profile imported", "path", path)
		_, err = rec.WriteTo(c.stdout)
		return err

	case "hexdump":
		img := make([]byte, nvconfig.Capacity)
		for i := range img {
			img[i] = read(uint8(i))
		}
		if err := c.dev.linkErr(); err != nil {
			return err
		}
		_, err := io.WriteString(c.stdout, hex.Dump(img))
		return err

	default:
		return fmt.Errorf("unknown command %q", name)
	}
}

func profileArg(cmd string, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%s needs exactly one profile path", cmd)
	}
	return args[0], nil
}
