// eicsim drives a simulated PIC32MZ interrupt controller.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/davecheney/eic"
	"github.com/davecheney/eic/maps"
	"github.com/davecheney/eic/sim"
)

func main() {
	var cli struct {
		Verbose bool `name:"verbose" short:"v" help:"log controller activity"`

		Run   runCmd   `cmd:"" default:"1" help:"simulate the controller and report dispatches"`
		Map   mapCmd   `cmd:"" help:"show a memory map"`
		Trace traceCmd `cmd:"" help:"summarise a dispatch trace"`
	}

	ctx := kong.Parse(&cli)
	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	err := ctx.Run(log)
	ctx.FatalIfErrorf(err)
}

func loadMap(path string) (*eic.MemoryMap, error) {
	if path == "" {
		return eic.PIC32MZ(), nil
	}
	return maps.Load(path)
}

type runCmd struct {
	Map   string   `name:"map" type:"existingfile" help:"memory map description; defaults to the built-in PIC32MZ map"`
	Steps int      `name:"steps" default:"100000" help:"steps to simulate"`
	Timer uint64   `name:"timer-period" default:"1000" help:"core timer period in steps, 0 stops the timer"`
	IRQ   []string `name:"irq" help:"external source as vector:period, repeatable"`
	Trace string   `name:"trace" help:"record every dispatch in this sqlite database"`
	Dump  bool     `name:"dump" help:"dump the registers when the run completes"`

	Input       string `name:"input" help:"text fed to the UART4 console and echoed to stdout"`
	InputPeriod uint64 `name:"input-period" default:"100" help:"steps between input bytes"`
}

func parseSource(s string) (sim.Source, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return sim.Source{}, fmt.Errorf("irq %q: want vector:period", s)
	}
	v, err := strconv.ParseUint(parts[0], 0, 32)
	if err != nil {
		return sim.Source{}, fmt.Errorf("irq %q: %w", s, err)
	}
	p, err := strconv.ParseUint(parts[1], 0, 64)
	if err != nil {
		return sim.Source{}, fmt.Errorf("irq %q: %w", s, err)
	}
	if p == 0 {
		return sim.Source{}, fmt.Errorf("irq %q: period must be positive", s)
	}
	return sim.Source{Vector: eic.Vector(v), Period: p}, nil
}

func (r *runCmd) Run(log *slog.Logger) error {
	m, err := loadMap(r.Map)
	if err != nil {
		return err
	}
	var sources []sim.Source
	for _, s := range r.IRQ {
		src, err := parseSource(s)
		if err != nil {
			return err
		}
		if src.Vector >= eic.Vector(m.Vectors) {
			return fmt.Errorf("irq %q: vector outside of %d vector map", s, m.Vectors)
		}
		sources = append(sources, src)
	}

	mc := sim.NewMachine(m, r.Timer)
	c := eic.New(m, mc.Regs, mc.Core, eic.WithLogger(log))
	c.Initialise()

	var events []event
	counts := make(map[eic.Vector]uint64)
	count := eic.HandlerFunc(func(v eic.Vector) {
		counts[v]++
		if r.Trace != "" {
			events = append(events, event{step: mc.Steps(), vector: v})
		}
	})
	c.Route(eic.CoreTimer, eic.SupportedPriority, count)
	for _, s := range sources {
		c.Route(eic.IRQ(s.Vector), eic.SupportedPriority, count)
		mc.AddSource(s)
	}

	var uart *sim.UART
	if r.Input != "" {
		if sim.UART4TX >= eic.Vector(m.Vectors) {
			return fmt.Errorf("input: map %q has no UART4 vectors", m.Name)
		}
		if r.InputPeriod == 0 {
			return fmt.Errorf("input: period must be positive")
		}
		uart = sim.NewUART(mc, sim.UART4RX, sim.UART4TX, os.Stdout)
		c.Route(eic.IRQ(uart.RX), eic.SupportedPriority, eic.HandlerFunc(func(v eic.Vector) {
			count(v)
			if b, ok := uart.Read(); ok {
				if err := uart.Write(b); err != nil {
					log.Error("uart", "err", err)
				}
			}
		}))
		c.Route(eic.IRQ(uart.TX), eic.SupportedPriority, count)
	}

	mc.Attach(func() {
		spurious := c.Spurious()
		c.Dispatch()
		if r.Trace != "" && c.Spurious() != spurious {
			events = append(events, event{step: mc.Steps(), spurious: true})
		}
	})
	mc.Core.Enable()
	input := []byte(r.Input)
	for i := 0; i < r.Steps; i++ {
		if len(input) > 0 && uint64(i)%r.InputPeriod == 0 {
			uart.Receive(input[0])
			input = input[1:]
		}
		mc.Step()
	}
	if uart != nil {
		fmt.Println()
		log.Info("console", "unsent", len(input), "overruns", uart.Overruns())
	}

	log.Info("run complete", "steps", mc.Steps(), "exceptions", mc.Core.Exceptions(), "spurious", c.Spurious())
	vectors := make([]eic.Vector, 0, len(counts))
	for v := range counts {
		vectors = append(vectors, v)
	}
	sort.Slice(vectors, func(i, j int) bool { return vectors[i] < vectors[j] })
	for _, v := range vectors {
		fmt.Printf("%s\t%d\n", v, counts[v])
	}
	fmt.Printf("spurious\t%d\n", c.Spurious())

	if r.Dump {
		if err := eic.Dump(os.Stdout, m, mc.Regs); err != nil {
			return err
		}
	}

	if r.Trace == "" {
		return nil
	}
	db, err := openTrace(r.Trace)
	if err != nil {
		return err
	}
	defer db.Close()
	id, err := db.record(m, mc.Steps(), events)
	if err != nil {
		return err
	}
	log.Info("trace recorded", "path", r.Trace, "run", id, "events", len(events))
	return nil
}

type mapCmd struct {
	Map  string `arg:"" optional:"" name:"path" type:"existingfile" help:"memory map description; defaults to the built-in PIC32MZ map"`
	JSON bool   `name:"json" help:"print the canonical encoding with its checksum"`
}

func (c *mapCmd) Run(log *slog.Logger) error {
	m, err := loadMap(c.Map)
	if err != nil {
		return err
	}
	if c.JSON {
		buf, err := maps.Encode(m)
		if err != nil {
			return err
		}
		_, err = fmt.Printf("%s\n", buf)
		return err
	}
	if err := eic.Dump(os.Stdout, m, nil); err != nil {
		return err
	}
	_, err = fmt.Printf("fingerprint %s\n", maps.Fingerprint(m))
	return err
}

type traceCmd struct {
	Path string `arg:"" name:"path" type:"existingfile" help:"trace database"`
	ID   int64  `name:"run" help:"run to summarise, defaults to the latest"`
}

func (c *traceCmd) Run(log *slog.Logger) error {
	db, err := openTrace(c.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	id := c.ID
	if id == 0 {
		if id, err = db.latest(); err != nil {
			return err
		}
	}
	info, err := db.run(id)
	if err != nil {
		return err
	}
	fmt.Printf("run %d: map %s (%s) steps %d\n", id, info.name, info.fingerprint, info.steps)
	totals, err := db.totals(id)
	if err != nil {
		return err
	}
	for _, t := range totals {
		if t.spurious {
			fmt.Printf("spurious\t%d\n", t.count)
			continue
		}
		fmt.Printf("%s\t%d\n", t.vector, t.count)
	}
	return nil
}
