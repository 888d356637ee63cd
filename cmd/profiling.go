package cmd

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/spiffcs/nudge/internal/log"
)

// profiling collects the CPU profile, execution trace and heap profile
// requested on the command line. The runner annotates the trace with one
// task per project and one region per step.
type profiling struct {
	heapPath string
	stops    []func()
}

// startProfiling starts the profiles named in opts. Empty paths are
// skipped. On error, anything already started is stopped again.
func startProfiling(opts *Options) (*profiling, error) {
	p := &profiling{heapPath: opts.MemProfile}

	if opts.CPUProfile != "" {
		f, err := os.Create(opts.CPUProfile)
		if err != nil {
			return nil, fmt.Errorf("creating CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			closeFile(f, "CPU profile")
			return nil, fmt.Errorf("starting CPU profile: %w", err)
		}
		p.stops = append(p.stops, func() {
			pprof.StopCPUProfile()
			closeFile(f, "CPU profile")
		})
	}

	if opts.Trace != "" {
		f, err := os.Create(opts.Trace)
		if err != nil {
			p.abort()
			return nil, fmt.Errorf("creating trace: %w", err)
		}
		if err := trace.Start(f); err != nil {
			closeFile(f, "trace")
			p.abort()
			return nil, fmt.Errorf("starting trace: %w", err)
		}
		p.stops = append(p.stops, func() {
			trace.Stop()
			closeFile(f, "trace")
		})
	}

	return p, nil
}

// stop ends the running profiles, most recent first, then writes the heap
// profile.
func (p *profiling) stop() {
	for i := len(p.stops) - 1; i >= 0; i-- {
		p.stops[i]()
	}
	p.stops = nil

	if p.heapPath == "" {
		return
	}
	f, err := os.Create(p.heapPath)
	if err != nil {
		log.Warn("could not create memory profile", "path", p.heapPath, "error", err)
		return
	}
	defer closeFile(f, "memory profile")
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Warn("could not write memory profile", "path", p.heapPath, "error", err)
	}
}

// abort stops what was started without writing the heap profile.
func (p *profiling) abort() {
	p.heapPath = ""
	p.stop()
}

func closeFile(f *os.File, what string) {
	if err := f.Close(); err != nil {
		log.Warn("could not close "+what, "path", f.Name(), "error", err)
	}
}
