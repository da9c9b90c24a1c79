package main

import (
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/sirupsen/logrus"
)

const (
	envCPUProfile = "OI_AUDIT_CPU_PROFILE"
	envMemProfile = "OI_AUDIT_MEM_PROFILE"
)

func setupDebugProfiles() (stop func()) {
	var stopFuncs []func()
	if fn := setupCPUProfile(); fn != nil {
		stopFuncs = append(stopFuncs, fn)
	}
	if fn := setupHeapProfile(); fn != nil {
		stopFuncs = append(stopFuncs, fn)
	}
	return func() {
		for _, fn := range stopFuncs {
			fn()
		}
	}
}

func setupCPUProfile() (stop func()) {
	if cpuProfile := os.Getenv(envCPUProfile); cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			logrus.WithError(err).Warn("could not create cpu profile")
			return nil
		}

		if err := pprof.StartCPUProfile(f); err != nil {
			logrus.WithError(err).Warn("could not start cpu profile")
			_ = f.Close()
			return nil
		}

		return func() {
			pprof.StopCPUProfile()
			if err := f.Close(); err != nil {
				logrus.WithError(err).Warn("could not close file for cpu profile")
			}
		}
	}
	return nil
}

func setupHeapProfile() (stop func()) {
	if heapProfile := os.Getenv(envMemProfile); heapProfile != "" {
		// Memory profile is only created on stop.
		return func() {
			f, err := os.Create(heapProfile)
			if err != nil {
				logrus.WithError(err).Warn("could not create memory profile")
				return
			}

			// get up-to-date statistics
			runtime.GC()

			if err := pprof.WriteHeapProfile(f); err != nil {
				logrus.WithError(err).Warn("could not write memory profile")
			}

			if err := f.Close(); err != nil {
				logrus.WithError(err).Warn("could not close file for memory profile")
			}
		}
	}
	return nil
}
