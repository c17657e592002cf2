package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/app"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/engine"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/engine/fem"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/engine/rcwa"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity/format"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity/mode"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/materials"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML configuration file (defaults apply when empty)")
		engineName = flag.String("engine", "rcwa", "solver backend: rcwa or fem")
		execPath   = flag.String("exec", "", "solver executable (S4 binary or python interpreter)")
		modulePath = flag.String("modulepath", "", "module search path for interpreter-based solvers")
		workDir    = flag.String("workdir", "", "scratch directory for per-call solver files")
		keepFiles  = flag.Bool("keep", false, "keep per-call solver scratch files")
		outputDir  = flag.String("out", "results", "output directory")
		modeName   = flag.String("mode", "spectrum", "run mode: spectrum, angle, nearfield or compare")
		formatName = flag.String("format", "html", "comparison output format: html, png or csv")
		compareA   = flag.String("a", "", "first result file for compare mode")
		compareB   = flag.String("b", "", "second result file for compare mode")
		fieldGrid  = flag.Int("grid", 64, "near-field samples per axis")
		fieldZ     = flag.Float64("z", 20, "near-field slice height in nm")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if err := run(*configPath, *engineName, *execPath, *modulePath, *workDir,
		*outputDir, *modeName, *formatName, *compareA, *compareB,
		*fieldGrid, *fieldZ, *keepFiles); err != nil {
		log.Fatal(err)
	}
}

func run(configPath, engineName, execPath, modulePath, workDir, outputDir,
	modeName, formatName, compareA, compareB string,
	fieldGrid int, fieldZ float64, keepFiles bool) error {

	runMode, err := mode.UnmarshalText(modeName)
	if err != nil {
		return err
	}
	outFormat, err := format.UnmarshalText(formatName)
	if err != nil {
		return err
	}

	cfg := entity.Default()
	if configPath != "" {
		cfg, err = entity.Load(configPath)
		if err != nil {
			return err
		}
	}

	var eng engine.Engine
	if runMode != mode.Compare {
		lib, err := materials.Builtin()
		if err != nil {
			return err
		}
		engCfg := engine.Config{
			Executable: execPath,
			ModulePath: modulePath,
			WorkDir:    workDir,
			KeepFiles:  keepFiles,
		}
		switch engineName {
		case "rcwa":
			if engCfg.Executable == "" {
				engCfg.Executable = "S4"
			}
			eng, err = rcwa.New(engCfg, cfg, lib)
		case "fem":
			if engCfg.Executable == "" {
				engCfg.Executable = "python3"
			}
			eng, err = fem.New(engCfg, cfg, lib)
		default:
			return fmt.Errorf("unknown engine %q", engineName)
		}
		if err != nil {
			return err
		}
	} else if compareA == "" || compareB == "" {
		return fmt.Errorf("compare mode needs both -a and -b result files")
	}

	a := app.New(eng, cfg, outputDir)
	a.Mode = runMode
	a.Format = outFormat
	a.CompareA = compareA
	a.CompareB = compareB
	a.FieldGrid = fieldGrid
	a.FieldZ = fieldZ

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx)
}
