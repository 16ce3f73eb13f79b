package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gekko3d/volumetrics"
	"github.com/gekko3d/volumetrics/volrt/rt/app"
	"github.com/gekko3d/volumetrics/volrt/rt/config"
	"github.com/gekko3d/volumetrics/volrt/rt/material"
)

func main() {
	configPath := flag.String("config", "", "YAML or TOML settings file")
	gridPath := flag.String("grid", "", "Grid file to voxelize (overrides config)")
	resolution := flag.Int("resolution", 0, "Density resolution per axis")
	bleed := flag.Int("bleed", -1, "Splat radius in cells")
	workers := flag.Int("workers", 0, "Worker goroutines (0 = all CPUs)")
	shader := flag.String("shader", "", "Volume shader kind, e.g. scattering")
	iso := flag.Bool("iso", false, "Render the iso surface instead of the volume")
	preview := flag.String("preview", "", "Write the rendered preview (.png or .bmp)")
	slices := flag.String("slices", "", "Write a montage of density slices (.png or .bmp)")
	useGPU := flag.Bool("gpu", false, "Also upload the density to a headless WebGPU device")
	plan := flag.Bool("plan", false, "Print the draw calls of the frame")
	debug := flag.Bool("debug", false, "Enable debug mode (AABB visualization)")
	flag.Parse()

	log := volumetrics.NewDefaultLogger("volrt", *debug)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
	}
	if *gridPath != "" {
		cfg.Grid.Path = *gridPath
	}
	if *resolution > 0 {
		cfg.Voxelizer.Resolution = *resolution
	}
	if *bleed >= 0 {
		cfg.Voxelizer.BleedRadius = *bleed
	}
	if *workers > 0 {
		cfg.Voxelizer.Workers = *workers
	}
	if *shader != "" {
		kind, err := material.ParseShaderKind(*shader)
		if err != nil {
			log.Errorf("%v", err)
			os.Exit(2)
		}
		cfg.Selector.Kind = kind
	}
	if *preview != "" {
		cfg.Output.Preview = *preview
	}
	if *slices != "" {
		cfg.Output.Slices = *slices
	}
	cfg.Iso.Enabled = cfg.Iso.Enabled || *iso
	cfg.Debug = cfg.Debug || *debug

	if cfg.Grid.Path == "" {
		fmt.Fprintln(os.Stderr, "usage: volrt -grid model.vox [-config scene.yaml] [-preview out.png]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		log.Errorf("%v", err)
		os.Exit(2)
	}

	application := app.NewApp(cfg, log)
	application.UseGPU = *useGPU
	if *plan {
		application.Plan = os.Stdout
	}
	if err := application.Run(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
