// Command overloadvet reports overlapping Base__N overloads in Go packages.
//
//	overloadvet [-config overload.yaml] [-sep __] [packages]
//
// It exits 1 when a collision is found and 2 when packages cannot be loaded.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/funvibe/overload/internal/config"
	"github.com/funvibe/overload/internal/diagnostics"
	"github.com/funvibe/overload/internal/vet"
)

func main() {
	configPath := flag.String("config", "", "configuration file (default: search upwards for overload.yaml)")
	sep := flag.String("sep", "", "overload name separator (default from config, else __)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: overloadvet [flags] [packages]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("overloadvet: ")

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Print(err)
		os.Exit(2)
	}
	if *sep != "" {
		cfg.Vet.Separator = *sep
	}
	if flag.NArg() > 0 {
		cfg.Vet.Patterns = flag.Args()
	}

	rep := diagnostics.NewLogReporter(os.Stderr, cfg.Diagnostics.Color)
	n, err := vet.Run(cfg, ".", rep)
	if err != nil {
		log.Print(err)
		os.Exit(2)
	}
	if n > 0 {
		log.Printf("%d overlapping overload(s)", n)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		found, err := config.FindConfig(".")
		if err != nil {
			return nil, err
		}
		if found == "" {
			return config.Default(), nil
		}
		path = found
	}
	return config.LoadConfig(path)
}
