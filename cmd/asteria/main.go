package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mayhemheroes/asteria"
	"github.com/mayhemheroes/asteria/config"
	"github.com/mayhemheroes/asteria/gc"
)

func main() {
	cfgPath := flag.String("config", "", "path to a YAML config file (lexer options, GC thresholds)")
	collect := flag.Bool("collect", false, "run a full oldest-generation collection after evaluating the script")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: asteria [-config file.yaml] [-collect] <script.ast>")
		os.Exit(1)
	}
	scriptPath := args[0]

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}

	eng := asteria.New(cfg)

	prog, err := eng.LoadFile(scriptPath)
	if err != nil {
		log.Fatalf("loading %s: %v", scriptPath, err)
	}

	result, exc := eng.Execute(prog)
	if exc != nil {
		fmt.Fprintln(os.Stderr, exc.Error())
		os.Exit(1)
	}
	fmt.Println(result.String())

	if *collect {
		n := eng.Collect(gc.Oldest)
		log.Printf("collected %d variables", n)
	}
}
