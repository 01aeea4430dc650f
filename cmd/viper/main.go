// Command viper is the front end's CLI entry point: `viper <input-file>`
// compiles a single root compilation unit to an IR module. There is one
// primary argument and a handful of flags -- the source language has no
// module or profile system, so there is no subcommand tree to manage.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ComedicChimera/olive"

	"viper/diag"
	"viper/driver"
	"viper/scope"
)

func main() {
	cli := olive.NewCLI("viper", "viper compiles a single source file to an IR module", true)
	cli.AddPrimaryArg("input-file", "the source file to compile", true)
	cli.AddStringArg("output", "o", "the output IR file path", false)
	cli.AddStringArg("dump-template-cache", "dtc", "dump the template instantiation cache to this path for debugging", false)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false, []string{"silent", "error", "warning", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		diag.PrintError("CLI Usage Error", err)
		os.Exit(1)
	}

	inputFile, ok := result.PrimaryArg()
	if !ok || inputFile == "" {
		fmt.Fprintln(os.Stderr, "viper: no input files")
		os.Exit(1)
	}

	diag.Init(result.Arguments["loglevel"].(string))

	outputPath := ""
	if v, ok := result.Arguments["output"]; ok {
		outputPath = v.(string)
	}

	abs, err := filepath.Abs(inputFile)
	if err != nil {
		diag.PrintError("Path Error", err)
		os.Exit(1)
	}

	ctx := driver.NewContext(filepath.Dir(abs))
	pipe := driver.NewPipeline(ctx)

	succeeded := pipe.Run(abs, outputPath)

	if dumpPath, has := result.Arguments["dump-template-cache"]; has {
		if err := scope.DumpTemplateCache(dumpPath.(string), ctx.Root); err != nil {
			diag.PrintError("Template Cache Dump Error", err)
		}
	}

	if !succeeded {
		os.Exit(1)
	}
}
