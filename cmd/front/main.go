package main

import (
	"flag"
	"fmt"
	"os"

	"FrontDb/internal/interpreter"
	l "FrontDb/internal/logger"
	"FrontDb/internal/storage"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-h] [-m f|e|w|i|d] [-d database] [-c commands] [-log dir]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Usage = usage

	help := flag.Bool("h", false, "print this help and exit")
	level := flag.String("m", "i", "message level: f(atal), e(rror), w(arn), i(nfo) or d(ebug)")
	dbDir := flag.String("d", storage.DatabaseDir, "database directory")
	commands := flag.String("c", "", "read commands from this file instead of stdin")
	logDir := flag.String("log", "", "also write messages to a dated log file in this directory")
	flag.Parse()

	if *help {
		usage()
		return 0
	}

	if len(*level) != 1 {
		fmt.Fprintf(os.Stderr, "unknown message level %q\n", *level)
		usage()
		return 2
	}
	logLevel, err := l.ParseLevel((*level)[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		return 2
	}

	logger := l.New("front", os.Stdout, logLevel)
	defer l.ResetRegistry()

	if *logDir != "" {
		if err := logger.OpenFile(*logDir); err != nil {
			logger.Fatal("%v", err)
			return 1
		}
	}

	session, err := interpreter.NewSession(interpreter.Config{
		CommandFile: *commands,
		Out:         os.Stdout,
		DatabaseDir: *dbDir,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("%v", err)
		return 1
	}

	if err := session.Run(); err != nil {
		return 1
	}
	return 0
}
