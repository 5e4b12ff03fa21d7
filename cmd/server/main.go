package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"FrontDb/internal/interpreter"
	l "FrontDb/internal/logger"
	"FrontDb/internal/server"
	"FrontDb/internal/storage"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	dbDir := flag.String("d", storage.DatabaseDir, "database directory")
	level := flag.String("m", "e", "message level: f(atal), e(rror), w(arn), i(nfo) or d(ebug)")
	logDir := flag.String("log", "logs", "directory for the dated log files, empty to disable")
	flag.Parse()

	logLevel, err := l.ParseLevel(firstByte(*level))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	serverLogger := l.New("server", os.Stderr, logLevel)
	// every batch swaps in its own writer, the console is never used
	frontLogger := l.New("front", io.Discard, logLevel)
	defer l.ResetRegistry()

	if *logDir != "" {
		for _, logger := range []*l.Logger{serverLogger, frontLogger} {
			if err := logger.OpenFile(*logDir); err != nil {
				serverLogger.Fatal("%v", err)
				os.Exit(1)
			}
		}
	}

	session, err := interpreter.NewSession(interpreter.Config{
		Stdin:       strings.NewReader(""),
		Out:         io.Discard,
		DatabaseDir: *dbDir,
		Logger:      frontLogger,
	})
	if err != nil {
		serverLogger.Fatal("%v", err)
		os.Exit(1)
	}
	defer session.Close()

	if err := server.New(session, serverLogger).ListenAndServe(*addr); err != nil {
		serverLogger.Fatal("%v", err)
		session.Close()
		l.ResetRegistry()
		os.Exit(1)
	}
}

func firstByte(s string) byte {
	if len(s) != 1 {
		return 0
	}
	return s[0]
}
