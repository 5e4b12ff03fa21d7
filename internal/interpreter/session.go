package interpreter

import (
	"errors"
	"fmt"
	"io"
	"os"

	"FrontDb/internal/logger"
)

// Config is everything a session needs at start.
type Config struct {
	// CommandFile is read instead of Stdin when set.
	CommandFile string
	Stdin       io.Reader
	Out         io.Writer
	DatabaseDir string
	// StartDir anchors relative database paths. Defaults to the working
	// directory.
	StartDir string
	Open     Opener
	Logger   *logger.Logger
}

// Session is one run of the interpreter over one input source.
type Session struct {
	in          *Lexer
	inFile      io.Closer
	out         io.Writer
	log         *logger.Logger
	startDir    string
	open        Opener
	db          Backend
	interactive bool
}

// NewSession opens the input source and the initial database. Failing
// either is fatal, and whatever was already opened is closed again.
func NewSession(cfg Config) (*Session, error) {
	s := &Session{
		out:      cfg.Out,
		log:      cfg.Logger,
		startDir: cfg.StartDir,
		open:     cfg.Open,
	}

	if s.out == nil {
		s.out = os.Stdout
	}
	if s.log == nil {
		s.log = logger.Detached(s.out, logger.INFO)
	}
	if s.open == nil {
		s.open = OpenStorage
	}
	if s.startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, &FatalError{Err: fmt.Errorf("cannot get working directory: %w", err)}
		}
		s.startDir = wd
	}

	if cfg.CommandFile != "" {
		f, err := os.Open(cfg.CommandFile)
		if err != nil {
			return nil, fatalf("cannot open command file: %w", err)
		}
		s.log.Debug("file %q is open for read", cfg.CommandFile)
		s.in = NewLexer(f)
		s.inFile = f
	} else {
		stdin := cfg.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		s.in = NewLexer(stdin)
		s.interactive = true
	}

	if cfg.DatabaseDir != "" {
		if err := s.openDatabase(cfg.DatabaseDir); err != nil {
			s.Close()
			return nil, err
		}
	}

	return s, nil
}

// Interactive reports whether commands come from the standard stream.
func (s *Session) Interactive() bool {
	return s.interactive
}

// Database returns the open database, or nil.
func (s *Session) Database() Backend {
	return s.db
}

func (s *Session) Welcome() {
	fmt.Fprintln(s.out, "Welcome to the front session")
	fmt.Fprintln(s.out, `  - Enter "help" for instructions`)
	fmt.Fprintln(s.out, `  - Enter "quit" to leave the session`)
}

// Run processes commands until quit or end of input, then closes the
// session. The error is non-nil only for fatal failures.
func (s *Session) Run() error {
	defer s.Close()

	if s.interactive {
		s.Welcome()
	}

	_, err := s.loop()
	return err
}

// Exec runs the commands read from r with output going to w, leaving the
// session open afterwards. It reports whether quit was read.
func (s *Session) Exec(r io.Reader, w io.Writer) (bool, error) {
	in, out := s.in, s.out
	prevLog := s.log.SetOutput(w)
	s.in, s.out = NewLexer(r), w

	defer func() {
		s.in, s.out = in, out
		s.log.SetOutput(prevLog)
	}()

	return s.loop()
}

func (s *Session) loop() (bool, error) {
	for {
		word, err := s.in.NextWord()
		if errors.Is(err, io.EOF) {
			s.log.Debug("end of input")
			return false, nil
		}
		if err != nil {
			return false, fatalf("cannot read commands: %w", err)
		}

		s.log.Debug("current token is %q", word)

		cmd := LookupCommand(word)
		if cmd == QuitCmd {
			return true, nil
		}

		if err := s.dispatch(cmd, word); err != nil {
			var fatal *FatalError
			if errors.As(err, &fatal) {
				s.log.Fatal("%v", err)
				return false, err
			}
			s.log.Error("%v", err)
		}
	}
}

// Close closes the database and a file input source. It is safe to call
// more than once.
func (s *Session) Close() error {
	var errs []error

	if s.db != nil {
		errs = append(errs, s.db.Close())
		s.db = nil
	}

	if s.inFile != nil {
		errs = append(errs, s.inFile.Close())
		s.inFile = nil
	}

	return errors.Join(errs...)
}
