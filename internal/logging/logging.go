package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"uno-server/internal/config"
)

var output io.Writer = os.Stdout

// Init installs the global zerolog logger. With cfg.File set, lines also
// go to that file, which keeps one ".1" backup once it passes cfg.MaxMB.
func Init(cfg config.LogConfig) (io.Closer, error) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var console io.Writer = os.Stdout
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	output = console

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		w, err := openCappedFile(cfg.File, cfg.MaxMB)
		if err != nil {
			return nil, err
		}
		output = zerolog.MultiLevelWriter(console, w)
		closer = w
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
	return closer, nil
}

// Writer is the sink chosen by Init, for loggers built outside zerolog's
// global.
func Writer() io.Writer {
	return output
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
